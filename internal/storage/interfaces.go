// Package storage provides composable storage interfaces for the Kinfolk system.
//
// The storage layer is designed with small, focused interfaces that can be
// implemented independently and composed as needed. This follows the Interface
// Segregation Principle and allows for flexible backend implementations.
package storage

import (
	"context"

	"github.com/scrypster/kinfolk/pkg/types"
)

// PersonStore provides CRUD operations and pagination for people.
// This is the core storage interface for roster lifecycle management.
type PersonStore interface {
	// StorePerson creates or updates a person (upsert semantics).
	// If a person with the same ID exists, it is updated; otherwise, a new one is created.
	StorePerson(ctx context.Context, person *types.Person) error

	// GetPerson retrieves a person by ID.
	// Returns ErrNotFound if the person doesn't exist.
	GetPerson(ctx context.Context, id string) (*types.Person, error)

	// ListPeople retrieves people with pagination.
	ListPeople(ctx context.Context, opts ListOptions) (*PaginatedResult[types.Person], error)

	// AllPeople returns every person in the store, sorted by id. Used by
	// the engine, importer, and exporter, which always operate on the full
	// roster.
	AllPeople(ctx context.Context) ([]types.Person, error)

	// DeletePerson removes a person by ID along with every relationship
	// that references them, in either direction.
	// Returns ErrNotFound if the person doesn't exist.
	DeletePerson(ctx context.Context, id string) error
}

// RelationshipStore manages declared and inferred relationship edges.
type RelationshipStore interface {
	// StoreRelationship creates or updates a relationship (upsert semantics).
	StoreRelationship(ctx context.Context, rel *types.Relationship) error

	// GetRelationship retrieves a relationship by ID.
	// Returns ErrNotFound if the relationship doesn't exist.
	GetRelationship(ctx context.Context, id string) (*types.Relationship, error)

	// ListRelationships retrieves relationships with pagination. When
	// personID is non-empty, only edges held by that person are returned.
	ListRelationships(ctx context.Context, personID string, opts ListOptions) (*PaginatedResult[types.Relationship], error)

	// AllRelationships returns every relationship edge, sorted by id.
	AllRelationships(ctx context.Context) ([]types.Relationship, error)

	// DeleteRelationship removes a relationship by ID.
	// Returns ErrNotFound if the relationship doesn't exist.
	DeleteRelationship(ctx context.Context, id string) error

	// ReplaceAllRelationships atomically swaps the full edge set for the
	// given one. The inference engine uses this to commit a derived pass:
	// either every edge of the new set lands or none do.
	ReplaceAllRelationships(ctx context.Context, rels []types.Relationship) error
}

// Store is the composite interface a storage backend must satisfy.
type Store interface {
	PersonStore
	RelationshipStore

	// Snapshot returns the full roster and edge set in one call, both
	// sorted by id. The engine always works from a snapshot so a query
	// never sees a half-committed import.
	Snapshot(ctx context.Context) ([]types.Person, []types.Relationship, error)

	// Close releases any resources held by the store.
	Close() error
}
