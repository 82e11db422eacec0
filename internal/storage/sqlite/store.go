package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/kinfolk/internal/storage"
	"github.com/scrypster/kinfolk/pkg/types"
)

// Store implements storage.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New opens a SQLite database, configures WAL mode, and creates the schema.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Using a single open connection
	// serialises writes and avoids SQLITE_BUSY errors under concurrent load.
	// WAL mode allows concurrent readers to proceed without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Connections live for the lifetime of the store.

	// Enable WAL mode for better read concurrency (readers don't block writers).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set busy timeout so that callers wait instead of getting an immediate
	// SQLITE_BUSY error when the connection is held by another goroutine.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// GetDB exposes the underlying connection for the config layer's settings
// table access.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// StorePerson creates or updates a person (upsert semantics).
func (s *Store) StorePerson(ctx context.Context, person *types.Person) error {
	if person == nil {
		return storage.ErrInvalidInput
	}
	if person.ID == "" {
		return fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}
	if person.Name == "" {
		return fmt.Errorf("%w: person name is required", storage.ErrInvalidInput)
	}
	if person.Gender == "" {
		person.Gender = types.GenderOther
	}
	if !types.IsValidGender(person.Gender) {
		return fmt.Errorf("%w: unknown gender %q", storage.ErrInvalidInput, person.Gender)
	}

	now := time.Now().UTC()
	if person.CreatedAt.IsZero() {
		person.CreatedAt = now
	}
	person.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO people (
			id, name, first_name, last_name, gender,
			birth_date, death_date, deceased, birth_place,
			occupation, notes, photo_url, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name        = excluded.name,
			first_name  = excluded.first_name,
			last_name   = excluded.last_name,
			gender      = excluded.gender,
			birth_date  = excluded.birth_date,
			death_date  = excluded.death_date,
			deceased    = excluded.deceased,
			birth_place = excluded.birth_place,
			occupation  = excluded.occupation,
			notes       = excluded.notes,
			photo_url   = excluded.photo_url,
			updated_at  = excluded.updated_at
	`,
		person.ID, person.Name, person.FirstName, person.LastName, string(person.Gender),
		person.BirthDate, person.DeathDate, boolToInt(person.Deceased), person.BirthPlace,
		person.Occupation, person.Notes, person.PhotoURL, person.CreatedAt, person.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store person: %w", err)
	}
	return nil
}

// GetPerson retrieves a person by ID.
func (s *Store) GetPerson(ctx context.Context, id string) (*types.Person, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, first_name, last_name, gender,
		       birth_date, death_date, deceased, birth_place,
		       occupation, notes, photo_url, created_at, updated_at
		FROM people WHERE id = ?
	`, id)

	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return person, nil
}

// ListPeople retrieves people with pagination.
func (s *Store) ListPeople(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.Person], error) {
	opts.Normalize()

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM people").Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count people: %w", err)
	}

	// SortBy has been whitelisted by Normalize; interpolation is safe here.
	query := fmt.Sprintf(`
		SELECT id, name, first_name, last_name, gender,
		       birth_date, death_date, deceased, birth_place,
		       occupation, notes, photo_url, created_at, updated_at
		FROM people
		ORDER BY %s %s
		LIMIT ? OFFSET ?
	`, opts.SortBy, opts.SortOrder)

	rows, err := s.db.QueryContext(ctx, query, opts.Limit, opts.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var items []types.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		items = append(items, *person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	return &storage.PaginatedResult[types.Person]{
		Items:    items,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.Limit,
		HasMore:  opts.Offset()+len(items) < total,
	}, nil
}

// AllPeople returns every person, sorted by id.
func (s *Store) AllPeople(ctx context.Context) ([]types.Person, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, first_name, last_name, gender,
		       birth_date, death_date, deceased, birth_place,
		       occupation, notes, photo_url, created_at, updated_at
		FROM people ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load people: %w", err)
	}
	defer rows.Close()

	var people []types.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, *person)
	}
	return people, rows.Err()
}

// DeletePerson removes a person and every edge that references them.
func (s *Store) DeletePerson(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM people WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM relationships WHERE person_id = ? OR related_person_id = ?", id, id); err != nil {
		return fmt.Errorf("failed to delete relationships: %w", err)
	}

	return tx.Commit()
}

// StoreRelationship creates or updates a relationship (upsert semantics).
func (s *Store) StoreRelationship(ctx context.Context, rel *types.Relationship) error {
	if rel == nil {
		return storage.ErrInvalidInput
	}
	if rel.ID == "" {
		return fmt.Errorf("%w: relationship ID is required", storage.ErrInvalidInput)
	}
	if rel.PersonID == "" || rel.RelatedPersonID == "" {
		return fmt.Errorf("%w: both person IDs are required", storage.ErrInvalidInput)
	}
	if !types.IsValidRelationshipType(rel.Type) {
		return fmt.Errorf("%w: unknown relationship type %q", storage.ErrInvalidInput, rel.Type)
	}

	now := time.Now().UTC()
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = now
	}
	rel.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO relationships (
			id, person_id, related_person_id, type,
			is_inferred, confidence, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			person_id         = excluded.person_id,
			related_person_id = excluded.related_person_id,
			type              = excluded.type,
			is_inferred       = excluded.is_inferred,
			confidence        = excluded.confidence,
			updated_at        = excluded.updated_at
	`,
		rel.ID, rel.PersonID, rel.RelatedPersonID, string(rel.Type),
		boolToInt(rel.IsInferred), rel.Confidence, rel.CreatedAt, rel.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store relationship: %w", err)
	}
	return nil
}

// GetRelationship retrieves a relationship by ID.
func (s *Store) GetRelationship(ctx context.Context, id string) (*types.Relationship, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: relationship ID is required", storage.ErrInvalidInput)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, person_id, related_person_id, type,
		       is_inferred, confidence, created_at, updated_at
		FROM relationships WHERE id = ?
	`, id)

	rel, err := scanRelationship(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get relationship: %w", err)
	}
	return rel, nil
}

// ListRelationships retrieves relationships with pagination, optionally
// scoped to the edges held by one person.
func (s *Store) ListRelationships(ctx context.Context, personID string, opts storage.ListOptions) (*storage.PaginatedResult[types.Relationship], error) {
	opts.Normalize()
	if opts.SortBy == "name" {
		opts.SortBy = "id" // relationships have no name column
	}

	where := ""
	var args []any
	if personID != "" {
		where = "WHERE person_id = ?"
		args = append(args, personID)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM relationships %s", where), args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count relationships: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, person_id, related_person_id, type,
		       is_inferred, confidence, created_at, updated_at
		FROM relationships %s
		ORDER BY %s %s
		LIMIT ? OFFSET ?
	`, where, opts.SortBy, opts.SortOrder)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	defer rows.Close()

	var items []types.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		items = append(items, *rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate relationships: %w", err)
	}

	return &storage.PaginatedResult[types.Relationship]{
		Items:    items,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.Limit,
		HasMore:  opts.Offset()+len(items) < total,
	}, nil
}

// AllRelationships returns every relationship edge, sorted by id.
func (s *Store) AllRelationships(ctx context.Context) ([]types.Relationship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_id, related_person_id, type,
		       is_inferred, confidence, created_at, updated_at
		FROM relationships ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load relationships: %w", err)
	}
	defer rows.Close()

	var rels []types.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		rels = append(rels, *rel)
	}
	return rels, rows.Err()
}

// DeleteRelationship removes a relationship by ID.
func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: relationship ID is required", storage.ErrInvalidInput)
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM relationships WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete relationship: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ReplaceAllRelationships atomically swaps the full edge set.
func (s *Store) ReplaceAllRelationships(ctx context.Context, rels []types.Relationship) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM relationships"); err != nil {
		return fmt.Errorf("failed to clear relationships: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO relationships (
			id, person_id, related_person_id, type,
			is_inferred, confidence, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range rels {
		rel := &rels[i]
		if rel.ID == "" || rel.PersonID == "" || rel.RelatedPersonID == "" {
			return fmt.Errorf("%w: relationship %d is incomplete", storage.ErrInvalidInput, i)
		}
		createdAt := rel.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		updatedAt := rel.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = now
		}
		if _, err := stmt.ExecContext(ctx,
			rel.ID, rel.PersonID, rel.RelatedPersonID, string(rel.Type),
			boolToInt(rel.IsInferred), rel.Confidence, createdAt, updatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert relationship %s: %w", rel.ID, err)
		}
	}

	return tx.Commit()
}

// Snapshot returns the full roster and edge set in one call.
func (s *Store) Snapshot(ctx context.Context) ([]types.Person, []types.Relationship, error) {
	people, err := s.AllPeople(ctx)
	if err != nil {
		return nil, nil, err
	}
	rels, err := s.AllRelationships(ctx)
	if err != nil {
		return nil, nil, err
	}
	return people, rels, nil
}

// scanner abstracts sql.Row and sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(row scanner) (*types.Person, error) {
	var (
		p        types.Person
		gender   string
		deceased int
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.FirstName, &p.LastName, &gender,
		&p.BirthDate, &p.DeathDate, &deceased, &p.BirthPlace,
		&p.Occupation, &p.Notes, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Gender = types.Gender(gender)
	p.Deceased = deceased != 0
	return &p, nil
}

func scanRelationship(row scanner) (*types.Relationship, error) {
	var (
		r          types.Relationship
		relType    string
		isInferred int
	)
	err := row.Scan(
		&r.ID, &r.PersonID, &r.RelatedPersonID, &relType,
		&isInferred, &r.Confidence, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Type = types.RelationshipType(relType)
	r.IsInferred = isInferred != 0
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
