package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/scrypster/kinfolk/internal/storage"
	"github.com/scrypster/kinfolk/pkg/types"
)

// newTestStore creates an in-memory SQLite store for testing. New applies
// the full Schema, so no additional DDL is required in tests.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testPerson(id string) *types.Person {
	return &types.Person{
		ID:        id,
		Name:      "Person " + id,
		Gender:    types.GenderFemale,
		BirthDate: "1970-01-01",
	}
}

func testRel(id, personID, relatedID string, t types.RelationshipType) *types.Relationship {
	return &types.Relationship{
		ID:              id,
		PersonID:        personID,
		RelatedPersonID: relatedID,
		Type:            t,
		Confidence:      1.0,
	}
}

func TestPersonRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testPerson("p1")
	p.FirstName = "Ada"
	p.LastName = "Byron"
	p.BirthPlace = "London"
	p.Occupation = "mathematician"
	p.Deceased = true
	p.DeathDate = "1852-11-27"

	if err := store.StorePerson(ctx, p); err != nil {
		t.Fatalf("StorePerson failed: %v", err)
	}

	got, err := store.GetPerson(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPerson failed: %v", err)
	}
	if got.Name != p.Name || got.FirstName != "Ada" || got.LastName != "Byron" {
		t.Errorf("names did not round-trip: %+v", got)
	}
	if got.Gender != types.GenderFemale {
		t.Errorf("gender = %q", got.Gender)
	}
	if !got.Deceased || got.DeathDate != "1852-11-27" {
		t.Errorf("death fields did not round-trip: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not populated")
	}
}

func TestStorePersonUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testPerson("p1")
	if err := store.StorePerson(ctx, p); err != nil {
		t.Fatalf("first store failed: %v", err)
	}

	p.Name = "Renamed"
	if err := store.StorePerson(ctx, p); err != nil {
		t.Fatalf("second store failed: %v", err)
	}

	got, err := store.GetPerson(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPerson failed: %v", err)
	}
	if got.Name != "Renamed" {
		t.Errorf("name = %q, want Renamed", got.Name)
	}

	all, err := store.AllPeople(ctx)
	if err != nil {
		t.Fatalf("AllPeople failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("upsert created %d rows, want 1", len(all))
	}
}

func TestStorePersonValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.StorePerson(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("nil person: err = %v", err)
	}
	if err := store.StorePerson(ctx, &types.Person{Name: "no id"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("missing id: err = %v", err)
	}
	if err := store.StorePerson(ctx, &types.Person{ID: "x"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("missing name: err = %v", err)
	}
	bad := testPerson("g")
	bad.Gender = types.Gender("unknown")
	if err := store.StorePerson(ctx, bad); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("bad gender: err = %v", err)
	}
}

func TestGetPersonNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetPerson(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListPeoplePagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		if err := store.StorePerson(ctx, testPerson(id)); err != nil {
			t.Fatalf("StorePerson(%s) failed: %v", id, err)
		}
	}

	page1, err := store.ListPeople(ctx, storage.ListOptions{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListPeople failed: %v", err)
	}
	if page1.Total != 5 || len(page1.Items) != 2 || !page1.HasMore {
		t.Errorf("page 1 = total %d, %d items, more=%v", page1.Total, len(page1.Items), page1.HasMore)
	}
	if page1.Items[0].ID != "a" || page1.Items[1].ID != "b" {
		t.Errorf("page 1 ids = %s, %s", page1.Items[0].ID, page1.Items[1].ID)
	}

	page3, err := store.ListPeople(ctx, storage.ListOptions{Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("ListPeople failed: %v", err)
	}
	if len(page3.Items) != 1 || page3.HasMore {
		t.Errorf("page 3 = %d items, more=%v", len(page3.Items), page3.HasMore)
	}
}

func TestDeletePersonCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if err := store.StorePerson(ctx, testPerson(id)); err != nil {
			t.Fatalf("StorePerson failed: %v", err)
		}
	}
	if err := store.StoreRelationship(ctx, testRel("r1", "a", "b", types.RelTypeParent)); err != nil {
		t.Fatalf("StoreRelationship failed: %v", err)
	}
	if err := store.StoreRelationship(ctx, testRel("r2", "b", "a", types.RelTypeChild)); err != nil {
		t.Fatalf("StoreRelationship failed: %v", err)
	}

	if err := store.DeletePerson(ctx, "a"); err != nil {
		t.Fatalf("DeletePerson failed: %v", err)
	}

	rels, err := store.AllRelationships(ctx)
	if err != nil {
		t.Fatalf("AllRelationships failed: %v", err)
	}
	if len(rels) != 0 {
		t.Errorf("expected cascade to remove both edges, %d left", len(rels))
	}

	if err := store.DeletePerson(ctx, "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestRelationshipRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rel := testRel("r1", "a", "b", types.RelTypeParent)
	rel.IsInferred = true
	rel.Confidence = 0.95

	if err := store.StoreRelationship(ctx, rel); err != nil {
		t.Fatalf("StoreRelationship failed: %v", err)
	}

	got, err := store.GetRelationship(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRelationship failed: %v", err)
	}
	if got.PersonID != "a" || got.RelatedPersonID != "b" || got.Type != types.RelTypeParent {
		t.Errorf("edge did not round-trip: %+v", got)
	}
	if !got.IsInferred || got.Confidence != 0.95 {
		t.Errorf("inference fields did not round-trip: %+v", got)
	}
}

func TestStoreRelationshipRejectsUnknownType(t *testing.T) {
	store := newTestStore(t)

	rel := testRel("r1", "a", "b", types.RelationshipType("frenemy"))
	if err := store.StoreRelationship(context.Background(), rel); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestListRelationshipsByPerson(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.StoreRelationship(ctx, testRel("r1", "a", "b", types.RelTypeParent)); err != nil {
		t.Fatal(err)
	}
	if err := store.StoreRelationship(ctx, testRel("r2", "a", "c", types.RelTypeSibling)); err != nil {
		t.Fatal(err)
	}
	if err := store.StoreRelationship(ctx, testRel("r3", "b", "a", types.RelTypeChild)); err != nil {
		t.Fatal(err)
	}

	res, err := store.ListRelationships(ctx, "a", storage.ListOptions{})
	if err != nil {
		t.Fatalf("ListRelationships failed: %v", err)
	}
	if res.Total != 2 || len(res.Items) != 2 {
		t.Errorf("scoped list = total %d, %d items", res.Total, len(res.Items))
	}

	all, err := store.ListRelationships(ctx, "", storage.ListOptions{})
	if err != nil {
		t.Fatalf("ListRelationships failed: %v", err)
	}
	if all.Total != 3 {
		t.Errorf("unscoped total = %d, want 3", all.Total)
	}
}

func TestReplaceAllRelationships(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.StoreRelationship(ctx, testRel("old", "a", "b", types.RelTypeParent)); err != nil {
		t.Fatal(err)
	}

	next := []types.Relationship{
		*testRel("n1", "a", "b", types.RelTypeParent),
		*testRel("n2", "b", "a", types.RelTypeChild),
	}
	if err := store.ReplaceAllRelationships(ctx, next); err != nil {
		t.Fatalf("ReplaceAllRelationships failed: %v", err)
	}

	rels, err := store.AllRelationships(ctx)
	if err != nil {
		t.Fatalf("AllRelationships failed: %v", err)
	}
	if len(rels) != 2 {
		t.Fatalf("edge set size = %d, want 2", len(rels))
	}
	if _, err := store.GetRelationship(ctx, "old"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("old edge survived the swap: err = %v", err)
	}
}

func TestReplaceAllRelationshipsRollsBackOnBadEdge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.StoreRelationship(ctx, testRel("keep", "a", "b", types.RelTypeParent)); err != nil {
		t.Fatal(err)
	}

	bad := []types.Relationship{
		*testRel("n1", "a", "b", types.RelTypeParent),
		{ID: "", PersonID: "a", RelatedPersonID: "b", Type: types.RelTypeChild},
	}
	if err := store.ReplaceAllRelationships(ctx, bad); !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	rels, err := store.AllRelationships(ctx)
	if err != nil {
		t.Fatalf("AllRelationships failed: %v", err)
	}
	if len(rels) != 1 || rels[0].ID != "keep" {
		t.Errorf("failed swap must leave the old set intact, got %v", rels)
	}
}

func TestSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"b", "a"} {
		if err := store.StorePerson(ctx, testPerson(id)); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.StoreRelationship(ctx, testRel("r1", "a", "b", types.RelTypeSpouse)); err != nil {
		t.Fatal(err)
	}

	people, rels, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(people) != 2 || people[0].ID != "a" || people[1].ID != "b" {
		t.Errorf("people snapshot = %v", people)
	}
	if len(rels) != 1 || rels[0].Type != types.RelTypeSpouse {
		t.Errorf("relationship snapshot = %v", rels)
	}
}

func TestDeleteRelationshipNotFound(t *testing.T) {
	store := newTestStore(t)

	if err := store.DeleteRelationship(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
