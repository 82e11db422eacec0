package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/scrypster/kinfolk/internal/config"
	"github.com/scrypster/kinfolk/internal/importer"
)

func TestOpenStoreCreatesDataDir(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.StorageEngine = "sqlite"
	cfg.Storage.DataPath = filepath.Join(t.TempDir(), "nested", "data")

	store, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(cfg.Storage.DataPath); err != nil {
		t.Errorf("data directory was not created: %v", err)
	}

	people, err := store.AllPeople(context.Background())
	if err != nil {
		t.Fatalf("store is not usable: %v", err)
	}
	if len(people) != 0 {
		t.Errorf("fresh store should be empty, got %d people", len(people))
	}
}

func TestImportThenInferFlow(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.StorageEngine = "sqlite"
	cfg.Storage.DataPath = t.TempDir()

	store, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore failed: %v", err)
	}
	defer store.Close()

	csvPath := filepath.Join(t.TempDir(), "family.csv")
	csvData := "person_name,relationship_type,related_person_name\nAlice,parent,Mom\nBob,parent,Mom\n"
	if err := os.WriteFile(csvPath, []byte(csvData), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	ctx := context.Background()
	result, err := importer.New(store, nil).ImportCSV(ctx, f)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.PeopleCreated != 3 {
		t.Errorf("people created = %d, want 3", result.PeopleCreated)
	}

	runInference(ctx, store)

	_, rels, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}

	var siblings int
	for _, rel := range rels {
		if rel.IsInferred && rel.Type == "sibling" {
			siblings++
		}
	}
	if siblings != 2 {
		t.Errorf("inferred sibling edges = %d, want 2", siblings)
	}
}
