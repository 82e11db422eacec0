// Command kinfolk-import loads a CSV roster or a directory of person notes
// into the Kinfolk database, with optional inference and validation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/scrypster/kinfolk/internal/config"
	"github.com/scrypster/kinfolk/internal/importer"
	"github.com/scrypster/kinfolk/internal/kin"
	"github.com/scrypster/kinfolk/internal/storage"
	"github.com/scrypster/kinfolk/internal/storage/postgres"
	"github.com/scrypster/kinfolk/internal/storage/sqlite"
)

var (
	csvPath  = flag.String("csv", "", "Path to a CSV roster file")
	notesDir = flag.String("notes", "", "Path to a directory of person-note markdown files")
	dataPath = flag.String("data", "", "Data directory for the SQLite database (overrides config)")
	infer    = flag.Bool("infer", false, "Run an inference pass after the import")
	validate = flag.Bool("validate", false, "Run the consistency validator after the import")
	quiet    = flag.Bool("quiet", false, "Suppress per-row progress output")
)

func main() {
	flag.Parse()

	if (*csvPath == "") == (*notesDir == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -csv or -notes is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dataPath != "" {
		cfg.Storage.DataPath = *dataPath
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	var progress importer.ProgressFunc
	if !*quiet {
		progress = func(p importer.ImportProgress) {
			if p.Stage == "running" && p.CurrentItem != "" {
				log.Printf("  [%d/%d] %s", p.Processed, p.Total, p.CurrentItem)
			}
		}
	}

	ctx := context.Background()
	imp := importer.New(store, progress)

	var result *importer.ImportResult
	if *csvPath != "" {
		f, err := os.Open(*csvPath)
		if err != nil {
			log.Fatalf("Failed to open CSV file: %v", err)
		}
		result, err = imp.ImportCSV(ctx, f)
		f.Close()
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
	} else {
		result, err = imp.ImportNotes(ctx, *notesDir)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
	}

	printSummary(result)

	if *infer {
		runInference(ctx, store)
	}
	if *validate {
		runValidation(ctx, store)
	}
}

// openStore builds the storage backend named by the config.
func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.StorageEngine == "postgres" {
		return postgres.New(cfg.Storage.PostgresDSN)
	}
	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		return nil, err
	}
	return sqlite.New(cfg.Storage.DataPath + "/kinfolk.db")
}

func printSummary(result *importer.ImportResult) {
	fmt.Printf("Import %s finished in %s\n", result.JobID, result.Duration)
	fmt.Printf("  rows found:            %d\n", result.RowsFound)
	fmt.Printf("  people created:        %d\n", result.PeopleCreated)
	fmt.Printf("  people updated:        %d\n", result.PeopleUpdated)
	fmt.Printf("  relationships created: %d\n", result.RelationshipsCreated)
	fmt.Printf("  rows skipped:          %d\n", result.RowsSkipped)
	for _, msg := range result.Errors {
		fmt.Printf("  warning: %s\n", msg)
	}
}

func runInference(ctx context.Context, store storage.Store) {
	people, rels, err := store.Snapshot(ctx)
	if err != nil {
		log.Fatalf("Failed to load data for inference: %v", err)
	}

	combined := kin.InferRelationships(people, rels)
	if err := store.ReplaceAllRelationships(ctx, combined); err != nil {
		log.Fatalf("Failed to commit inferred relationships: %v", err)
	}
	fmt.Printf("Inference added %d relationships (%d total)\n",
		len(combined)-len(rels), len(combined))
}

func runValidation(ctx context.Context, store storage.Store) {
	people, rels, err := store.Snapshot(ctx)
	if err != nil {
		log.Fatalf("Failed to load data for validation: %v", err)
	}

	findings := kin.Validate(people, rels)
	if len(findings) == 0 {
		fmt.Println("Validation found no issues")
		return
	}
	fmt.Printf("Validation found %d issues:\n", len(findings))
	for _, f := range findings {
		fmt.Printf("  [%s] %s: %s\n", f.Severity, f.Type, f.Message)
		if f.Suggestion != "" {
			fmt.Printf("      %s\n", f.Suggestion)
		}
	}
}
