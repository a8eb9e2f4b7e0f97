package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/dxmanifest/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// newSummary creates a successful summary for outputPath.
func newSummary(outputPath, digest string) *model.Summary {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.Summary{
		ImageDir:      "/data/images",
		ReferencePath: "/data/phenotypic.tsv",
		OutputPath:    outputPath,
		StartedAt:     started,
		FinishedAt:    started.Add(time.Second),
		FilesScanned:  3,
		ReferenceRows: 2,
		Matched:       1,
		RowsWritten:   1,
		Positive:      1,
		Digest:        digest,
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent-db")

		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error when CreateIfNotExists=false and database does not exist")
		}
		if !strings.Contains(err.Error(), "database not found") {
			t.Errorf("expected error to contain %q, got %q", "database not found", err.Error())
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("database directory should not have been created when CreateIfNotExists=false")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "existing-db")
		ctx := context.Background()

		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		id, err := db1.SaveRun(ctx, newSummary("/data/model_data.csv", "d1"))
		if err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		_ = db1.Close()

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to open existing database: %v", err)
		}
		defer db2.Close()

		got, err := db2.GetRun(ctx, id)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Digest != "d1" {
			t.Errorf("expected persisted digest d1, got %q", got.Digest)
		}
	})
}

func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	t.Run("round trips summary", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		want := newSummary("/data/model_data.csv", "abc")
		want.Dataset = "peking"

		id, err := db.SaveRun(ctx, want)
		if err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		if id == 0 || want.ID != id {
			t.Fatalf("expected ID to be assigned, got id=%d summary.ID=%d", id, want.ID)
		}

		got, err := db.GetRun(ctx, id)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("summary mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		_, err := db.GetRun(context.Background(), 42)
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	for _, digest := range []string{"d1", "d2", "d3"} {
		if _, err := db.SaveRun(ctx, newSummary("/data/model_data.csv", digest)); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all runs newest first", limit: 0, want: []string{"d3", "d2", "d1"}},
		{name: "limited", limit: 2, want: []string{"d3", "d2"}},
		{name: "limit above count", limit: 10, want: []string{"d3", "d2", "d1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := db.ListRuns(ctx, tt.limit)
			if err != nil {
				t.Fatalf("failed to list runs: %v", err)
			}

			got := make([]string, len(runs))
			for i, r := range runs {
				got[i] = r.Digest
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("digests mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("empty database", func(t *testing.T) {
		t.Parallel()

		runs, err := setupTestDB(t).ListRuns(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("expected no runs, got %d", len(runs))
		}
	})
}

func TestLatestRunForOutput(t *testing.T) {
	t.Parallel()

	t.Run("returns nil without history", func(t *testing.T) {
		t.Parallel()

		got, err := setupTestDB(t).LatestRunForOutput(context.Background(), "/data/model_data.csv")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("picks newest successful run for the path", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		failed := newSummary("/data/model_data.csv", "")
		failed.Error = "diagnosis is not an integer"

		for _, s := range []*model.Summary{
			newSummary("/data/model_data.csv", "old"),
			newSummary("/data/model_data.csv", "new"),
			newSummary("/other/model_data.csv", "other"),
			failed,
		} {
			if _, err := db.SaveRun(ctx, s); err != nil {
				t.Fatalf("failed to save run: %v", err)
			}
		}

		got, err := db.LatestRunForOutput(ctx, "/data/model_data.csv")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || got.Digest != "new" {
			t.Errorf("expected digest new, got %+v", got)
		}
	})
}
