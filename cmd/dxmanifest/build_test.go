package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/dxmanifest/internal/config"
	"github.com/nao1215/dxmanifest/internal/model"
)

// testDataset is an image directory, a reference table and an empty
// configuration file inside one temporary directory.
type testDataset struct {
	root      string
	imageDir  string
	reference string
	config    string
}

// newTestDataset creates the end-to-end fixture: scan_0010.nii is a
// positive subject, scan_7.nii has no usable identifier and notes.txt
// has no digits at all.
func newTestDataset(t *testing.T) testDataset {
	t.Helper()

	root := t.TempDir()
	ds := testDataset{
		root:      root,
		imageDir:  filepath.Join(root, "images"),
		reference: filepath.Join(root, "phenotypic.tsv"),
		config:    filepath.Join(root, config.DefaultConfigFile),
	}

	if err := os.Mkdir(ds.imageDir, 0o750); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"scan_0010.nii", "scan_7.nii", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(ds.imageDir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(ds.reference, []byte("ScanDir ID\tDX\n10\t1\n7\tpending\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ds.config, []byte("defaults: {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	return ds
}

// flags returns the build flags selecting the fixture's inputs.
func (ds testDataset) flags() []string {
	return []string{
		"build",
		"--config", ds.config,
		"--image-dir", ds.imageDir,
		"--reference", ds.reference,
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestBuildCmd(t *testing.T) {
	t.Parallel()

	t.Run("writes manifest next to the reference", func(t *testing.T) {
		t.Parallel()

		ds := newTestDataset(t)
		stdout, _, err := execute(t, append(ds.flags(), "--no-history")...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := os.ReadFile(filepath.Join(ds.root, config.DefaultOutputName))
		if err != nil {
			t.Fatal(err)
		}
		want := "identifier,diagnosis,filename\n10,1,scan_0010.nii\n"
		if diff := cmp.Diff(want, string(got)); diff != "" {
			t.Errorf("manifest mismatch (-want +got):\n%s", diff)
		}
		if !strings.Contains(stdout, "Rows written:       1") {
			t.Errorf("expected summary on stdout, got\n%s", stdout)
		}
	})

	t.Run("json summary", func(t *testing.T) {
		t.Parallel()

		ds := newTestDataset(t)
		stdout, _, err := execute(t, append(ds.flags(), "--no-history", "--json")...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var s model.Summary
		if err := json.Unmarshal([]byte(stdout), &s); err != nil {
			t.Fatalf("invalid JSON summary: %v\n%s", err, stdout)
		}
		if s.FilesScanned != 3 || s.FilesUnidentified != 2 || s.RowsWritten != 1 || s.Positive != 1 {
			t.Errorf("unexpected summary %+v", s)
		}
		if s.Digest == "" {
			t.Error("expected digest")
		}
	})

	t.Run("markdown report goes to stdout and file", func(t *testing.T) {
		t.Parallel()

		ds := newTestDataset(t)
		reportPath := filepath.Join(ds.root, "reports", "build.md")

		stdout, _, err := execute(t, append(ds.flags(), "--no-history", "--markdown", "--report", reportPath)...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("report not written: %v", err)
		}
		if !strings.Contains(string(content), "# Manifest Build") {
			t.Errorf("unexpected report\n%s", content)
		}
		if diff := cmp.Diff(string(content), stdout); diff != "" {
			t.Errorf("stdout and report file differ (-file +stdout):\n%s", diff)
		}
	})

	t.Run("flags override layout", func(t *testing.T) {
		t.Parallel()

		ds := newTestDataset(t)
		if err := os.WriteFile(ds.reference, []byte("subject,group\n10,0\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		outDir := filepath.Join(ds.root, "out")

		_, _, err := execute(t, append(ds.flags(),
			"--no-history",
			"--delimiter", ",",
			"--id-column", "subject",
			"--dx-column", "group",
			"--output-dir", outDir,
			"--output-name", "train.csv",
		)...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := os.ReadFile(filepath.Join(outDir, "train.csv"))
		if err != nil {
			t.Fatal(err)
		}
		if want := "identifier,diagnosis,filename\n10,0,scan_0010.nii\n"; string(got) != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("dataset from config file", func(t *testing.T) {
		t.Parallel()

		ds := newTestDataset(t)
		content := `defaults:
  outputName: defaults.csv
datasets:
  site:
    imageDir: images
    reference: phenotypic.tsv
    outputDir: manifests
`
		if err := os.WriteFile(ds.config, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		_, _, err := execute(t, "build", "--config", ds.config, "--dataset", "site", "--no-history")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(ds.root, "manifests", "defaults.csv")); err != nil {
			t.Errorf("expected manifest from dataset settings: %v", err)
		}
	})

	t.Run("missing image directory fails with summary", func(t *testing.T) {
		t.Parallel()

		ds := newTestDataset(t)
		stdout, _, err := execute(t, "build",
			"--config", ds.config,
			"--image-dir", filepath.Join(ds.root, "missing"),
			"--reference", ds.reference,
			"--no-history",
		)

		if !errors.Is(err, model.ErrIO) {
			t.Errorf("expected ErrIO, got %v", err)
		}
		if !strings.Contains(stdout, "FAILED") {
			t.Errorf("expected failed summary, got\n%s", stdout)
		}
		if _, statErr := os.Stat(filepath.Join(ds.root, config.DefaultOutputName)); !os.IsNotExist(statErr) {
			t.Error("no manifest should be written")
		}
	})

	t.Run("configuration errors", func(t *testing.T) {
		t.Parallel()

		ds := newTestDataset(t)
		tests := []struct {
			name string
			args []string
			want error
		}{
			{
				name: "conflicting formats",
				args: append(ds.flags(), "--json", "--markdown"),
				want: config.ErrConflictingReportFormats,
			},
			{
				name: "unknown dataset",
				args: append(ds.flags(), "--dataset", "nope"),
				want: config.ErrUnknownDataset,
			},
			{
				name: "missing config file",
				args: []string{"build", "--config", filepath.Join(ds.root, "missing.yaml")},
				want: config.ErrConfigNotFound,
			},
			{
				name: "no image directory",
				args: []string{"build", "--config", ds.config, "--reference", ds.reference},
				want: config.ErrNoImageDir,
			},
			{
				name: "bad selection",
				args: append(ds.flags(), "--selection", "first"),
				want: config.ErrInvalidSelection,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				_, _, err := execute(t, tt.args...)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}

func TestBuildHistory(t *testing.T) {
	t.Parallel()

	ds := newTestDataset(t)
	historyDir := filepath.Join(ds.root, "history")
	args := append(ds.flags(), "--history-dir", historyDir)

	if _, stderr, err := execute(t, args...); err != nil {
		t.Fatalf("first build failed: %v\n%s", err, stderr)
	}

	_, stderr, err := execute(t, args...)
	if err != nil {
		t.Fatalf("second build failed: %v", err)
	}
	if !strings.Contains(stderr, "Manifest unchanged since run #1") {
		t.Errorf("expected unchanged notice, got %q", stderr)
	}

	if err := os.WriteFile(ds.reference, []byte("ScanDir ID\tDX\n10\t0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, stderr, err = execute(t, args...)
	if err != nil {
		t.Fatalf("third build failed: %v", err)
	}
	if !strings.Contains(stderr, "Manifest changed since run #2") {
		t.Errorf("expected changed notice, got %q", stderr)
	}

	t.Run("history lists runs", func(t *testing.T) {
		stdout, _, err := execute(t, "history", "--history-dir", historyDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Build history (3 runs)") {
			t.Errorf("unexpected output\n%s", stdout)
		}
	})

	t.Run("history as JSON with limit", func(t *testing.T) {
		stdout, _, err := execute(t, "history", "--history-dir", historyDir, "--json", "--limit", "2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var runs []model.Summary
		if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(runs) != 2 || runs[0].ID != 3 || runs[0].Negative != 1 {
			t.Errorf("unexpected runs %+v", runs)
		}
	})

	t.Run("history shows one run", func(t *testing.T) {
		stdout, _, err := execute(t, "history", "--history-dir", historyDir, "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "History ID: 1") {
			t.Errorf("unexpected output\n%s", stdout)
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		if _, _, err := execute(t, "history", "--history-dir", historyDir, "99"); err == nil {
			t.Error("expected error for unknown run")
		}
	})
}

func TestHistoryCmdWithoutDatabase(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "history", "--history-dir", filepath.Join(t.TempDir(), "none"))
	if err == nil || !strings.Contains(err.Error(), "no build history") {
		t.Errorf("expected missing history error, got %v", err)
	}
}
