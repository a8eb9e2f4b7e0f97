package scanner

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/dxmanifest/internal/model"
)

// Scanner lists an image directory into ScannedFiles.
type Scanner struct {
	// selection is the digit-run rule.
	selection Selection

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithSelection sets the digit-run rule.
func WithSelection(sel Selection) Option {
	return func(s *Scanner) {
		s.selection = sel
	}
}

// WithLogger sets a custom logger for the scanner.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// New creates a Scanner with the given options.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		selection: DefaultSelection,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Scan lists dir (non-recursively) and returns one ScannedFile per entry,
// in lexical filename order. Entries without an identifier are included.
//
// Scan fails with an error wrapping model.ErrIO if dir does not exist,
// is not a directory or cannot be read.
func (s *Scanner) Scan(dir string) ([]model.ScannedFile, error) {
	// os.ReadDir returns entries sorted by filename.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read image directory %s: %w", model.ErrIO, dir, err)
	}

	files := make([]model.ScannedFile, 0, len(entries))
	for _, entry := range entries {
		files = append(files, s.Identify(entry.Name()))
	}

	return files, nil
}

// Identify builds the ScannedFile of a single filename.
func (s *Scanner) Identify(name string) model.ScannedFile {
	file := model.ScannedFile{Filename: name}

	id, ok, err := ExtractIdentifier(name, s.selection)
	if err != nil {
		s.logger.Debug("identifier out of range", "file", name, "error", err)
		return file
	}
	if !ok {
		s.logger.Debug("no identifier in filename", "file", name)
		return file
	}

	file.Identifier = id
	file.HasIdentifier = true
	return file
}
