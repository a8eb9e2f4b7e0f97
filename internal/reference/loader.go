package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/nao1215/dxmanifest/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Default column layout of the ADHD-200 preprocessed phenotypic table.
const (
	// DefaultIdentifierColumn is the subject identifier column.
	DefaultIdentifierColumn = "ScanDir ID"

	// DefaultDiagnosisColumn is the diagnosis column.
	DefaultDiagnosisColumn = "DX"

	// DefaultDelimiter separates fields.
	DefaultDelimiter = '\t'
)

// Loader reads a reference table.
type Loader struct {
	identifierColumn string
	diagnosisColumn  string
	delimiter        rune
	logger           *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithIdentifierColumn sets the header name of the identifier column.
func WithIdentifierColumn(name string) Option {
	return func(l *Loader) {
		l.identifierColumn = name
	}
}

// WithDiagnosisColumn sets the header name of the diagnosis column.
func WithDiagnosisColumn(name string) Option {
	return func(l *Loader) {
		l.diagnosisColumn = name
	}
}

// WithDelimiter sets the field delimiter.
func WithDelimiter(r rune) Option {
	return func(l *Loader) {
		l.delimiter = r
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader with the given options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		identifierColumn: DefaultIdentifierColumn,
		diagnosisColumn:  DefaultDiagnosisColumn,
		delimiter:        DefaultDelimiter,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads the reference table at path.
// Rows are returned in file order.
//
// Load fails with an error wrapping model.ErrIO if the file cannot be
// opened or read, and with a *ParseError (model.ErrParse) if the header or
// a row does not have the expected shape.
func (l *Loader) Load(path string) ([]model.ReferenceRow, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided reference path is intentional
	if err != nil {
		return nil, fmt.Errorf("%w: open reference table %s: %w", model.ErrIO, path, err)
	}
	defer f.Close()

	rows, err := l.Read(f, path)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("reference table loaded", "path", path, "rows", len(rows))
	return rows, nil
}

// Read parses a reference table from r. name is used in error messages.
func (l *Loader) Read(r io.Reader, name string) ([]model.ReferenceRow, error) {
	// Spreadsheet exports often start with a UTF-8 BOM, which would
	// otherwise become part of the first header name.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.Comma = l.delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Path: name, Err: errors.New("empty table: missing header row")}
	}
	if err != nil {
		return nil, l.readError(name, err)
	}

	idIdx, err := columnIndex(header, l.identifierColumn)
	if err != nil {
		return nil, &ParseError{Path: name, Line: 1, Err: l.headerError(err)}
	}
	dxIdx, err := columnIndex(header, l.diagnosisColumn)
	if err != nil {
		return nil, &ParseError{Path: name, Line: 1, Err: l.headerError(err)}
	}
	minFields := max(idIdx, dxIdx) + 1

	rows := make([]model.ReferenceRow, 0, 256)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, l.readError(name, err)
		}
		line, _ := cr.FieldPos(0)

		if len(record) < minFields {
			return nil, &ParseError{
				Path: name,
				Line: line,
				Err:  fmt.Errorf("row has %d fields, need at least %d", len(record), minFields),
			}
		}

		raw := strings.TrimSpace(record[idIdx])
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &ParseError{
				Path: name,
				Line: line,
				Err:  fmt.Errorf("column %q: identifier %q is not an integer", l.identifierColumn, raw),
			}
		}

		rows = append(rows, model.ReferenceRow{
			Identifier: id,
			Diagnosis:  record[dxIdx],
			Line:       line,
		})
	}

	return rows, nil
}

// headerError adds a delimiter hint to a missing-column error.
func (l *Loader) headerError(err error) error {
	return fmt.Errorf("%w (fields are separated by %q)", err, l.delimiter)
}

// readError classifies an error returned by the CSV reader.
func (l *Loader) readError(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Path: name, Line: pe.Line, Err: pe.Err}
	}
	return fmt.Errorf("%w: read reference table %s: %w", model.ErrIO, name, err)
}

// columnIndex finds want in header. An exact match is preferred; otherwise
// names are compared case-folded with surrounding spaces removed.
func columnIndex(header []string, want string) (int, error) {
	for i, h := range header {
		if h == want {
			return i, nil
		}
	}

	fold := cases.Fold()
	folded := fold.String(strings.TrimSpace(want))
	for i, h := range header {
		if fold.String(strings.TrimSpace(h)) == folded {
			return i, nil
		}
	}

	return -1, fmt.Errorf("header has no column %q", want)
}
