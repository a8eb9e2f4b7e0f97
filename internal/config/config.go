package config

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/adrg/xdg"
	"github.com/nao1215/dxmanifest/internal/model"
	"github.com/nao1215/dxmanifest/internal/reference"
	"github.com/nao1215/dxmanifest/internal/scanner"
)

// Default configuration values.
// The column names and sentinel match the ADHD-200 preprocessed
// phenotypic table.
const (
	// DefaultOutputName is the manifest file name.
	DefaultOutputName = "model_data.csv"

	// DefaultIdentifierColumn is the subject identifier column of the reference table.
	DefaultIdentifierColumn = reference.DefaultIdentifierColumn

	// DefaultDiagnosisColumn is the diagnosis column of the reference table.
	DefaultDiagnosisColumn = reference.DefaultDiagnosisColumn

	// DefaultPendingValue marks subjects without a resolved diagnosis.
	DefaultPendingValue = model.DefaultPendingValue

	// DefaultSelection is the digit-run rule for filename identifiers.
	DefaultSelection = string(scanner.DefaultSelection)

	// DefaultDelimiter separates fields of the reference table.
	DefaultDelimiter = "\t"

	// AppName is the application name used for XDG directory paths.
	AppName = "dxmanifest"
)

// Config holds all configuration options for a manifest build.
// It is populated from CLI flags and the optional configuration file and
// passed down explicitly; nothing reads process-wide state.
type Config struct {
	// Dataset is the name of the dataset selected from the configuration file.
	// Empty means only the file's defaults apply.
	Dataset string

	// ImageDir is the directory holding the preprocessed scan files.
	ImageDir string

	// ReferencePath is the phenotype reference table.
	ReferencePath string

	// OutputDir is the directory the manifest is written to.
	// When empty, the directory of ReferencePath is used.
	OutputDir string

	// OutputName is the manifest file name inside OutputDir.
	OutputName string

	// IdentifierColumn is the header name of the identifier column.
	IdentifierColumn string

	// DiagnosisColumn is the header name of the diagnosis column.
	DiagnosisColumn string

	// PendingValue is the diagnosis of subjects that are not resolved yet.
	// Rows carrying it are left out of the manifest.
	PendingValue string

	// Selection is the digit-run rule: "longest" or "last".
	Selection string

	// Delimiter is the single-character field separator of the reference
	// table. The word "tab" is accepted as an alias for "\t".
	Delimiter string

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches the current directory, the home directory
	// and the XDG config directory.
	ConfigFilePath string

	// Datasets holds the dataset configurations loaded from the config file.
	Datasets *File

	// JSONReport prints the run summary as JSON.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the run summary as Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the path the run summary is written to.
	// When empty, the summary goes to stdout.
	ReportFile string

	// DBDir is the directory of the run history database.
	// Defaults to the XDG data directory (~/.local/share/dxmanifest on Linux).
	DBDir string

	// SaveToDB records each run, failed ones included, in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		OutputName:       DefaultOutputName,
		IdentifierColumn: DefaultIdentifierColumn,
		DiagnosisColumn:  DefaultDiagnosisColumn,
		PendingValue:     DefaultPendingValue,
		Selection:        DefaultSelection,
		Delimiter:        DefaultDelimiter,
		DBDir:            XDGDataDir(),
		SaveToDB:         true,
	}
}

// XDGDataDir returns the XDG data directory for dxmanifest.
// On Linux: ~/.local/share/dxmanifest
// On macOS: ~/Library/Application Support/dxmanifest
// On Windows: %LOCALAPPDATA%\dxmanifest
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for dxmanifest.
// On Linux: ~/.config/dxmanifest
// On macOS: ~/Library/Application Support/dxmanifest
// On Windows: %APPDATA%\dxmanifest
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// OutputPath returns the full path of the manifest.
func (c *Config) OutputPath() string {
	dir := c.OutputDir
	if dir == "" {
		dir = filepath.Dir(c.ReferencePath)
	}
	return filepath.Join(dir, c.OutputName)
}

// DelimiterRune returns Delimiter as a rune.
// Call Validate first; an invalid delimiter yields utf8.RuneError.
func (c *Config) DelimiterRune() rune {
	if strings.EqualFold(c.Delimiter, "tab") {
		return '\t'
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Apply overrides fields with the non-empty values of ds.
func (c *Config) Apply(ds DatasetConfig) {
	if ds.ImageDir != "" {
		c.ImageDir = ds.ImageDir
	}
	if ds.Reference != "" {
		c.ReferencePath = ds.Reference
	}
	if ds.OutputDir != "" {
		c.OutputDir = ds.OutputDir
	}
	if ds.OutputName != "" {
		c.OutputName = ds.OutputName
	}
	if ds.IdentifierColumn != "" {
		c.IdentifierColumn = ds.IdentifierColumn
	}
	if ds.DiagnosisColumn != "" {
		c.DiagnosisColumn = ds.DiagnosisColumn
	}
	if ds.PendingValue != "" {
		c.PendingValue = ds.PendingValue
	}
	if ds.Selection != "" {
		c.Selection = ds.Selection
	}
	if ds.Delimiter != "" {
		c.Delimiter = ds.Delimiter
	}
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.ImageDir == "" {
		return ErrNoImageDir
	}

	if c.ReferencePath == "" {
		return ErrNoReference
	}

	// The output name is a file name, not a path; directories belong in OutputDir.
	if c.OutputName == "" || c.OutputName == "." || c.OutputName == ".." ||
		strings.ContainsAny(c.OutputName, `/\`) {
		return ErrInvalidOutputName
	}

	if strings.TrimSpace(c.IdentifierColumn) == "" || strings.TrimSpace(c.DiagnosisColumn) == "" {
		return ErrEmptyColumn
	}

	if c.IdentifierColumn == c.DiagnosisColumn {
		return ErrSameColumn
	}

	if c.PendingValue == "" {
		return ErrEmptyPendingValue
	}

	if _, err := scanner.ParseSelection(c.Selection); err != nil {
		return ErrInvalidSelection
	}

	if r := c.DelimiterRune(); r == utf8.RuneError || r == '\n' || r == '\r' || r == '"' {
		return ErrInvalidDelimiter
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
