package config

import (
	"fmt"
	"path/filepath"
	"sort"
)

// DatasetConfig holds the settings of one dataset in the configuration file.
// Empty fields fall back to the file's defaults and then to built-in defaults.
type DatasetConfig struct {
	// ImageDir is the directory holding the scan files.
	ImageDir string `yaml:"imageDir,omitempty"`

	// Reference is the phenotype reference table.
	Reference string `yaml:"reference,omitempty"`

	// OutputDir is the manifest directory.
	OutputDir string `yaml:"outputDir,omitempty"`

	// OutputName is the manifest file name.
	OutputName string `yaml:"outputName,omitempty"`

	// IdentifierColumn is the header of the subject identifier column.
	IdentifierColumn string `yaml:"identifierColumn,omitempty"`

	// DiagnosisColumn is the header of the diagnosis column.
	DiagnosisColumn string `yaml:"diagnosisColumn,omitempty"`

	// PendingValue is the unresolved-diagnosis sentinel.
	PendingValue string `yaml:"pendingValue,omitempty"`

	// Selection is the digit-run rule ("longest" or "last").
	Selection string `yaml:"selection,omitempty"`

	// Delimiter is the reference table field separator.
	Delimiter string `yaml:"delimiter,omitempty"`
}

// File represents the structure of the .dxmanifest configuration file.
type File struct {
	// Datasets maps dataset names to their configurations.
	Datasets map[string]DatasetConfig `yaml:"datasets,omitempty"`

	// Defaults applies to every dataset unless overridden.
	Defaults DatasetConfig `yaml:"defaults,omitempty"`
}

// GetDataset returns the configuration of the named dataset merged over
// the defaults. The empty name returns the defaults alone.
func (cf *File) GetDataset(name string) (DatasetConfig, error) {
	result := cf.Defaults
	if name == "" {
		return result, nil
	}

	ds, ok := cf.Datasets[name]
	if !ok {
		return DatasetConfig{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownDataset, name, cf.DatasetNames())
	}

	return mergeDataset(result, ds), nil
}

// mergeDataset returns base with the non-empty fields of override applied.
func mergeDataset(base, override DatasetConfig) DatasetConfig {
	pick := func(b, o string) string {
		if o != "" {
			return o
		}
		return b
	}

	return DatasetConfig{
		ImageDir:         pick(base.ImageDir, override.ImageDir),
		Reference:        pick(base.Reference, override.Reference),
		OutputDir:        pick(base.OutputDir, override.OutputDir),
		OutputName:       pick(base.OutputName, override.OutputName),
		IdentifierColumn: pick(base.IdentifierColumn, override.IdentifierColumn),
		DiagnosisColumn:  pick(base.DiagnosisColumn, override.DiagnosisColumn),
		PendingValue:     pick(base.PendingValue, override.PendingValue),
		Selection:        pick(base.Selection, override.Selection),
		Delimiter:        pick(base.Delimiter, override.Delimiter),
	}
}

// DatasetNames returns the dataset names in sorted order.
func (cf *File) DatasetNames() []string {
	names := make([]string, 0, len(cf.Datasets))
	for name := range cf.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolvePaths makes relative paths absolute with respect to base,
// the directory of the configuration file.
func (ds *DatasetConfig) resolvePaths(base string) {
	for _, p := range []*string{&ds.ImageDir, &ds.Reference, &ds.OutputDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}
