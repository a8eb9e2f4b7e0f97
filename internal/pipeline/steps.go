package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/dxmanifest/internal/config"
	"github.com/nao1215/dxmanifest/internal/manifest"
	"github.com/nao1215/dxmanifest/internal/model"
	"github.com/nao1215/dxmanifest/internal/reference"
	"github.com/nao1215/dxmanifest/internal/scanner"
)

// Step names, in the order DefaultPipeline runs them.
const (
	StepScan      = "scan"
	StepReference = "reference"
	StepJoin      = "join"
	StepWrite     = "write"
)

// ScanStep lists the image directory and extracts an identifier from
// each filename.
type ScanStep struct {
	scanner *scanner.Scanner
	logger  *slog.Logger
}

// NewScanStep creates a scan step backed by s.
func NewScanStep(s *scanner.Scanner, logger *slog.Logger) *ScanStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanStep{scanner: s, logger: logger}
}

// Name returns the step name.
func (s *ScanStep) Name() string {
	return StepScan
}

// Do executes the scan step.
func (s *ScanStep) Do(_ context.Context, run *model.Run) error {
	files, err := s.scanner.Scan(run.ImageDir)
	if err != nil {
		return err
	}
	run.Files = files

	s.logger.Info("image directory scanned",
		"dir", run.ImageDir,
		"entries", len(files),
		"unidentified", len(run.UnidentifiedFiles()),
	)
	return nil
}

// ReferenceStep loads the phenotype table.
type ReferenceStep struct {
	loader *reference.Loader
	logger *slog.Logger
}

// NewReferenceStep creates a reference step backed by l.
func NewReferenceStep(l *reference.Loader, logger *slog.Logger) *ReferenceStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReferenceStep{loader: l, logger: logger}
}

// Name returns the step name.
func (s *ReferenceStep) Name() string {
	return StepReference
}

// Do executes the reference step.
func (s *ReferenceStep) Do(_ context.Context, run *model.Run) error {
	refs, err := s.loader.Load(run.ReferencePath)
	if err != nil {
		return err
	}
	run.References = refs

	s.logger.Info("reference table loaded",
		"path", run.ReferencePath,
		"rows", len(refs),
	)
	return nil
}

// JoinStep joins the loaded reference rows with the scanned files.
type JoinStep struct {
	joiner *manifest.Joiner
	logger *slog.Logger
}

// NewJoinStep creates a join step backed by j.
func NewJoinStep(j *manifest.Joiner, logger *slog.Logger) *JoinStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &JoinStep{joiner: j, logger: logger}
}

// Name returns the step name.
func (s *JoinStep) Name() string {
	return StepJoin
}

// Do executes the join step.
func (s *JoinStep) Do(_ context.Context, run *model.Run) error {
	res, err := s.joiner.Join(run.References, run.Files)
	if err != nil {
		return err
	}
	run.Rows = res.Rows
	run.Matched = res.Matched
	run.Pending = res.Pending

	s.logger.Info("manifest joined",
		"matched", res.Matched,
		"pending", res.Pending,
		"rows", len(res.Rows),
	)
	return nil
}

// WriteStep writes the manifest to run.OutputPath.
type WriteStep struct {
	logger *slog.Logger
}

// NewWriteStep creates a write step.
func NewWriteStep(logger *slog.Logger) *WriteStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &WriteStep{logger: logger}
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return StepWrite
}

// Do executes the write step.
func (s *WriteStep) Do(_ context.Context, run *model.Run) error {
	digest, err := manifest.WriteFile(run.OutputPath, run.Rows)
	if err != nil {
		return err
	}
	run.Digest = digest
	run.FinishedAt = time.Now()

	s.logger.Info("manifest written",
		"path", run.OutputPath,
		"rows", len(run.Rows),
		"digest", digest,
	)
	return nil
}

// DefaultPipeline creates the standard build pipeline for cfg:
// scan, reference, join and write, in that order.
// cfg must have passed Validate.
func DefaultPipeline(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	p := New(opts...)

	sel, err := scanner.ParseSelection(cfg.Selection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidSelection, err)
	}

	p.AddStep(NewScanStep(scanner.New(
		scanner.WithSelection(sel),
		scanner.WithLogger(p.logger),
	), p.logger))
	p.AddStep(NewReferenceStep(reference.NewLoader(
		reference.WithIdentifierColumn(cfg.IdentifierColumn),
		reference.WithDiagnosisColumn(cfg.DiagnosisColumn),
		reference.WithDelimiter(cfg.DelimiterRune()),
		reference.WithLogger(p.logger),
	), p.logger))
	p.AddStep(NewJoinStep(manifest.NewJoiner(
		manifest.WithPendingValue(cfg.PendingValue),
		manifest.WithJoinLogger(p.logger),
	), p.logger))
	p.AddStep(NewWriteStep(p.logger))

	return p, nil
}

// NewRun creates a Run for cfg.
func NewRun(cfg *config.Config) *model.Run {
	run := model.NewRun(cfg.ImageDir, cfg.ReferencePath, cfg.OutputPath())
	run.Dataset = cfg.Dataset
	return run
}
