package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/dxmanifest/internal/model"
)

// ruleWidth is the width of the horizontal rules in text output.
const ruleWidth = 60

// SimpleWriter outputs a human-readable text summary for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds timing and the manifest digest.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCounts(&sb, summary)
	w.writeFooter(&sb, summary)

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the inputs and the run status.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *model.Summary) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("DXMANIFEST BUILD\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	if s.Dataset != "" {
		fmt.Fprintf(sb, "Dataset:    %s\n", s.Dataset)
	}
	fmt.Fprintf(sb, "Images:     %s\n", s.ImageDir)
	fmt.Fprintf(sb, "Reference:  %s\n", s.ReferencePath)
	fmt.Fprintf(sb, "Manifest:   %s\n", s.OutputPath)

	if s.Failed() {
		fmt.Fprintf(sb, "Status:     FAILED - %s\n", s.Error)
	} else {
		sb.WriteString("Status:     Complete\n")
	}
	sb.WriteString("\n")
}

// writeCounts writes the per-stage counts.
func (w *SimpleWriter) writeCounts(sb *strings.Builder, s *model.Summary) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")

	fmt.Fprintf(sb, "  Files scanned:      %d\n", s.FilesScanned)
	fmt.Fprintf(sb, "    unidentified:     %d\n", s.FilesUnidentified)
	fmt.Fprintf(sb, "    not in reference: %d\n", s.FilesUnmatched)
	fmt.Fprintf(sb, "  Reference rows:     %d\n", s.ReferenceRows)
	fmt.Fprintf(sb, "  Matched:            %d\n", s.Matched)
	fmt.Fprintf(sb, "    pending:          %d\n", s.Pending)
	fmt.Fprintf(sb, "  Rows written:       %d\n", s.RowsWritten)
	fmt.Fprintf(sb, "    positive:         %d\n", s.Positive)
	fmt.Fprintf(sb, "    negative:         %d\n", s.Negative)
	sb.WriteString("\n")
}

// writeFooter writes timing and digest in verbose mode, and the closing rule.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, s *model.Summary) {
	if w.verbose {
		fmt.Fprintf(sb, "Started:    %s\n", s.StartedAt.Format(timeLayout))
		fmt.Fprintf(sb, "Duration:   %s\n", s.Duration())
		if s.Digest != "" {
			fmt.Fprintf(sb, "Digest:     %s\n", s.Digest)
		}
		if s.ID != 0 {
			fmt.Fprintf(sb, "History ID: %d\n", s.ID)
		}
	}
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}
