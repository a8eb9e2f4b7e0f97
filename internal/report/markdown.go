package report

import (
	"io"
	"strconv"

	"github.com/nao1215/dxmanifest/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs summaries in Markdown format, for attaching
// to dataset documentation or a pull request.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCounts(md, summary)
	w.writeLabels(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the inputs table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.Summary) {
	md.H1("Manifest Build")
	md.PlainText("")

	rows := make([][]string, 0, 6)
	if s.Dataset != "" {
		rows = append(rows, []string{"Dataset", s.Dataset})
	}
	rows = append(rows,
		[]string{"Images", "`" + s.ImageDir + "`"},
		[]string{"Reference", "`" + s.ReferencePath + "`"},
		[]string{"Manifest", "`" + s.OutputPath + "`"},
		[]string{"Started", s.StartedAt.Format(timeLayout)},
		[]string{"Status", statusText(s)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// statusText returns the status cell of the header table.
func statusText(s *model.Summary) string {
	if s.Failed() {
		return "❌ Failed - " + s.Error
	}
	return "✅ Complete"
}

// writeCounts writes the per-stage counts table.
func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, s *model.Summary) {
	md.H2("Counts")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Stage", "Count"},
		Rows: [][]string{
			{"Files scanned", strconv.Itoa(s.FilesScanned)},
			{"Files without identifier", strconv.Itoa(s.FilesUnidentified)},
			{"Files not in reference", strconv.Itoa(s.FilesUnmatched)},
			{"Reference rows", strconv.Itoa(s.ReferenceRows)},
			{"Matched", strconv.Itoa(s.Matched)},
			{"Pending", strconv.Itoa(s.Pending)},
			{"**Rows written**", "**" + strconv.Itoa(s.RowsWritten) + "**"},
		},
	})
	md.PlainText("")
}

// writeLabels writes the label distribution and an alert on suspicious output.
func (w *MarkdownWriter) writeLabels(md *markdown.Markdown, s *model.Summary) {
	md.H2("Labels")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Label", "Rows"},
		Rows: [][]string{
			{model.LabelPositive.String(), strconv.Itoa(s.Positive)},
			{model.LabelNegative.String(), strconv.Itoa(s.Negative)},
		},
	})
	md.PlainText("")

	if s.RowsWritten > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Label Distribution"),
			piechart.WithShowData(true),
		)
		if s.Positive > 0 {
			chart.LabelAndIntValue(model.LabelPositive.String(), uint64(s.Positive))
		}
		if s.Negative > 0 {
			chart.LabelAndIntValue(model.LabelNegative.String(), uint64(s.Negative))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case s.Failed():
		md.Cautionf("The build failed and no manifest was written: %s", s.Error)
	case s.RowsWritten == 0:
		md.Warningf("The manifest is empty. %d file(s) scanned, %d reference row(s) loaded.",
			s.FilesScanned, s.ReferenceRows)
	case s.Positive == 0 || s.Negative == 0:
		md.Importantf("The manifest holds a single class (%d positive, %d negative).",
			s.Positive, s.Negative)
	default:
		md.Tip("The manifest holds both classes.")
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [dxmanifest](https://github.com/nao1215/dxmanifest)*")
}
