// Package report writes build summaries.
//
// This package contains writers for different output formats:
//   - SimpleWriter: aligned text for terminal display
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with a label distribution chart
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter.
package report
