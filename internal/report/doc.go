// Package report renders run summaries and run history.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain text for terminal display
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown for audit trails and sharing
//
// Writers implement the Writer interface, so the CLI can pick one by name
// with NewWriter and compose several with MultiWriter. Summaries carry
// counts, timings and file names only, so every format is safe to keep
// next to the hashed output.
package report
