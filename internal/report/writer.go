package report

import (
	"fmt"
	"io"

	"github.com/linkja/linkja-hashing-sub000/internal/database"
	"github.com/linkja/linkja-hashing-sub000/internal/engine"
)

// Format names accepted by NewWriter.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the summary of one run.
	// Returns the number of bytes written and any error encountered.
	Write(s *engine.Summary) (int, error)

	// WriteHistory outputs a list of past runs, newest first.
	WriteHistory(runs []database.RunMetadata) (int, error)
}

// NewWriter returns the Writer for format. An empty format selects text.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch format {
	case "", FormatText:
		return NewSimpleWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// MultiWriter writes to multiple Writers in order and stops on the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
func (m *MultiWriter) Write(s *engine.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(s)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory outputs the run list to all configured Writers.
func (m *MultiWriter) WriteHistory(runs []database.RunMetadata) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(runs)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// status returns a short outcome line for s.
func status(s *engine.Summary) string {
	switch {
	case s.State == engine.StateRolledBack.String():
		if s.Error != "" {
			return "ROLLED BACK - " + s.Error
		}
		return "ROLLED BACK"
	case s.State == engine.StateSucceeded.String() && !s.Trusted:
		return "COMPLETE (batch counts did not reconcile)"
	case s.State == engine.StateSucceeded.String():
		return "COMPLETE"
	default:
		return s.State
	}
}

const timeFormat = "2006-01-02 15:04:05 MST"
