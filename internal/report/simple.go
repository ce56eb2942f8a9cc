package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/linkja/linkja-hashing-sub000/internal/database"
	"github.com/linkja/linkja-hashing-sub000/internal/engine"
)

// SimpleWriter outputs human-readable text for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds batch counters to the summary.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables batch-level detail in the output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(s *engine.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, s)
	w.writeCounts(&sb, s)
	if w.verbose {
		w.writeBatches(&sb, s)
	}
	w.writeFiles(&sb, s)
	rule(&sb, "=")

	return w.output.Write([]byte(sb.String()))
}

func rule(sb *strings.Builder, ch string) {
	sb.WriteString(strings.Repeat(ch, 70))
	sb.WriteString("\n")
}

func section(sb *strings.Builder, title string) {
	rule(sb, "-")
	sb.WriteString(title + "\n")
	rule(sb, "-")
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *engine.Summary) {
	sb.WriteString("\n")
	rule(sb, "=")
	sb.WriteString("                        LINKJA HASHING SUMMARY\n")
	rule(sb, "=")
	sb.WriteString("\n")

	fmt.Fprintf(sb, "Run ID:     %s\n", s.RunID)
	if s.SiteID != "" || s.ProjectID != "" {
		fmt.Fprintf(sb, "Site:       %s\n", s.SiteID)
		fmt.Fprintf(sb, "Project:    %s\n", s.ProjectID)
	}
	fmt.Fprintf(sb, "Started:    %s\n", s.StartedAt.Format(timeFormat))
	fmt.Fprintf(sb, "Duration:   %s\n", s.Duration().Round(1e6))
	fmt.Fprintf(sb, "Status:     %s\n", status(s))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCounts(sb *strings.Builder, s *engine.Summary) {
	section(sb, "RECORDS")

	fmt.Fprintf(sb, "  INPUT:      %d\n", s.InputRecords)
	fmt.Fprintf(sb, "  HASHED:     %d\n", s.HashedRecords)
	fmt.Fprintf(sb, "  INVALID:    %d\n", s.InvalidRecords)
	fmt.Fprintf(sb, "  DERIVED:    %d\n", s.DerivedRecords)
	fmt.Fprintf(sb, "  EXCEPTIONS: %d\n", s.ExceptionRecords)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeBatches(sb *strings.Builder, s *engine.Summary) {
	section(sb, "BATCHES")

	fmt.Fprintf(sb, "  SUBMITTED:  %d\n", s.SubmittedBatches)
	fmt.Fprintf(sb, "  COMPLETED:  %d\n", s.CompletedBatches)
	fmt.Fprintf(sb, "  INLINE:     %d\n", s.InlineBatches)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFiles(sb *strings.Builder, s *engine.Summary) {
	if len(s.Files) == 0 {
		return
	}
	section(sb, "OUTPUT FILES")
	for _, f := range s.Files {
		fmt.Fprintf(sb, "  [+] %s\n", f)
	}
	sb.WriteString("\n")
}

// WriteHistory outputs the run list as an aligned table.
func (w *SimpleWriter) WriteHistory(runs []database.RunMetadata) (int, error) {
	var sb strings.Builder

	if len(runs) == 0 {
		sb.WriteString("No runs recorded.\n")
		return w.output.Write([]byte(sb.String()))
	}

	fmt.Fprintf(&sb, "%-36s  %-12s  %-10s  %-10s  %-19s  %8s  %8s  %8s\n",
		"RUN ID", "STATE", "SITE", "PROJECT", "STARTED", "INPUT", "HASHED", "INVALID")
	for _, r := range runs {
		state := r.State
		if r.State == engine.StateSucceeded.String() && !r.Trusted {
			state += "*"
		}
		fmt.Fprintf(&sb, "%-36s  %-12s  %-10s  %-10s  %-19s  %8d  %8d  %8d\n",
			r.RunID, state, r.SiteID, r.ProjectID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.InputRecords, r.HashedRecords, r.InvalidRecords)
	}
	return w.output.Write([]byte(sb.String()))
}
