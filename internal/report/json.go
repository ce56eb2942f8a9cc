package report

import (
	"encoding/json"
	"io"

	"github.com/linkja/linkja-hashing-sub000/internal/database"
	"github.com/linkja/linkja-hashing-sub000/internal/engine"
)

// JSONWriter outputs summaries in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONSummary wraps a run summary with fields derived from it.
type JSONSummary struct {
	*engine.Summary

	DurationSeconds float64 `json:"duration_seconds"`
	Status          string  `json:"status"`
}

// Write outputs the summary in JSON format.
func (w *JSONWriter) Write(s *engine.Summary) (int, error) {
	return w.writeJSON(JSONSummary{
		Summary:         s,
		DurationSeconds: s.Duration().Seconds(),
		Status:          status(s),
	})
}

type jsonRun struct {
	RunID          string `json:"run_id"`
	State          string `json:"state"`
	SiteID         string `json:"site_id,omitempty"`
	ProjectID      string `json:"project_id,omitempty"`
	StartedAt      string `json:"started_at"`
	FinishedAt     string `json:"finished_at,omitempty"`
	InputRecords   int    `json:"input_records"`
	HashedRecords  int    `json:"hashed_records"`
	InvalidRecords int    `json:"invalid_records"`
	Trusted        bool   `json:"trusted"`
}

// WriteHistory outputs the run list as a JSON array.
func (w *JSONWriter) WriteHistory(runs []database.RunMetadata) (int, error) {
	out := make([]jsonRun, 0, len(runs))
	for _, r := range runs {
		jr := jsonRun{
			RunID:          r.RunID,
			State:          r.State,
			SiteID:         r.SiteID,
			ProjectID:      r.ProjectID,
			StartedAt:      r.StartedAt.Format(timeRFC3339),
			InputRecords:   r.InputRecords,
			HashedRecords:  r.HashedRecords,
			InvalidRecords: r.InvalidRecords,
			Trusted:        r.Trusted,
		}
		if !r.FinishedAt.IsZero() {
			jr.FinishedAt = r.FinishedAt.Format(timeRFC3339)
		}
		out = append(out, jr)
	}
	return w.writeJSON(out)
}

const timeRFC3339 = "2006-01-02T15:04:05Z07:00"

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
