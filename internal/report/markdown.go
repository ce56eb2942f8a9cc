package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/linkja/linkja-hashing-sub000/internal/database"
	"github.com/linkja/linkja-hashing-sub000/internal/engine"
)

// MarkdownWriter outputs summaries in Markdown, suitable for attaching to
// a data-release ticket or audit log.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(s *engine.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, s)
	w.writeCounts(md, s)
	w.writeFiles(md, s)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *engine.Summary) {
	md.H1("Linkja Hashing Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + s.RunID + "`"},
			{"Site", s.SiteID},
			{"Project", s.ProjectID},
			{"Started", s.StartedAt.Format(timeFormat)},
			{"Duration", s.Duration().Round(1e6).String()},
			{"Status", status(s)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, s)
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s *engine.Summary) {
	switch {
	case s.State == engine.StateRolledBack.String():
		md.Cautionf("The run was rolled back and no output files were kept: %s", s.Error)
	case !s.Trusted:
		md.Warning("Batch counts did not reconcile. Do not release this output.")
	case s.InvalidRecords > 0:
		md.Importantf("%d record(s) were rejected. Review the invalid data file before release.", s.InvalidRecords)
	default:
		md.Tip("All records were hashed.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, s *engine.Summary) {
	md.H2("Records")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Input", strconv.Itoa(s.InputRecords)},
			{"Hashed", strconv.Itoa(s.HashedRecords)},
			{"Invalid", strconv.Itoa(s.InvalidRecords)},
			{"Derived", strconv.Itoa(s.DerivedRecords)},
			{"Exceptions", strconv.Itoa(s.ExceptionRecords)},
			{"Batches (submitted / completed / inline)",
				strconv.Itoa(s.SubmittedBatches) + " / " +
					strconv.Itoa(s.CompletedBatches) + " / " +
					strconv.Itoa(s.InlineBatches)},
		},
	})
	md.PlainText("")

	if s.HashedRecords+s.InvalidRecords > 0 {
		w.writePieChart(md, s)
	}
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *engine.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Record Outcomes"),
		piechart.WithShowData(true),
	)
	if s.HashedRecords > 0 {
		chart.LabelAndIntValue("Hashed", uint64(s.HashedRecords))
	}
	if s.InvalidRecords > 0 {
		chart.LabelAndIntValue("Invalid", uint64(s.InvalidRecords))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFiles(md *markdown.Markdown, s *engine.Summary) {
	md.H2("Output Files")
	md.PlainText("")
	if len(s.Files) == 0 {
		md.PlainText("No output files.")
		md.PlainText("")
		return
	}
	files := make([]string, len(s.Files))
	for i, f := range s.Files {
		files[i] = "`" + f + "`"
	}
	md.BulletList(files...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Generated by linkja*")
}

// WriteHistory outputs the run list as a Markdown table.
func (w *MarkdownWriter) WriteHistory(runs []database.RunMetadata) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Linkja Run History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			"`" + r.RunID + "`",
			r.State,
			r.SiteID,
			r.ProjectID,
			r.StartedAt.Format(timeFormat),
			strconv.Itoa(r.InputRecords),
			strconv.Itoa(r.HashedRecords),
			strconv.Itoa(r.InvalidRecords),
			strconv.FormatBool(r.Trusted),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Run ID", "State", "Site", "Project", "Started", "Input", "Hashed", "Invalid", "Trusted"},
		Rows:   rows,
	})
	return len(md.String()), md.Build()
}
