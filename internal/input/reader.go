package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
	"github.com/linkja/linkja-hashing-sub000/internal/rules"
)

// DefaultDelimiter separates columns when no other delimiter is configured.
const DefaultDelimiter = ','

// Reader streams records from a delimited file. It is not safe for
// concurrent use.
type Reader struct {
	csv     *csv.Reader
	closer  io.Closer
	columns []string
	ignored []string
	row     int
}

// Option configures a Reader.
type Option func(*csv.Reader)

// WithDelimiter sets the column delimiter.
func WithDelimiter(d rune) Option {
	return func(r *csv.Reader) {
		r.Comma = d
	}
}

// Open opens the file at path and reads its header row.
func Open(path string, synonyms *rules.Synonyms, opts ...Option) (*Reader, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	r, err := NewReader(f, synonyms, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader reads the header row from src and prepares to stream records.
func NewReader(src io.Reader, synonyms *rules.Synonyms, opts ...Option) (*Reader, error) {
	c := csv.NewReader(src)
	c.Comma = DefaultDelimiter
	c.FieldsPerRecord = -1
	c.LazyQuotes = true
	for _, opt := range opts {
		opt(c)
	}

	header, err := c.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	r := &Reader{
		csv:     c,
		columns: make([]string, len(header)),
		row:     1,
	}
	if err := r.mapHeader(header, synonyms); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) mapHeader(header []string, synonyms *rules.Synonyms) error {
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		field, ok := synonyms.Canonical(h)
		if !ok {
			r.ignored = append(r.ignored, strings.TrimSpace(h))
			continue
		}
		if seen[field] {
			return fmt.Errorf("%w: %s", ErrDuplicateColumn, field)
		}
		seen[field] = true
		r.columns[i] = field
	}

	var missing []string
	for _, f := range model.RequiredFields {
		if !seen[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequiredColumns, strings.Join(missing, ", "))
	}
	return nil
}

// Columns returns the canonical fields present in the input, in column
// order.
func (r *Reader) Columns() []string {
	out := make([]string, 0, len(r.columns))
	for _, c := range r.columns {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Ignored returns the header cells that matched no known field.
func (r *Reader) Ignored() []string {
	return r.ignored
}

// Next returns the next record, or io.EOF when the input is exhausted.
// Row numbers are 1-based and count the header, so the first record is
// row 2. Blank lines are skipped by the CSV parser and are not counted.
func (r *Reader) Next() (*model.Record, error) {
	values, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read row %d: %w", r.row+1, err)
	}
	r.row++

	rec := model.NewRecord(r.row)
	for i, field := range r.columns {
		if field == "" {
			continue
		}
		if i < len(values) {
			rec.Set(field, values[i])
		} else {
			rec.Set(field, "")
		}
	}
	rec.Freeze()
	return rec, nil
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
