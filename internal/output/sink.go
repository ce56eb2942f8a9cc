package output

import (
	"encoding/base64"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
)

// Column names that are not canonical input fields.
const (
	ColumnSiteID    = "siteid"
	ColumnProjectID = "projectid"
	ColumnException = "exception"
	ColumnRow       = "row"
	ColumnDerived   = "derived"
	ColumnReason    = "reason"
)

// Sink receives records for one output file.
type Sink interface {
	// Write appends rec to the output.
	Write(rec *model.Record) error

	// Path returns the file path.
	Path() string

	// Close flushes and closes the file.
	Close() error
}

// csvFile is the shared part of every sink.
type csvFile struct {
	path string
	file *os.File
	w    *csv.Writer
}

func newCSVFile(files *FileSet, path string, header []string) (*csvFile, error) {
	f, err := files.Create(path)
	if err != nil {
		return nil, err
	}
	c := &csvFile{path: path, file: f, w: csv.NewWriter(f)}
	if err := c.w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	return c, nil
}

func (c *csvFile) Path() string {
	return c.path
}

func (c *csvFile) writeRow(row []string) error {
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("failed to write to %s: %w", c.path, err)
	}
	return nil
}

func (c *csvFile) Close() error {
	c.w.Flush()
	return errors.Join(c.w.Error(), c.file.Close())
}

// hashValue returns the hash named name as it is written to a file: the
// hex digest, or base64 of the sealed value when encrypted.
func hashValue(rec *model.Record, name string) string {
	if sealed, ok := rec.Encrypted[name]; ok {
		return base64.StdEncoding.EncodeToString(sealed)
	}
	return rec.Hashes[name]
}

// plainPatientIDHash returns PIDHASH before encryption.
func plainPatientIDHash(rec *model.Record) string {
	if v, ok := rec.Hashes[model.UnencryptedPatientIDKey]; ok {
		return v
	}
	return rec.Hashes[model.HashPatientID]
}

// HashSink writes the transmittable hash file: site and project IDs, the
// hash columns and the exception flag. SSN hashes are blank for records
// without an SSN.
type HashSink struct {
	*csvFile
	siteID    string
	projectID string
}

// NewHashSink creates the hash file at path.
func NewHashSink(files *FileSet, path, siteID, projectID string) (*HashSink, error) {
	header := append([]string{ColumnSiteID, ColumnProjectID}, model.HashFields...)
	header = append(header, ColumnException)

	c, err := newCSVFile(files, path, header)
	if err != nil {
		return nil, err
	}
	return &HashSink{csvFile: c, siteID: siteID, projectID: projectID}, nil
}

// Write appends one row.
func (s *HashSink) Write(rec *model.Record) error {
	row := make([]string, 0, len(model.HashFields)+3)
	row = append(row, s.siteID, s.projectID)
	for _, name := range model.HashFields {
		row = append(row, hashValue(rec, name))
	}
	row = append(row, strconv.FormatBool(rec.IsException))
	return s.writeRow(row)
}

// CrosswalkSink maps local patient IDs to PIDHASH.
type CrosswalkSink struct {
	*csvFile
}

// NewCrosswalkSink creates the crosswalk file at path.
func NewCrosswalkSink(files *FileSet, path string) (*CrosswalkSink, error) {
	c, err := newCSVFile(files, path, []string{model.FieldPatientID, model.HashPatientID})
	if err != nil {
		return nil, err
	}
	return &CrosswalkSink{csvFile: c}, nil
}

// Write appends one row.
func (s *CrosswalkSink) Write(rec *model.Record) error {
	return s.writeRow([]string{rec.Value(model.FieldPatientID), plainPatientIDHash(rec)})
}

// invalidColumns are the identifying fields copied to the invalid file.
var invalidColumns = []string{
	model.FieldPatientID,
	model.FieldFirstName,
	model.FieldLastName,
	model.FieldDateOfBirth,
}

// InvalidSink writes rejected records with their flattened reason.
type InvalidSink struct {
	*csvFile
}

// NewInvalidSink creates the invalid-data file at path.
func NewInvalidSink(files *FileSet, path string) (*InvalidSink, error) {
	header := append([]string{ColumnRow}, invalidColumns...)
	header = append(header, ColumnReason)

	c, err := newCSVFile(files, path, header)
	if err != nil {
		return nil, err
	}
	return &InvalidSink{csvFile: c}, nil
}

// Write appends one row.
func (s *InvalidSink) Write(rec *model.Record) error {
	row := []string{strconv.Itoa(rec.RowNumber)}
	for _, f := range invalidColumns {
		row = append(row, rec.OriginalValue(f))
	}
	row = append(row, rec.FlatReason())
	return s.writeRow(row)
}

// debugColumns are the unhashed values in the debug file.
var debugColumns = []string{
	model.FieldPatientID,
	model.FieldFirstName,
	model.FieldLastName,
	model.FieldDateOfBirth,
	model.FieldSSN,
}

// DebugSink writes unhashed values beside their hashes. It must stay on
// the site like the crosswalk.
type DebugSink struct {
	*csvFile
}

// NewDebugSink creates the debug file at path.
func NewDebugSink(files *FileSet, path string) (*DebugSink, error) {
	header := append([]string{ColumnRow, ColumnDerived}, debugColumns...)
	header = append(header, model.HashFields...)
	header = append(header, ColumnException)

	c, err := newCSVFile(files, path, header)
	if err != nil {
		return nil, err
	}
	return &DebugSink{csvFile: c}, nil
}

// Write appends one row.
func (s *DebugSink) Write(rec *model.Record) error {
	row := []string{strconv.Itoa(rec.RowNumber), strconv.FormatBool(rec.IsDerived())}
	for _, f := range debugColumns {
		row = append(row, rec.Value(f))
	}
	for _, name := range model.HashFields {
		row = append(row, hashValue(rec, name))
	}
	row = append(row, strconv.FormatBool(rec.IsException))
	return s.writeRow(row)
}
