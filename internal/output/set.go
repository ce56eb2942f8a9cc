package output

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
)

// timestampLayout is embedded in every output file name.
const timestampLayout = "20060102150405"

// File name prefixes.
const (
	hashPrefix      = "hashes"
	crosswalkPrefix = "crosswalk"
	invalidPrefix   = "invaliddata"
	debugPrefix     = "debug"
)

// Set holds the sinks of one run and routes records to them.
type Set struct {
	files     *FileSet
	hash      Sink
	crosswalk Sink
	invalid   Sink
	debug     Sink
	closed    bool
}

// SetOption configures a Set.
type SetOption func(*setOptions)

type setOptions struct {
	debug bool
	now   time.Time
}

// WithDebug also writes the debug file.
func WithDebug(enabled bool) SetOption {
	return func(o *setOptions) {
		o.debug = enabled
	}
}

// WithTimestamp fixes the timestamp used in file names.
func WithTimestamp(t time.Time) SetOption {
	return func(o *setOptions) {
		o.now = t
	}
}

// FileName returns the name of an output file, for example
// "hashes_3_proj_20240102150405.csv".
func FileName(prefix, siteID, projectID string, t time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s.csv", prefix, siteID, projectID, t.Format(timestampLayout))
}

// NewSet creates the output files for secret's site and project in dir.
// If any file cannot be created, the ones already created are removed.
func NewSet(dir string, secret *model.SecretMaterial, files *FileSet, opts ...SetOption) (*Set, error) {
	o := &setOptions{now: time.Now()}
	for _, opt := range opts {
		opt(o)
	}

	s := &Set{files: files}
	name := func(prefix string) string {
		return filepath.Join(dir, FileName(prefix, secret.SiteID, secret.ProjectID, o.now))
	}

	hash, err := NewHashSink(files, name(hashPrefix), secret.SiteID, secret.ProjectID)
	if err != nil {
		return nil, s.abort(err)
	}
	s.hash = hash

	crosswalk, err := NewCrosswalkSink(files, name(crosswalkPrefix))
	if err != nil {
		return nil, s.abort(err)
	}
	s.crosswalk = crosswalk

	invalid, err := NewInvalidSink(files, name(invalidPrefix))
	if err != nil {
		return nil, s.abort(err)
	}
	s.invalid = invalid

	if o.debug {
		debug, err := NewDebugSink(files, name(debugPrefix))
		if err != nil {
			return nil, s.abort(err)
		}
		s.debug = debug
	}
	return s, nil
}

func (s *Set) abort(cause error) error {
	return errors.Join(cause, s.Abort())
}

// HashPath returns the path of the hash file.
func (s *Set) HashPath() string {
	return s.hash.Path()
}

// Paths returns every output path of the run.
func (s *Set) Paths() []string {
	return s.files.Paths()
}

// Write routes rec and its derived records. A valid top-level record goes
// to the crosswalk and hash files, a valid derived record to the hash
// file only, and an invalid record to the invalid-data file. Valid records
// are also copied to the debug file when enabled.
func (s *Set) Write(rec *model.Record) error {
	var err error
	rec.Walk(func(r *model.Record) {
		if err != nil {
			return
		}
		err = s.route(r)
	})
	return err
}

func (s *Set) route(r *model.Record) error {
	if !r.ShouldProcess() {
		return s.invalid.Write(r)
	}
	if !r.IsDerived() {
		if err := s.crosswalk.Write(r); err != nil {
			return err
		}
	}
	if err := s.hash.Write(r); err != nil {
		return err
	}
	if s.debug != nil {
		return s.debug.Write(r)
	}
	return nil
}

// Close flushes and closes every sink. It is safe to call more than once.
func (s *Set) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, sink := range []Sink{s.hash, s.crosswalk, s.invalid, s.debug} {
		if sink != nil {
			errs = append(errs, sink.Close())
		}
	}
	return errors.Join(errs...)
}

// Abort closes the sinks and deletes every file in the FileSet.
func (s *Set) Abort() error {
	closeErr := s.Close()
	return errors.Join(closeErr, s.files.RemoveAll())
}
