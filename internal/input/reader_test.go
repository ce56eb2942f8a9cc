package input

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
	"github.com/linkja/linkja-hashing-sub000/internal/rules"
)

func testSynonyms(t *testing.T) *rules.Synonyms {
	t.Helper()

	r, err := rules.Default()
	if err != nil {
		t.Fatal(err)
	}
	return r.Synonyms
}

func TestNewReader(t *testing.T) {
	t.Parallel()

	t.Run("maps synonyms and streams rows", func(t *testing.T) {
		t.Parallel()

		src := "\ufeffPID,First Name,LNAME,DOB,SSN,Notes\n" +
			"12345,John,Smith,1950-01-01,123-45-6780,hello\n" +
			"\n" +
			"67890,Jane,Doe,1/2/1960\n"

		r, err := NewReader(strings.NewReader(src), testSynonyms(t))
		if err != nil {
			t.Fatal(err)
		}

		want := []string{
			model.FieldPatientID, model.FieldFirstName, model.FieldLastName,
			model.FieldDateOfBirth, model.FieldSSN,
		}
		if got := r.Columns(); strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("Columns() = %v, want %v", got, want)
		}
		if got := r.Ignored(); len(got) != 1 || got[0] != "Notes" {
			t.Errorf("Ignored() = %v", got)
		}

		first, err := r.Next()
		if err != nil {
			t.Fatal(err)
		}
		if first.RowNumber != 2 || first.Value(model.FieldSSN) != "123-45-6780" {
			t.Errorf("unexpected first record: row %d, %v", first.RowNumber, first.Fields)
		}
		if _, ok := first.Get("Notes"); ok {
			t.Error("unmapped column must not be stored")
		}
		first.Set(model.FieldFirstName, "JOHN")
		if got := first.OriginalValue(model.FieldFirstName); got != "John" {
			t.Errorf("expected the input value to be kept, got %q", got)
		}

		second, err := r.Next()
		if err != nil {
			t.Fatal(err)
		}
		if second.RowNumber != 3 {
			t.Errorf("expected row 3, got %d", second.RowNumber)
		}
		if v, ok := second.Get(model.FieldSSN); !ok || v != "" {
			t.Errorf("short row should yield an empty SSN, got %q, %v", v, ok)
		}

		if _, err := r.Next(); !errors.Is(err, io.EOF) {
			t.Errorf("expected io.EOF, got %v", err)
		}
	})

	t.Run("custom delimiter", func(t *testing.T) {
		t.Parallel()

		src := "patient_id|first_name|last_name|date_of_birth\n1|A|B|1950-01-01\n"
		r, err := NewReader(strings.NewReader(src), testSynonyms(t), WithDelimiter('|'))
		if err != nil {
			t.Fatal(err)
		}
		rec, err := r.Next()
		if err != nil {
			t.Fatal(err)
		}
		if rec.Value(model.FieldLastName) != "B" {
			t.Errorf("unexpected last name %q", rec.Value(model.FieldLastName))
		}
	})

	t.Run("missing required columns", func(t *testing.T) {
		t.Parallel()

		_, err := NewReader(strings.NewReader("pid,fname,ssn\n"), testSynonyms(t))
		if !errors.Is(err, ErrMissingRequiredColumns) {
			t.Fatalf("expected ErrMissingRequiredColumns, got %v", err)
		}
		for _, f := range []string{model.FieldLastName, model.FieldDateOfBirth} {
			if !strings.Contains(err.Error(), f) {
				t.Errorf("expected %s in %q", f, err)
			}
		}
	})

	t.Run("duplicate columns", func(t *testing.T) {
		t.Parallel()

		_, err := NewReader(strings.NewReader("pid,mrn,fname,lname,dob\n"), testSynonyms(t))
		if !errors.Is(err, ErrDuplicateColumn) {
			t.Errorf("expected ErrDuplicateColumn, got %v", err)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		_, err := NewReader(strings.NewReader(""), testSynonyms(t))
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput, got %v", err)
		}
	})
}

func TestOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "in.csv")
	if err := os.WriteFile(path, []byte("pid,fname,lname,dob\n1,A,B,1950-01-01\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path, testSynonyms(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Next(); err != nil {
		t.Error(err)
	}
	if err := r.Close(); err != nil {
		t.Error(err)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.csv"), testSynonyms(t)); err == nil {
		t.Error("expected error for missing file")
	}
}
