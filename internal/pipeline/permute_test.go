package pipeline

import (
	"context"
	"testing"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
)

func TestPermuteStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		lastName    string
		wantDerived []string
		wantParent  string
	}{
		{name: "hyphenated", lastName: "SMITH-OLSON", wantDerived: []string{"SMITH", "OLSON"}, wantParent: "SMITHOLSON"},
		{name: "spaced", lastName: "SMITH OLSON", wantDerived: []string{"SMITH", "OLSON"}, wantParent: "SMITHOLSON"},
		{name: "single token", lastName: "SMITH", wantDerived: nil, wantParent: "SMITH"},
		{name: "short tokens", lastName: "A-B", wantDerived: nil, wantParent: "AB"},
		{name: "one short token", lastName: "X-JONES", wantDerived: []string{"JONES"}, wantParent: "XJONES"},
		{name: "duplicate tokens", lastName: "SMITH SMITH", wantDerived: []string{"SMITH"}, wantParent: "SMITHSMITH"},
		{name: "interior tokens ignored", lastName: "DE LA CRUZ", wantDerived: []string{"DE", "CRUZ"}, wantParent: "DELACRUZ"},
		{name: "tokens cleaned", lastName: "o'neil-st. john", wantDerived: []string{"ONEIL", "JOHN"}, wantParent: "ONEILSTJOHN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := model.NewRecord(2)
			rec.Set(model.FieldFirstName, "Jo-Ann")
			rec.Set(model.FieldLastName, tt.lastName)

			if err := NewPermuteStep().Do(context.Background(), rec); err != nil {
				t.Fatal(err)
			}

			if len(rec.DerivedRecords) != len(tt.wantDerived) {
				t.Fatalf("expected %d derived records, got %d", len(tt.wantDerived), len(rec.DerivedRecords))
			}
			for i, d := range rec.DerivedRecords {
				if got := d.Value(model.FieldLastName); got != tt.wantDerived[i] {
					t.Errorf("derived %d: got %q, want %q", i, got, tt.wantDerived[i])
				}
				if !d.IsDerived() {
					t.Errorf("derived %d not marked derived", i)
				}
				if d.Value(model.FieldFirstName) != "JOANN" {
					t.Errorf("derived %d first name %q", i, d.Value(model.FieldFirstName))
				}
			}
			if got := rec.Value(model.FieldLastName); got != tt.wantParent {
				t.Errorf("parent last name: got %q, want %q", got, tt.wantParent)
			}
			if rec.Value(model.FieldFirstName) != "JOANN" {
				t.Errorf("expected cleaned first name, got %q", rec.Value(model.FieldFirstName))
			}
		})
	}

	t.Run("runs only once per record", func(t *testing.T) {
		t.Parallel()

		rec := model.NewRecord(2)
		rec.Set(model.FieldFirstName, "JOHN")
		rec.Set(model.FieldLastName, "SMITH OLSON")

		s := NewPermuteStep()
		_ = s.Do(context.Background(), rec)
		rec.Set(model.FieldLastName, "SMITH OLSON")
		_ = s.Do(context.Background(), rec)

		if len(rec.DerivedRecords) != 2 {
			t.Errorf("expected 2 derived records, got %d", len(rec.DerivedRecords))
		}
	})

	t.Run("derived records are not permuted", func(t *testing.T) {
		t.Parallel()

		parent := model.NewRecord(2)
		d := parent.Derive()
		d.Set(model.FieldLastName, "SMITH OLSON")

		_ = NewPermuteStep().Do(context.Background(), d)

		if len(d.DerivedRecords) != 0 {
			t.Error("derived record must not spawn children")
		}
		if d.Value(model.FieldLastName) != "SMITH OLSON" {
			t.Error("derived record must be left as-is")
		}
	})

	t.Run("invalid record is untouched", func(t *testing.T) {
		t.Parallel()

		rec := model.NewRecord(2)
		rec.Set(model.FieldLastName, "SMITH-OLSON")
		rec.Invalidate("bad")

		_ = NewPermuteStep().Do(context.Background(), rec)

		if len(rec.DerivedRecords) != 0 || rec.Value(model.FieldLastName) != "SMITH-OLSON" {
			t.Error("invalid record must not change")
		}
	})
}
