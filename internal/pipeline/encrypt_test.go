package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
)

// fakeSealer reverses plaintext and counts calls.
type fakeSealer struct {
	sealed atomic.Int32
	wiped  atomic.Int32
	err    error
}

func (f *fakeSealer) Seal(plaintext []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sealed.Add(1)
	out := make([]byte, len(plaintext))
	for i, b := range plaintext {
		out[len(plaintext)-1-i] = b
	}
	return out, nil
}

func (f *fakeSealer) Wipe() {
	f.wiped.Add(1)
}

func hashedRecord(t *testing.T) *model.Record {
	t.Helper()

	rec := hashReadyRecord("6780")
	if err := testHashingStep(t).Do(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestEncryptionStep(t *testing.T) {
	t.Parallel()

	t.Run("moves every hash into the encrypted set", func(t *testing.T) {
		t.Parallel()

		rec := hashedRecord(t)
		pid := rec.Hashes[model.HashPatientID]
		sealer := &fakeSealer{}

		if err := NewEncryptionStep(sealer).Do(context.Background(), rec); err != nil {
			t.Fatal(err)
		}

		if got := len(rec.Encrypted); got != len(model.HashFields) {
			t.Errorf("expected %d encrypted values, got %d", len(model.HashFields), got)
		}
		if int(sealer.sealed.Load()) != len(model.HashFields) {
			t.Errorf("expected %d seal calls, got %d", len(model.HashFields), sealer.sealed.Load())
		}
		if rec.Hashes[model.UnencryptedPatientIDKey] != pid {
			t.Error("expected the plaintext patient ID hash to be kept")
		}
		if _, ok := rec.Hashes[model.HashPatientID]; ok {
			t.Error("plaintext PIDHASH must be removed from the hash set")
		}
		if !rec.HasCompleted(model.StepEncrypt) {
			t.Error("expected encrypt step to be complete")
		}
	})

	t.Run("requires hashing first", func(t *testing.T) {
		t.Parallel()

		rec := hashReadyRecord("6780")
		_ = NewEncryptionStep(&fakeSealer{}).Do(context.Background(), rec)

		if !strings.Contains(rec.InvalidReason, "requires the hash step") {
			t.Errorf("unexpected reason %q", rec.InvalidReason)
		}
	})

	t.Run("missing required hash invalidates", func(t *testing.T) {
		t.Parallel()

		rec := hashedRecord(t)
		delete(rec.Hashes, model.HashLnameFnameDOB)
		_ = NewEncryptionStep(&fakeSealer{}).Do(context.Background(), rec)

		if !strings.Contains(rec.InvalidReason, model.HashLnameFnameDOB) {
			t.Errorf("unexpected reason %q", rec.InvalidReason)
		}
		if len(rec.Encrypted) != 0 {
			t.Error("nothing should be encrypted")
		}
	})

	t.Run("derived records are encrypted", func(t *testing.T) {
		t.Parallel()

		rec := hashReadyRecord("")
		d := rec.Derive()
		d.Set(model.FieldLastName, "JONES")
		rec.AddDerived(d)
		_ = testHashingStep(t).Do(context.Background(), rec)

		_ = NewEncryptionStep(&fakeSealer{}).Do(context.Background(), rec)

		if len(d.Encrypted) != 4 {
			t.Errorf("expected 4 encrypted derived hashes, got %d", len(d.Encrypted))
		}
	})

	t.Run("sealer failure is returned", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		rec := hashedRecord(t)

		err := NewEncryptionStep(&fakeSealer{err: boom}).Do(context.Background(), rec)
		if !errors.Is(err, boom) {
			t.Errorf("expected sealer error, got %v", err)
		}
	})

	t.Run("close wipes once", func(t *testing.T) {
		t.Parallel()

		sealer := &fakeSealer{}
		s := NewEncryptionStep(sealer)
		_ = s.Close()
		_ = s.Close()

		if sealer.wiped.Load() != 1 {
			t.Errorf("expected one wipe, got %d", sealer.wiped.Load())
		}
	})
}
