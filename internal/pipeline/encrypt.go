package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
)

// FieldSealer encrypts one hash value with an authenticated cipher.
// Implementations must be safe for concurrent use.
type FieldSealer interface {
	// Seal returns the sealed form of plaintext.
	Seal(plaintext []byte) ([]byte, error)

	// Wipe zeroes the key material held by the sealer.
	Wipe()
}

// EncryptionStep replaces every hash value with its sealed form. The
// plaintext PIDHASH is kept under model.UnencryptedPatientIDKey so the
// local crosswalk can still be written.
type EncryptionStep struct {
	sealer    FieldSealer
	closeOnce sync.Once
}

// NewEncryptionStep creates an encryption step that owns sealer. Close must
// be called once the step is no longer in use.
func NewEncryptionStep(sealer FieldSealer) *EncryptionStep {
	return &EncryptionStep{sealer: sealer}
}

// Name returns the step name.
func (s *EncryptionStep) Name() string {
	return model.StepEncrypt.String()
}

// Do encrypts the hashes of rec and of each derived record.
func (s *EncryptionStep) Do(_ context.Context, rec *model.Record) error {
	if err := s.encryptRecord(rec); err != nil {
		return err
	}
	if rec.IsInvalid() {
		rec.DropDerived()
		return nil
	}
	for _, d := range rec.DerivedRecords {
		if err := s.encryptRecord(d); err != nil {
			return err
		}
	}
	return nil
}

// Close wipes the key material. It is safe to call more than once.
func (s *EncryptionStep) Close() error {
	s.closeOnce.Do(s.sealer.Wipe)
	return nil
}

func (s *EncryptionStep) encryptRecord(rec *model.Record) error {
	if rec.IsInvalid() {
		return nil
	}
	if !rec.HasCompleted(model.StepHash) {
		rec.Invalidate("Encryption requires the " + model.StepHash.String() + " step to complete first")
		return nil
	}

	var missing []string
	for _, name := range model.RequiredHashFields {
		if rec.Hashes[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		rec.Invalidate("Unable to encrypt the record, missing hashes: " + strings.Join(missing, ", "))
		return nil
	}

	rec.Hashes[model.UnencryptedPatientIDKey] = rec.Hashes[model.HashPatientID]

	for _, name := range model.HashFields {
		v, ok := rec.Hashes[name]
		if !ok {
			continue
		}
		sealed, err := s.sealer.Seal([]byte(v))
		if err != nil {
			return fmt.Errorf("failed to encrypt %s: %w", name, err)
		}
		rec.Encrypted[name] = sealed
		delete(rec.Hashes, name)
	}

	rec.MarkCompleted(model.StepEncrypt)
	return nil
}
