package pipeline

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
	"github.com/linkja/linkja-hashing-sub000/internal/rules"
)

// Digest names a hash function used for hash derivation.
type Digest string

const (
	// DigestSHA512 is SHA-512, the default.
	DigestSHA512 Digest = "sha512"

	// DigestSHA3512 is SHA3-512.
	DigestSHA3512 Digest = "sha3-512"
)

// ErrUnknownDigest is returned for an unsupported digest name.
var ErrUnknownDigest = errors.New("unknown digest algorithm")

// newHashFunc returns the constructor for d.
func newHashFunc(d Digest) (func() hash.Hash, error) {
	switch d {
	case DigestSHA512, "":
		return sha512.New, nil
	case DigestSHA3512:
		return sha3.New512, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDigest, d)
	}
}

// HashingStep derives the family of salted digests for a record and its
// derived records. The exact hash input strings are an exchange format
// shared between sites.
type HashingStep struct {
	secret  *model.SecretMaterial
	tags    *rules.FieldTags
	newHash func() hash.Hash
}

// HashingStepOption configures a HashingStep.
type HashingStepOption func(*HashingStep) error

// WithDigest selects the digest algorithm.
func WithDigest(d Digest) HashingStepOption {
	return func(s *HashingStep) error {
		fn, err := newHashFunc(d)
		if err != nil {
			return err
		}
		s.newHash = fn
		return nil
	}
}

// NewHashingStep creates a hashing step. secret and tags are shared
// read-only with every worker.
func NewHashingStep(secret *model.SecretMaterial, tags *rules.FieldTags, opts ...HashingStepOption) (*HashingStep, error) {
	s := &HashingStep{
		secret:  secret,
		tags:    tags,
		newHash: sha512.New,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Name returns the step name.
func (s *HashingStep) Name() string {
	return model.StepHash.String()
}

// Do computes the hashes of rec and then of each derived record.
func (s *HashingStep) Do(_ context.Context, rec *model.Record) error {
	s.hashRecord(rec, false)
	if rec.IsInvalid() {
		rec.DropDerived()
	}
	return nil
}

func (s *HashingStep) hashRecord(rec *model.Record, derived bool) {
	if rec.IsInvalid() {
		return
	}
	if !rec.HasCompleted(model.StepValidate) {
		rec.Invalidate("Hashing requires the " + model.StepValidate.String() + " step to complete first")
		return
	}

	dob, err := s.birthDate(rec)
	if err != nil {
		rec.Invalidate("Unable to hash the record: " + model.FieldDateOfBirth + " could not be parsed")
		return
	}

	pid := strings.TrimSpace(rec.Value(model.FieldPatientID))
	first := rec.Value(model.FieldFirstName)
	last := rec.Value(model.FieldLastName)
	var missing []string
	if pid == "" {
		missing = append(missing, model.FieldPatientID)
	}
	if first == "" {
		missing = append(missing, model.FieldFirstName)
	}
	if last == "" {
		missing = append(missing, model.FieldLastName)
	}
	if len(missing) > 0 {
		rec.Invalidate("Unable to hash the record, missing: " + strings.Join(missing, ", "))
		return
	}

	hashes := s.derive(pid, first, last, rec.Value(model.FieldSSN), dob, derived)
	for name, h := range hashes {
		rec.Hashes[name] = h
	}
	rec.MarkCompleted(model.StepHash)

	if derived {
		return
	}
	for _, d := range rec.DerivedRecords {
		s.hashRecord(d, true)
	}
}

// birthDate returns the cached date of birth, parsing it on first use.
func (s *HashingStep) birthDate(rec *model.Record) (time.Time, error) {
	if rec.BirthDate != nil {
		return *rec.BirthDate, nil
	}
	t, err := ParseDate(rec.Value(model.FieldDateOfBirth))
	if err != nil {
		return time.Time{}, err
	}
	rec.BirthDate = &t
	return t, nil
}

// derive builds every hash for one record. The two truncated-first-name
// formulas are skipped for derived records.
func (s *HashingStep) derive(pid, first, last, ssn string, dob time.Time, derived bool) map[string]string {
	out := make(map[string]string, len(model.HashFields))

	dobText := FormatDate(dob)
	tdobText := formatTransposedDate(dob)

	out[model.HashPatientID] = s.digest(s.PatientIDHashInput(pid, dob))
	out[model.HashFnameLnameDOB] = s.digest(s.nameInput(first, last, dobText, ""))
	out[model.HashLnameFnameDOB] = s.digest(s.nameInput(last, first, dobText, ""))
	out[model.HashFnameLnameTDOB] = s.digest(s.nameInput(first, last, tdobText, ""))
	if !derived {
		out[model.HashFname3LnameDOB] = s.digest(s.nameInput(firstThree(first), last, dobText, ""))
	}

	if ssn == "" {
		return out
	}

	out[model.HashFnameLnameDOBSSN] = s.digest(s.nameInput(first, last, dobText, ssn))
	out[model.HashLnameFnameDOBSSN] = s.digest(s.nameInput(last, first, dobText, ssn))
	out[model.HashFnameLnameTDOBSSN] = s.digest(s.nameInput(first, last, tdobText, ssn))
	out[model.HashFnameLnameDOBDSSN] = s.digest(s.nameInput(first, last, FormatDate(dob.AddDate(0, 0, 1)), ssn))
	out[model.HashFnameLnameDOBYSSN] = s.digest(s.nameInput(first, last, FormatDate(addOneYear(dob)), ssn))
	if !derived {
		out[model.HashFname3LnameDOBSSN] = s.digest(s.nameInput(firstThree(first), last, dobText, ssn))
	}
	return out
}

// PatientIDHashInput returns the PIDHASH input string: patient ID, site ID,
// days from birth to the private date, and the private salt.
func (s *HashingStep) PatientIDHashInput(pid string, dob time.Time) string {
	var b strings.Builder
	s.writeTagged(&b, model.FieldPatientID, pid)
	s.writeTagged(&b, model.FieldSiteID, s.secret.SiteID)
	s.writeTagged(&b, model.FieldDateOffset, strconv.Itoa(daysBetween(dob, s.secret.PrivateDate)))
	s.writeTagged(&b, model.FieldPrivateSalt, s.secret.PrivateSalt)
	return b.String()
}

// nameInput builds a name/date hash input. The first-name tag always
// precedes the first value and the last-name tag the second, so swapped
// formulas keep the tags in position.
func (s *HashingStep) nameInput(firstPos, secondPos, dob, ssn string) string {
	var b strings.Builder
	s.writeTagged(&b, model.FieldFirstName, firstPos)
	s.writeTagged(&b, model.FieldLastName, secondPos)
	s.writeTagged(&b, model.FieldDateOfBirth, dob)
	if ssn != "" {
		s.writeTagged(&b, model.FieldSSN, ssn)
	}
	s.writeTagged(&b, model.FieldProjectSalt, s.secret.ProjectSalt)
	return b.String()
}

func (s *HashingStep) writeTagged(b *strings.Builder, field, value string) {
	b.WriteString(s.tags.Tag(field))
	b.WriteString(value)
}

// digest returns the uppercase hex digest of input.
func (s *HashingStep) digest(input string) string {
	h := s.newHash()
	h.Write([]byte(input))
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}

func firstThree(v string) string {
	r := []rune(v)
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}
