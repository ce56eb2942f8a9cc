package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrIncompleteSecret is returned when secret material is missing a part.
var ErrIncompleteSecret = errors.New("secret material is incomplete")

// SecretMaterial carries the per-site and per-project values mixed into
// every hash. It is loaded once before processing and then shared
// read-only by all workers.
type SecretMaterial struct {
	SiteID      string
	SiteName    string
	PrivateSalt string
	ProjectSalt string
	ProjectID   string

	// PrivateDate anchors the date offset hashed into PIDHASH.
	PrivateDate time.Time
}

// Validate checks that every part is present and both salts are at least
// minSaltLength characters long. Messages never include the salt values.
func (s *SecretMaterial) Validate(minSaltLength int) error {
	switch {
	case s.SiteID == "":
		return fmt.Errorf("%w: missing site ID", ErrIncompleteSecret)
	case s.ProjectID == "":
		return fmt.Errorf("%w: missing project ID", ErrIncompleteSecret)
	case s.PrivateSalt == "":
		return fmt.Errorf("%w: missing private salt", ErrIncompleteSecret)
	case s.ProjectSalt == "":
		return fmt.Errorf("%w: missing project salt", ErrIncompleteSecret)
	case s.PrivateDate.IsZero():
		return fmt.Errorf("%w: missing private date", ErrIncompleteSecret)
	}
	if len(s.PrivateSalt) < minSaltLength {
		return fmt.Errorf("%w: private salt must be at least %d characters", ErrSaltTooShort, minSaltLength)
	}
	if len(s.ProjectSalt) < minSaltLength {
		return fmt.Errorf("%w: project salt must be at least %d characters", ErrSaltTooShort, minSaltLength)
	}
	return nil
}

// ErrSaltTooShort is returned when a salt is shorter than the configured minimum.
var ErrSaltTooShort = errors.New("salt is too short")

// String omits both salts so the value is safe to log.
func (s *SecretMaterial) String() string {
	return fmt.Sprintf("site=%s (%s) project=%s", s.SiteID, s.SiteName, s.ProjectID)
}
