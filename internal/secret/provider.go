package secret

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
)

const (
	// secretSeparator separates the parts of the decrypted secret string.
	secretSeparator = ","

	// secretParts is the number of mandatory parts in the secret string.
	secretParts = 5

	// privateDateLayout is the layout of the optional sixth part.
	privateDateLayout = "2006-01-02"

	// privateDateSpanDays bounds a derived private date to one century.
	privateDateSpanDays = 36525
)

// privateDateEpoch is the earliest derived private date.
var privateDateEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// Provider turns an encrypted salt file into validated SecretMaterial.
type Provider struct {
	key           *rsa.PrivateKey
	minSaltLength int
	logger        *slog.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithProviderLogger sets the logger.
func WithProviderLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider creates a Provider that decrypts with key and rejects salts
// shorter than minSaltLength.
func NewProvider(key *rsa.PrivateKey, minSaltLength int, opts ...ProviderOption) *Provider {
	p := &Provider{
		key:           key,
		minSaltLength: minSaltLength,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// LoadFile reads and decrypts the salt file at path.
func (p *Provider) LoadFile(path string) (*model.SecretMaterial, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read salt file: %w", err)
	}
	return p.Load(blob)
}

// Load decrypts blob and parses the secret string it contains. The blob
// may be raw ciphertext or its base64 text form.
func (p *Provider) Load(blob []byte) (*model.SecretMaterial, error) {
	plain, err := p.decrypt(blob)
	if err != nil {
		return nil, err
	}
	defer wipe(plain)

	material, err := ParseSecret(string(plain))
	if err != nil {
		return nil, err
	}
	if err := material.Validate(p.minSaltLength); err != nil {
		return nil, err
	}

	p.logger.Debug("secret material loaded",
		"site_id", material.SiteID,
		"project_id", material.ProjectID,
	)
	return material, nil
}

func (p *Provider) decrypt(blob []byte) ([]byte, error) {
	plain, err := rsa.DecryptPKCS1v15(nil, p.key, blob)
	if err == nil {
		return plain, nil
	}

	decoded, decodeErr := base64.StdEncoding.DecodeString(strings.TrimSpace(string(blob)))
	if decodeErr != nil {
		return nil, ErrDecryptSalt
	}
	plain, err = rsa.DecryptPKCS1v15(nil, p.key, decoded)
	if err != nil {
		return nil, ErrDecryptSalt
	}
	return plain, nil
}

// ParseSecret parses "site_id,site_name,private_salt,project_salt,project_id"
// with an optional trailing private date in YYYY-MM-DD form. Without one,
// the private date is derived from the private salt.
//
// Errors name the offending part but never include its value.
func ParseSecret(s string) (*model.SecretMaterial, error) {
	parts := strings.Split(strings.TrimSpace(s), secretSeparator)
	if len(parts) != secretParts && len(parts) != secretParts+1 {
		return nil, fmt.Errorf("%w: expected %d or %d parts, got %d",
			ErrMalformedSecret, secretParts, secretParts+1, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	m := &model.SecretMaterial{
		SiteID:      parts[0],
		SiteName:    parts[1],
		PrivateSalt: parts[2],
		ProjectSalt: parts[3],
		ProjectID:   parts[4],
	}

	if len(parts) == secretParts+1 && parts[5] != "" {
		d, err := time.Parse(privateDateLayout, parts[5])
		if err != nil {
			return nil, fmt.Errorf("%w: private date must be YYYY-MM-DD", ErrMalformedSecret)
		}
		m.PrivateDate = d
	} else if m.PrivateSalt != "" {
		m.PrivateDate = DerivePrivateDate(m.PrivateSalt)
	}
	return m, nil
}

// DerivePrivateDate maps privateSalt to a fixed date between 1900 and 1999.
// The result is stable for a given salt.
func DerivePrivateDate(privateSalt string) time.Time {
	sum := sha256.Sum256([]byte(privateSalt))
	offset := binary.BigEndian.Uint64(sum[:8]) % privateDateSpanDays
	return privateDateEpoch.AddDate(0, 0, int(offset))
}

// EncryptSecret encrypts a secret string for the holder of pub, producing
// the blob a Provider loads. It is used to issue salt files.
func EncryptSecret(pub *rsa.PublicKey, secret string) ([]byte, error) {
	blob, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt secret: %w", err)
	}
	return blob, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
