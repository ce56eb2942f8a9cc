package secret

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
)

const testSecretString = "3,Test Site,9876543210987,1234567890123,proj-1,2000-01-01"

func TestParseSecret(t *testing.T) {
	t.Parallel()

	t.Run("six parts", func(t *testing.T) {
		t.Parallel()

		m, err := ParseSecret(testSecretString)
		if err != nil {
			t.Fatal(err)
		}
		if m.SiteID != "3" || m.SiteName != "Test Site" || m.ProjectID != "proj-1" {
			t.Errorf("unexpected identifiers: %s", m)
		}
		if m.PrivateSalt != "9876543210987" || m.ProjectSalt != "1234567890123" {
			t.Error("salts not parsed")
		}
		if !m.PrivateDate.Equal(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected private date %v", m.PrivateDate)
		}
	})

	t.Run("five parts derive the private date", func(t *testing.T) {
		t.Parallel()

		m, err := ParseSecret(" 3 , Site , 9876543210987 , 1234567890123 , proj-1 ")
		if err != nil {
			t.Fatal(err)
		}
		if m.SiteID != "3" || m.ProjectID != "proj-1" {
			t.Error("expected trimmed parts")
		}
		if !m.PrivateDate.Equal(DerivePrivateDate("9876543210987")) {
			t.Error("expected derived private date")
		}
	})

	tests := []struct {
		name  string
		input string
	}{
		{name: "too few parts", input: "3,site,salt,salt"},
		{name: "too many parts", input: "3,site,salt,salt,proj,2000-01-01,extra"},
		{name: "bad date", input: "3,site,salt,salt,proj,01/01/2000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseSecret(tt.input)
			if !errors.Is(err, ErrMalformedSecret) {
				t.Errorf("expected ErrMalformedSecret, got %v", err)
			}
		})
	}

	t.Run("errors never echo salts", func(t *testing.T) {
		t.Parallel()

		_, err := ParseSecret("3,site,SECRETSALT,SECRETSALT,proj,bad")
		if err == nil || strings.Contains(err.Error(), "SECRETSALT") {
			t.Errorf("unexpected error %v", err)
		}
	})
}

func TestDerivePrivateDate(t *testing.T) {
	t.Parallel()

	a := DerivePrivateDate("9876543210987")
	b := DerivePrivateDate("9876543210987")
	if !a.Equal(b) {
		t.Error("derivation must be stable")
	}
	if a.Year() < 1900 || a.Year() > 2000 {
		t.Errorf("derived date out of range: %v", a)
	}
	if a.Hour() != 0 || a.Location() != time.UTC {
		t.Error("derived date must be midnight UTC")
	}
}

func TestProvider(t *testing.T) {
	t.Parallel()

	key := rsaKey(t)

	t.Run("raw blob", func(t *testing.T) {
		t.Parallel()

		blob, err := EncryptSecret(&key.PublicKey, testSecretString)
		if err != nil {
			t.Fatal(err)
		}
		m, err := NewProvider(key, 13).Load(blob)
		if err != nil {
			t.Fatal(err)
		}
		if m.SiteID != "3" {
			t.Errorf("unexpected site %q", m.SiteID)
		}
	})

	t.Run("base64 file", func(t *testing.T) {
		t.Parallel()

		blob, err := EncryptSecret(&key.PublicKey, testSecretString)
		if err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(t.TempDir(), "salt.txt")
		if err := os.WriteFile(path, []byte(base64.StdEncoding.EncodeToString(blob)+"\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := NewProvider(key, 13).LoadFile(path); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("short salt", func(t *testing.T) {
		t.Parallel()

		blob, err := EncryptSecret(&key.PublicKey, "3,site,short,1234567890123,proj")
		if err != nil {
			t.Fatal(err)
		}
		_, err = NewProvider(key, 13).Load(blob)
		if !errors.Is(err, model.ErrSaltTooShort) {
			t.Errorf("expected ErrSaltTooShort, got %v", err)
		}
	})

	t.Run("missing part", func(t *testing.T) {
		t.Parallel()

		blob, err := EncryptSecret(&key.PublicKey, ",site,9876543210987,1234567890123,proj")
		if err != nil {
			t.Fatal(err)
		}
		_, err = NewProvider(key, 13).Load(blob)
		if !errors.Is(err, model.ErrIncompleteSecret) {
			t.Errorf("expected ErrIncompleteSecret, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()

		_, err := NewProvider(key, 13).Load([]byte("not encrypted"))
		if !errors.Is(err, ErrDecryptSalt) {
			t.Errorf("expected ErrDecryptSalt, got %v", err)
		}
	})
}
