package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default BatchSize is 500", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 500 {
			t.Errorf("expected BatchSize to be 500, got %d", cfg.BatchSize)
		}
	})

	t.Run("default Workers is the CPU count", func(t *testing.T) {
		t.Parallel()
		if cfg.Workers != runtime.NumCPU() {
			t.Errorf("expected Workers to be %d, got %d", runtime.NumCPU(), cfg.Workers)
		}
	})

	t.Run("default MinSaltLength is 13", func(t *testing.T) {
		t.Parallel()
		if cfg.MinSaltLength != 13 {
			t.Errorf("expected MinSaltLength to be 13, got %d", cfg.MinSaltLength)
		}
	})

	t.Run("encryption is off", func(t *testing.T) {
		t.Parallel()
		if cfg.Encryption != EncryptionNone {
			t.Errorf("expected Encryption to be none, got %q", cfg.Encryption)
		}
	})

	t.Run("digest is sha512", func(t *testing.T) {
		t.Parallel()
		if cfg.Digest != "sha512" {
			t.Errorf("expected Digest to be sha512, got %q", cfg.Digest)
		}
	})

	t.Run("history is stored in the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !cfg.History || cfg.DBDir != XDGDataDir() {
			t.Errorf("unexpected history settings: %v %q", cfg.History, cfg.DBDir)
		}
		if filepath.Base(cfg.DBPath()) != DBFileName {
			t.Errorf("unexpected DB path %q", cfg.DBPath())
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.InputFile = "patients.csv"
		cfg.SaltFile = "site.salt"
		cfg.PrivateKeyFile = "private.pem"
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"missing input", func(c *Config) { c.InputFile = "" }, ErrNoInputFile},
		{"missing salt", func(c *Config) { c.SaltFile = "" }, ErrNoSaltFile},
		{"missing private key", func(c *Config) { c.PrivateKeyFile = "" }, ErrNoPrivateKey},
		{"missing output dir", func(c *Config) { c.OutputDir = "" }, ErrNoOutputDir},
		{"two-character delimiter", func(c *Config) { c.Delimiter = ",," }, ErrInvalidDelimiter},
		{"quote delimiter", func(c *Config) { c.Delimiter = "\"" }, ErrInvalidDelimiter},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
		{"negative workers", func(c *Config) { c.Workers = -1 }, ErrInvalidWorkers},
		{"zero salt length", func(c *Config) { c.MinSaltLength = 0 }, ErrInvalidMinSaltLength},
		{"unknown encryption", func(c *Config) { c.Encryption = "all" }, ErrInvalidEncryption},
		{"file encryption without key", func(c *Config) { c.Encryption = EncryptionFile }, ErrNoRecipientKey},
		{"field encryption without key", func(c *Config) { c.Encryption = EncryptionField }, ErrNoRecipientKey},
		{"unknown algorithm", func(c *Config) { c.Algorithm = "des" }, ErrInvalidAlgorithm},
		{"unknown digest", func(c *Config) { c.Digest = "md5" }, ErrInvalidDigest},
		{"unknown report format", func(c *Config) { c.ReportFormat = "html" }, ErrInvalidReportFormat},
		{"history without dir", func(c *Config) { c.DBDir = "" }, ErrNoDBDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("encryption with key is valid", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.Encryption = EncryptionField
		cfg.RecipientKeyFile = "recipient.pem"
		cfg.Algorithm = "chacha20poly1305"
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("history off needs no dir", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.History = false
		cfg.DBDir = ""
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

func TestDelimiterRune(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.Delimiter = "|"
	if cfg.DelimiterRune() != '|' {
		t.Errorf("expected '|', got %q", cfg.DelimiterRune())
	}
	cfg.Delimiter = "\t"
	if cfg.DelimiterRune() != '\t' {
		t.Errorf("expected tab, got %q", cfg.DelimiterRune())
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.linkja")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads and applies valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".linkja")
		content := `input: patients.csv
salt: site.salt
privateKey: private.pem
delimiter: "|"
workers: 3
encryption: file
recipientKey: recipient.pem
digest: sha3-512
writeUnhashed: true
history: false
`
		if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		f, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		cfg.Apply(f)

		if cfg.InputFile != "patients.csv" || cfg.SaltFile != "site.salt" || cfg.PrivateKeyFile != "private.pem" {
			t.Errorf("paths not applied: %+v", cfg)
		}
		if cfg.Delimiter != "|" || cfg.Workers != 3 {
			t.Errorf("unexpected delimiter %q or workers %d", cfg.Delimiter, cfg.Workers)
		}
		if cfg.Encryption != EncryptionFile || cfg.RecipientKeyFile != "recipient.pem" {
			t.Errorf("encryption not applied")
		}
		if cfg.Digest != "sha3-512" {
			t.Errorf("unexpected digest %q", cfg.Digest)
		}
		if !cfg.WriteUnhashed || cfg.History {
			t.Errorf("booleans not applied: unhashed=%v history=%v", cfg.WriteUnhashed, cfg.History)
		}
		if cfg.BatchSize != DefaultBatchSize {
			t.Errorf("unset value must keep its default, got %d", cfg.BatchSize)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".linkja")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0o600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

func TestApplyNil(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.Apply(nil)
	if cfg.BatchSize != DefaultBatchSize {
		t.Error("nil file must not change the config")
	}
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("workers: 2\n"), 0o600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if got := FindConfigFile(configPath); got != configPath {
			t.Errorf("expected %q, got %q", configPath, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if !strings.HasSuffix(XDGDataDir(), AppName) {
		t.Errorf("unexpected data dir %q", XDGDataDir())
	}
	if !strings.HasSuffix(XDGConfigDir(), AppName) {
		t.Errorf("unexpected config dir %q", XDGConfigDir())
	}
}
