package config

import (
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "linkja"

	// DefaultBatchSize is the number of records handed to a worker at once.
	// Larger batches amortize scheduling cost; smaller batches keep the
	// memory held by in-flight work low.
	DefaultBatchSize = 500

	// DefaultMinSaltLength is the shortest accepted private or project salt.
	DefaultMinSaltLength = 13

	// DefaultDelimiter separates input columns.
	DefaultDelimiter = ","

	// DefaultEncryption leaves hash values in plaintext.
	DefaultEncryption = EncryptionNone

	// DefaultAlgorithm is the AEAD used when encryption is enabled.
	DefaultAlgorithm = "aes-gcm"

	// DefaultDigest is the hash function used for every hash output.
	DefaultDigest = "sha512"

	// DefaultReportFormat prints a human-readable summary.
	DefaultReportFormat = ReportText

	// DBFileName is the run-history database file inside the data dir.
	DBFileName = "history.db"
)

// Encryption modes.
const (
	// EncryptionNone writes plaintext hashes.
	EncryptionNone = "none"

	// EncryptionFile writes plaintext hashes and then an encrypted copy of
	// the finished hash file with its wrapped key.
	EncryptionFile = "file"

	// EncryptionField seals every hash value individually.
	EncryptionField = "field"
)

// Report formats.
const (
	ReportText     = "text"
	ReportJSON     = "json"
	ReportMarkdown = "markdown"
)

// Config holds all configuration options for a hashing run.
// It is populated from the configuration file and CLI flags and passed
// down explicitly; nothing reads it from global state.
type Config struct {
	// InputFile is the delimited patient file to hash.
	InputFile string

	// OutputDir receives every output file. It must exist.
	OutputDir string

	// SaltFile is the encrypted secret issued to the site.
	SaltFile string

	// PrivateKeyFile decrypts SaltFile.
	PrivateKeyFile string

	// RecipientKeyFile is the public key of the party that receives the
	// hash file. Required when Encryption is not "none".
	RecipientKeyFile string

	// Delimiter separates input columns. It must be a single character.
	Delimiter string

	// BatchSize is the number of records per batch.
	BatchSize int

	// Workers is the number of concurrent batch workers and the capacity
	// of the work queue.
	Workers int

	// MinSaltLength is the shortest accepted salt.
	MinSaltLength int

	// WriteUnhashed also writes the debug file with unhashed values. That
	// file must never leave the site.
	WriteUnhashed bool

	// Encryption is "none", "file" or "field".
	Encryption string

	// Algorithm is the AEAD used for encryption: "aes-gcm" or
	// "chacha20poly1305".
	Algorithm string

	// Digest is "sha512" or "sha3-512". Every site of a project must use
	// the same digest.
	Digest string

	// RulesFile overrides the built-in tags, synonyms and name rules.
	RulesFile string

	// SkipPatientIDCheck accepts patient IDs of any format.
	SkipPatientIDCheck bool

	// History records the run in the run-history database.
	History bool

	// DBDir holds the run-history database.
	DBDir string

	// MetricsFile, when set, receives run metrics in the Prometheus text
	// format.
	MetricsFile string

	// ReportFormat is "text", "json" or "markdown".
	ReportFormat string

	// ReportFile, when set, receives the run summary instead of stdout.
	ReportFile string

	// ConfigFilePath is the configuration file to load. When empty, .linkja
	// is searched for in the current, home and XDG config directories.
	ConfigFilePath string

	// Verbose enables debug logging.
	Verbose bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		OutputDir:     ".",
		Delimiter:     DefaultDelimiter,
		BatchSize:     DefaultBatchSize,
		Workers:       runtime.NumCPU(),
		MinSaltLength: DefaultMinSaltLength,
		Encryption:    DefaultEncryption,
		Algorithm:     DefaultAlgorithm,
		Digest:        DefaultDigest,
		History:       true,
		DBDir:         XDGDataDir(),
		ReportFormat:  DefaultReportFormat,
	}
}

// XDGDataDir returns the XDG data directory for linkja.
// On Linux: ~/.local/share/linkja
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for linkja.
// On Linux: ~/.config/linkja
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DBPath returns the run-history database path.
func (c *Config) DBPath() string {
	return filepath.Join(c.DBDir, DBFileName)
}

// DelimiterRune returns the delimiter as a rune. Validate guarantees it is
// a single character.
func (c *Config) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}

// Validate checks if the configuration is valid. It returns the first
// problem found.
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return ErrNoInputFile
	}
	if c.SaltFile == "" {
		return ErrNoSaltFile
	}
	if c.PrivateKeyFile == "" {
		return ErrNoPrivateKey
	}
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	if len([]rune(c.Delimiter)) != 1 || c.Delimiter == "\"" || c.Delimiter == "\n" || c.Delimiter == "\r" {
		return ErrInvalidDelimiter
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.MinSaltLength <= 0 {
		return ErrInvalidMinSaltLength
	}

	switch c.Encryption {
	case EncryptionNone:
	case EncryptionFile, EncryptionField:
		if c.RecipientKeyFile == "" {
			return ErrNoRecipientKey
		}
	default:
		return ErrInvalidEncryption
	}

	switch c.Algorithm {
	case "aes-gcm", "chacha20poly1305":
	default:
		return ErrInvalidAlgorithm
	}

	switch c.Digest {
	case "sha512", "sha3-512":
	default:
		return ErrInvalidDigest
	}

	switch c.ReportFormat {
	case ReportText, ReportJSON, ReportMarkdown:
	default:
		return ErrInvalidReportFormat
	}

	if c.History && c.DBDir == "" {
		return ErrNoDBDir
	}
	return nil
}
