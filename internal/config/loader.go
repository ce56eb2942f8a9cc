package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".linkja"

// xdgConfigFile is the file name inside the XDG config directory.
const xdgConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .linkja configuration file. Every
// field is optional; unset fields keep the value from NewConfig.
type File struct {
	Input        string `yaml:"input,omitempty"`
	OutputDir    string `yaml:"outputDir,omitempty"`
	Salt         string `yaml:"salt,omitempty"`
	PrivateKey   string `yaml:"privateKey,omitempty"`
	RecipientKey string `yaml:"recipientKey,omitempty"`
	Delimiter    string `yaml:"delimiter,omitempty"`
	BatchSize    int    `yaml:"batchSize,omitempty"`
	Workers      int    `yaml:"workers,omitempty"`
	MinSalt      int    `yaml:"minSaltLength,omitempty"`
	Encryption   string `yaml:"encryption,omitempty"`
	Algorithm    string `yaml:"algorithm,omitempty"`
	Digest       string `yaml:"digest,omitempty"`
	Rules        string `yaml:"rules,omitempty"`
	MetricsFile  string `yaml:"metricsFile,omitempty"`
	Report       string `yaml:"report,omitempty"`

	// Pointers distinguish "false" from "not set".
	WriteUnhashed      *bool `yaml:"writeUnhashed,omitempty"`
	SkipPatientIDCheck *bool `yaml:"skipPatientIdCheck,omitempty"`
	History            *bool `yaml:"history,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .linkja in the current directory
// 3. Look for .linkja in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Apply copies every value set in f into c. A nil f is ignored.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}

	setString(&c.InputFile, f.Input)
	setString(&c.OutputDir, f.OutputDir)
	setString(&c.SaltFile, f.Salt)
	setString(&c.PrivateKeyFile, f.PrivateKey)
	setString(&c.RecipientKeyFile, f.RecipientKey)
	setString(&c.Delimiter, f.Delimiter)
	setString(&c.Encryption, f.Encryption)
	setString(&c.Algorithm, f.Algorithm)
	setString(&c.Digest, f.Digest)
	setString(&c.RulesFile, f.Rules)
	setString(&c.MetricsFile, f.MetricsFile)
	setString(&c.ReportFormat, f.Report)

	if f.BatchSize != 0 {
		c.BatchSize = f.BatchSize
	}
	if f.Workers != 0 {
		c.Workers = f.Workers
	}
	if f.MinSalt != 0 {
		c.MinSaltLength = f.MinSalt
	}

	if f.WriteUnhashed != nil {
		c.WriteUnhashed = *f.WriteUnhashed
	}
	if f.SkipPatientIDCheck != nil {
		c.SkipPatientIDCheck = *f.SkipPatientIDCheck
	}
	if f.History != nil {
		c.History = *f.History
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
