package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultRules []byte

// ErrRulesNotFound is returned when an override rules file does not exist.
var ErrRulesNotFound = errors.New("rules file not found")

// File is the YAML layout of a rules file. Sections left empty in an
// override file keep their default values.
type File struct {
	Tags       map[string]string   `yaml:"tags,omitempty"`
	Synonyms   map[string][]string `yaml:"synonyms,omitempty"`
	Prefixes   []string            `yaml:"prefixes,omitempty"`
	Suffixes   []string            `yaml:"suffixes,omitempty"`
	Exceptions []ExceptionRule     `yaml:"exceptions,omitempty"`
}

// Rules bundles every lookup table needed by the pipeline and the input
// reader.
type Rules struct {
	Tags       *FieldTags
	Synonyms   *Synonyms
	Prefixes   []string
	Suffixes   []string
	Exceptions *ExceptionTable
}

// Default returns the rules compiled into the binary.
func Default() (*Rules, error) {
	f, err := parse(defaultRules)
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in rules: %w", err)
	}
	return build(f)
}

// Load returns the built-in rules overridden by the sections present in
// the YAML file at path. An empty path returns Default().
func Load(path string) (*Rules, error) {
	base, err := parse(defaultRules)
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in rules: %w", err)
	}
	if path == "" {
		return build(base)
	}

	data, err := os.ReadFile(path) //nolint:gosec // User-provided rules path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRulesNotFound, path)
		}
		return nil, err
	}
	override, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	if len(override.Tags) > 0 {
		base.Tags = override.Tags
	}
	if len(override.Synonyms) > 0 {
		base.Synonyms = override.Synonyms
	}
	if len(override.Prefixes) > 0 {
		base.Prefixes = override.Prefixes
	}
	if len(override.Suffixes) > 0 {
		base.Suffixes = override.Suffixes
	}
	if len(override.Exceptions) > 0 {
		base.Exceptions = override.Exceptions
	}
	return build(base)
}

func parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func build(f *File) (*Rules, error) {
	tags, err := NewFieldTags(f.Tags)
	if err != nil {
		return nil, err
	}
	synonyms, err := NewSynonyms(f.Synonyms)
	if err != nil {
		return nil, err
	}
	exceptions, err := NewExceptionTable(f.Exceptions)
	if err != nil {
		return nil, err
	}
	return &Rules{
		Tags:       tags,
		Synonyms:   synonyms,
		Prefixes:   append([]string(nil), f.Prefixes...),
		Suffixes:   append([]string(nil), f.Suffixes...),
		Exceptions: exceptions,
	}, nil
}
