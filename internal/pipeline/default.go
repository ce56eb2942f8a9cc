package pipeline

import (
	"github.com/linkja/linkja-hashing-sub000/internal/model"
	"github.com/linkja/linkja-hashing-sub000/internal/rules"
)

// defaultPipelineConfig holds the settings of DefaultPipeline.
type defaultPipelineConfig struct {
	digest         Digest
	sealer         FieldSealer
	checkPatientID bool
}

// DefaultPipelineOption configures DefaultPipeline.
type DefaultPipelineOption func(*defaultPipelineConfig)

// WithPipelineDigest selects the digest used by the hashing step.
func WithPipelineDigest(d Digest) DefaultPipelineOption {
	return func(c *defaultPipelineConfig) {
		c.digest = d
	}
}

// WithPipelineSealer appends an encryption step using sealer. The pipeline
// takes ownership and wipes the sealer on Close.
func WithPipelineSealer(sealer FieldSealer) DefaultPipelineOption {
	return func(c *defaultPipelineConfig) {
		c.sealer = sealer
	}
}

// WithPipelinePatientIDCheck toggles the patient identifier format check.
func WithPipelinePatientIDCheck(enabled bool) DefaultPipelineOption {
	return func(c *defaultPipelineConfig) {
		c.checkPatientID = enabled
	}
}

// DefaultPipeline builds the de-identification sequence:
// validate, normalize, exclude, permute, hash and optionally encrypt.
func DefaultPipeline(r *rules.Rules, secret *model.SecretMaterial, pipelineOpts []Option, configOpts ...DefaultPipelineOption) (*Pipeline, error) {
	cfg := &defaultPipelineConfig{
		digest:         DigestSHA512,
		checkPatientID: true,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	hashing, err := NewHashingStep(secret, r.Tags, WithDigest(cfg.digest))
	if err != nil {
		if cfg.sealer != nil {
			cfg.sealer.Wipe()
		}
		return nil, err
	}

	steps := []Step{
		NewValidationStep(WithPatientIDCheck(cfg.checkPatientID)),
		NewNormalizationStep(r.Prefixes, r.Suffixes),
		NewExclusionStep(r.Exceptions),
		NewPermuteStep(),
		hashing,
	}
	if cfg.sealer != nil {
		steps = append(steps, NewEncryptionStep(cfg.sealer))
	}

	return New(steps, pipelineOpts...), nil
}
