package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoInputFile is returned when no input file is specified.
	ErrNoInputFile = errors.New("no input file specified: use --input")

	// ErrNoSaltFile is returned when no salt file is specified.
	ErrNoSaltFile = errors.New("no salt file specified: use --salt")

	// ErrNoPrivateKey is returned when no private key is specified.
	ErrNoPrivateKey = errors.New("no private key specified: use --private-key")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrInvalidDelimiter is returned when the delimiter is not a single
	// usable character.
	ErrInvalidDelimiter = errors.New("invalid delimiter: must be a single character other than a quote or line break")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidMinSaltLength is returned when the minimum salt length is
	// not positive.
	ErrInvalidMinSaltLength = errors.New("invalid minimum salt length: must be positive")

	// ErrInvalidEncryption is returned for an unknown encryption mode.
	ErrInvalidEncryption = errors.New("invalid encryption mode: must be none, file or field")

	// ErrNoRecipientKey is returned when encryption is enabled without a
	// recipient public key.
	ErrNoRecipientKey = errors.New("encryption requires a recipient public key: use --recipient-key")

	// ErrInvalidAlgorithm is returned for an unknown AEAD name.
	ErrInvalidAlgorithm = errors.New("invalid algorithm: must be aes-gcm or chacha20poly1305")

	// ErrInvalidDigest is returned for an unknown digest name.
	ErrInvalidDigest = errors.New("invalid digest: must be sha512 or sha3-512")

	// ErrInvalidReportFormat is returned for an unknown report format.
	ErrInvalidReportFormat = errors.New("invalid report format: must be text, json or markdown")

	// ErrNoDBDir is returned when run history is enabled without a
	// database directory.
	ErrNoDBDir = errors.New("run history requires a database directory")
)
