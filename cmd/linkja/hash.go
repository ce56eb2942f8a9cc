package main

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/linkja/linkja-hashing-sub000/internal/config"
	"github.com/linkja/linkja-hashing-sub000/internal/database"
	"github.com/linkja/linkja-hashing-sub000/internal/engine"
	"github.com/linkja/linkja-hashing-sub000/internal/input"
	linkjalog "github.com/linkja/linkja-hashing-sub000/internal/log"
	"github.com/linkja/linkja-hashing-sub000/internal/model"
	"github.com/linkja/linkja-hashing-sub000/internal/output"
	"github.com/linkja/linkja-hashing-sub000/internal/pipeline"
	"github.com/linkja/linkja-hashing-sub000/internal/report"
	"github.com/linkja/linkja-hashing-sub000/internal/rules"
	"github.com/linkja/linkja-hashing-sub000/internal/secret"
	"github.com/linkja/linkja-hashing-sub000/internal/telemetry"
)

// Artifact suffixes appended to the hash file path.
const (
	encryptedSuffix = ".enc"
	keySuffix       = ".key"
)

// NewHashCmd creates the hash command.
func NewHashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash a patient file with the site and project salts",
		Long: `Hash reads a delimited patient file and writes de-identified output.

For every valid row it derives PIDHASH and the name, birth date and SSN
hashes. Last names with spaces or hyphens also produce derived records for
each part. Rows that fail validation go to the invalid data file with a
reason. If anything goes wrong the run is rolled back and no output files
are left behind.

Output files (in --output-dir):
  hashes_<site>_<project>_<time>.csv       hashes to send to the linkage party
  crosswalk_<site>_<project>_<time>.csv    patient ID to PIDHASH, keep on site
  invaliddata_<site>_<project>_<time>.csv  rejected rows, keep on site
  debug_<site>_<project>_<time>.csv        only with --write-unhashed

Examples:
  # Hash with the defaults
  linkja hash -i patients.csv -s site.salt -k site_private.pem

  # Pipe-delimited input, eight workers, results in ./out
  linkja hash -i patients.txt -d '|' -w 8 -o ./out -s site.salt -k site_private.pem

  # Encrypt the finished hash file for the recipient
  linkja hash -i patients.csv -s site.salt -k site_private.pem \
    --encryption file --recipient-key recipient.pem

  # Use a configuration file
  linkja hash -c site.yaml`,
		Args: cobra.NoArgs,
		RunE: runHashCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkja in current or home directory)")

	cmd.Flags().StringP("input", "i", "", "Delimited patient file to hash")
	cmd.Flags().StringP("output-dir", "o", ".", "Directory for output files")
	cmd.Flags().StringP("salt", "s", "", "Encrypted salt file")
	cmd.Flags().StringP("private-key", "k", "", "Private key that decrypts the salt file")
	cmd.Flags().StringP("recipient-key", "r", "", "Public key of the hash file recipient")

	cmd.Flags().StringP("delimiter", "d", config.DefaultDelimiter, "Input column delimiter")
	cmd.Flags().IntP("batch-size", "b", config.DefaultBatchSize, "Records per batch")
	cmd.Flags().IntP("workers", "w", 0, "Concurrent workers (default: number of CPUs)")
	cmd.Flags().Int("min-salt-length", config.DefaultMinSaltLength, "Shortest accepted salt")
	cmd.Flags().Bool("write-unhashed", false, "Also write a debug file with unhashed values")
	cmd.Flags().Bool("skip-patient-id-check", false, "Accept patient IDs of any format")
	cmd.Flags().String("rules", "", "Rules file overriding the built-in tags, synonyms and name rules")

	cmd.Flags().StringP("encryption", "e", config.DefaultEncryption, "Encryption mode: none, file or field")
	cmd.Flags().String("algorithm", config.DefaultAlgorithm, "AEAD algorithm: aes-gcm or chacha20poly1305")
	cmd.Flags().String("digest", config.DefaultDigest, "Hash function: sha512 or sha3-512")

	cmd.Flags().Bool("no-history", false, "Do not record the run in the history database")
	cmd.Flags().String("metrics-file", "", "Write run metrics in the Prometheus text format to this file")
	cmd.Flags().String("report", config.DefaultReportFormat, "Summary format: text, json or markdown")
	cmd.Flags().String("report-file", "", "Write the summary to this file instead of stdout")

	return cmd
}

func runHashCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runHash(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig starts from the defaults, applies the configuration file and
// then every flag the user set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		f, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(f)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	stringFlags := map[string]*string{
		"input":         &cfg.InputFile,
		"output-dir":    &cfg.OutputDir,
		"salt":          &cfg.SaltFile,
		"private-key":   &cfg.PrivateKeyFile,
		"recipient-key": &cfg.RecipientKeyFile,
		"delimiter":     &cfg.Delimiter,
		"rules":         &cfg.RulesFile,
		"encryption":    &cfg.Encryption,
		"algorithm":     &cfg.Algorithm,
		"digest":        &cfg.Digest,
		"metrics-file":  &cfg.MetricsFile,
		"report":        &cfg.ReportFormat,
		"report-file":   &cfg.ReportFile,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	intFlags := map[string]*int{
		"batch-size":      &cfg.BatchSize,
		"workers":         &cfg.Workers,
		"min-salt-length": &cfg.MinSaltLength,
	}
	for name, dst := range intFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetInt(name); err != nil {
			return nil, err
		}
	}

	boolFlags := map[string]*bool{
		"write-unhashed":        &cfg.WriteUnhashed,
		"skip-patient-id-check": &cfg.SkipPatientIDCheck,
	}
	for name, dst := range boolFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetBool(name); err != nil {
			return nil, err
		}
	}

	if flags.Changed("no-history") {
		noHistory, err := flags.GetBool("no-history")
		if err != nil {
			return nil, err
		}
		cfg.History = !noHistory
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// setupLogger creates a logger that masks secrets and identifiers.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return linkjalog.NewSecureLogger(w, verbose)
}

// recipient holds what is needed to encrypt output for the receiving party.
type recipient struct {
	key *rsa.PublicKey
	alg secret.Algorithm
}

// runHash performs one hashing run and reports it. The run is recorded in
// the history database whether it succeeds or not.
func runHash(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	r, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return err
	}

	sm, err := loadSecret(cfg, logger)
	if err != nil {
		return err
	}
	logger.Debug("secret material loaded", "site_id", sm.SiteID, "project_id", sm.ProjectID)

	rcpt, err := loadRecipient(cfg)
	if err != nil {
		return err
	}

	reader, err := input.Open(cfg.InputFile, r.Synonyms, input.WithDelimiter(cfg.DelimiterRune()))
	if err != nil {
		return err
	}
	defer reader.Close()
	if ignored := reader.Ignored(); len(ignored) > 0 {
		logger.Warn("ignoring unrecognized input columns", "columns", ignored)
	}

	files := output.NewFileSet()
	set, err := output.NewSet(cfg.OutputDir, sm, files, output.WithDebug(cfg.WriteUnhashed))
	if err != nil {
		return err
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineDigest(pipeline.Digest(cfg.Digest)),
		pipeline.WithPipelinePatientIDCheck(!cfg.SkipPatientIDCheck),
	}
	if cfg.Encryption == config.EncryptionField {
		sealer, err := newFieldSealer(rcpt, files, set.HashPath()+keySuffix)
		if err != nil {
			return errors.Join(err, set.Abort())
		}
		configOpts = append(configOpts, pipeline.WithPipelineSealer(sealer))
	}

	p, err := pipeline.DefaultPipeline(r, sm, []pipeline.Option{pipeline.WithLogger(logger)}, configOpts...)
	if err != nil {
		return errors.Join(err, set.Abort())
	}
	defer p.Close()

	var metrics *telemetry.Metrics
	if cfg.MetricsFile != "" {
		metrics = telemetry.NewMetrics()
	}

	engineOpts := []engine.Option{
		engine.WithBatchSize(cfg.BatchSize),
		engine.WithWorkers(cfg.Workers),
		engine.WithLogger(logger),
		engine.WithMetrics(metrics),
		engine.WithSecret(sm),
	}
	if cfg.Encryption == config.EncryptionFile {
		engineOpts = append(engineOpts, engine.WithFinalizer(encryptHashFile(set.HashPath(), rcpt, files)))
	}

	eng := engine.New(p, set, engineOpts...)
	summary, runErr := eng.Run(ctx, reader)

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("failed to write metrics", "error", err)
		}
	}
	if cfg.History && summary != nil {
		if err := saveRun(ctx, cfg, summary); err != nil {
			logger.Error("failed to record run history", "run_id", summary.RunID, "error", err)
		}
	}
	if summary != nil {
		if err := writeSummary(cfg, summary, stdout); err != nil {
			logger.Error("failed to write summary", "error", err)
		}
	}

	return runErr
}

// loadSecret decrypts and validates the salt file.
func loadSecret(cfg *config.Config, logger *slog.Logger) (*model.SecretMaterial, error) {
	key, err := secret.LoadPrivateKey(cfg.PrivateKeyFile)
	if err != nil {
		return nil, err
	}
	provider := secret.NewProvider(key, cfg.MinSaltLength, secret.WithProviderLogger(logger))
	return provider.LoadFile(cfg.SaltFile)
}

// loadRecipient returns nil when encryption is off.
func loadRecipient(cfg *config.Config) (*recipient, error) {
	if cfg.Encryption == config.EncryptionNone {
		return nil, nil
	}
	key, err := secret.LoadPublicKey(cfg.RecipientKeyFile)
	if err != nil {
		return nil, err
	}
	alg, err := secret.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	return &recipient{key: key, alg: alg}, nil
}

// newFieldSealer creates a cipher under a fresh session key and writes the
// session key, wrapped for the recipient, to keyPath.
func newFieldSealer(rcpt *recipient, files *output.FileSet, keyPath string) (*secret.FieldCipher, error) {
	key, err := secret.GenerateKey()
	if err != nil {
		return nil, err
	}
	defer clear(key)

	wrapped, err := secret.WrapKey(rcpt.key, key, rcpt.alg)
	if err != nil {
		return nil, err
	}

	f, err := files.Create(keyPath)
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(wrapped); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write %s: %w", keyPath, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", keyPath, err)
	}

	return secret.NewFieldCipher(rcpt.alg, key)
}

// encryptHashFile returns a finalizer that writes an encrypted copy of the
// finished hash file and its wrapped key. Both are created through files,
// so an existing file is never overwritten and rollback removes them.
func encryptHashFile(hashPath string, rcpt *recipient, files *output.FileSet) engine.Finalizer {
	return func(_ context.Context) error {
		plain, err := os.ReadFile(hashPath) //nolint:gosec // Path was created by this run
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", hashPath, err)
		}

		dst, err := files.Create(hashPath + encryptedSuffix)
		if err != nil {
			return err
		}
		keyOut, err := files.Create(hashPath + keySuffix)
		if err != nil {
			return errors.Join(err, dst.Close())
		}

		encErr := secret.Encrypt(plain, dst, keyOut, rcpt.key, rcpt.alg)
		return errors.Join(encErr, dst.Close(), keyOut.Close())
	}
}

func saveRun(ctx context.Context, cfg *config.Config, summary *engine.Summary) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	// A cancelled run is still recorded.
	return db.SaveRun(context.WithoutCancel(ctx), summary)
}

// writeSummary writes the run summary to the report file or stdout.
func writeSummary(cfg *config.Config, summary *engine.Summary, stdout io.Writer) error {
	out := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // User-provided report path is intentional
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w, err := report.NewWriter(cfg.ReportFormat, out)
	if err != nil {
		return err
	}
	_, err = w.Write(summary)
	return err
}
