// Package log builds slog loggers that never write patient identifiers or
// secret material.
//
// The SecureHandler masks attributes by key (salt, patient_id, dob, ssn,
// names) and by value shape (PEM private keys, long hex digests, SSNs,
// long base64 blobs). Masking applies at every level, so verbose output is
// as safe to share as the default.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Warn("record rejected", "row", 12, "ssn", rec.Value(model.FieldSSN))
//	// row=12 ssn=***REDACTED***
package log
