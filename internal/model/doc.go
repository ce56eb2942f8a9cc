// Package model defines the data structures shared by the pipeline, the
// engine and the output sinks.
//
// This package contains the following main types:
//   - Record: one patient row plus its processing metadata
//   - StepID / StepSet: pipeline stage identifiers and completion tracking
//   - SecretMaterial: the site and project salts used for hashing
//
// Models live in their own package so that pipeline, engine and output can
// share them without import cycles.
package model
