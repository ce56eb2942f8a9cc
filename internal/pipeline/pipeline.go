package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
//
// Do mutates the record in place. Record-level problems (bad input, a
// missing prerequisite step) are recorded with Record.Invalidate and Do
// returns nil; a non-nil error means the caller broke the step's contract
// and the run cannot be trusted.
type Step interface {
	// Do applies the step to rec.
	Do(ctx context.Context, rec *model.Record) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline applies an ordered list of steps to a record.
// It holds no per-record state and is safe for concurrent use as long as
// its steps are.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline running steps in the given order. Nil steps are
// skipped, which lets callers pass optional steps unconditionally.
func New(steps []Step, opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0, len(steps)),
	}
	for _, s := range steps {
		if s != nil {
			p.steps = append(p.steps, s)
		}
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Run applies every step to rec in order. It stops at the first step that
// returns an error.
func (p *Pipeline) Run(ctx context.Context, rec *model.Record) error {
	for _, step := range p.steps {
		if err := step.Do(ctx, rec); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"row", rec.RowNumber,
				"error", err,
			)
			return fmt.Errorf("step %s failed on row %d: %w", step.Name(), rec.RowNumber, err)
		}
	}
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Close releases resources held by steps that implement io.Closer, such as
// key material in the encryption step. All closers run even if one fails.
func (p *Pipeline) Close() error {
	var errs []error
	for _, step := range p.steps {
		if c, ok := step.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", step.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
