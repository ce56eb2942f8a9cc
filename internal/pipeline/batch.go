package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
)

// Batch is a group of records processed together by one worker.
type Batch struct {
	// ID is the submission sequence number, starting at 1.
	ID int

	// Records are the top-level records in input order.
	Records []*model.Record
}

// BatchWorker applies a Pipeline to every record of a batch.
// Workers share the Pipeline and never share records.
type BatchWorker struct {
	pipeline *Pipeline
	logger   *slog.Logger
}

// BatchWorkerOption configures a BatchWorker.
type BatchWorkerOption func(*BatchWorker)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchWorkerOption {
	return func(w *BatchWorker) {
		w.logger = logger
	}
}

// NewBatchWorker creates a worker for p.
func NewBatchWorker(p *Pipeline, opts ...BatchWorkerOption) *BatchWorker {
	w := &BatchWorker{pipeline: p}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// Process runs the pipeline over every record in b. It stops early when ctx
// is cancelled and converts a panic in a step into an error, so a failing
// batch never takes the process down with it.
func (w *BatchWorker) Process(ctx context.Context, b *Batch) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("batch %d panicked: %v", b.ID, r)
		}
	}()

	for _, rec := range b.Records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := w.pipeline.Run(ctx, rec); err != nil {
			return fmt.Errorf("batch %d: %w", b.ID, err)
		}
	}

	w.logger.Debug("batch processed",
		"batch", b.ID,
		"records", len(b.Records),
	)
	return nil
}
