package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
	"github.com/linkja/linkja-hashing-sub000/internal/pipeline"
	"github.com/linkja/linkja-hashing-sub000/internal/telemetry"
)

// Default engine settings.
const (
	DefaultBatchSize    = 500
	DefaultPollInterval = 100 * time.Millisecond
)

// Source yields input records. Next returns io.EOF after the last record.
type Source interface {
	Next() (*model.Record, error)
}

// Output receives processed records from a single goroutine.
type Output interface {
	// Write stores rec and its derived records.
	Write(rec *model.Record) error

	// Close completes every output file.
	Close() error

	// Abort closes and deletes every output file.
	Abort() error
}

// pathLister is implemented by outputs that can report their files.
type pathLister interface {
	Paths() []string
}

// Finalizer runs after the output has been closed successfully, for
// example to encrypt the finished hash file. An error rolls the run back.
type Finalizer func(ctx context.Context) error

// Engine runs one hashing job. It is single use.
type Engine struct {
	worker     processor
	output     Output
	batchSize  int
	workers    int
	poll       time.Duration
	logger     *slog.Logger
	metrics    *telemetry.Metrics
	finalizers []Finalizer
	secret     *model.SecretMaterial

	mu      sync.Mutex
	state   State
	summary Summary
	started bool

	seen map[string]int
}

// Option configures an Engine.
type Option func(*Engine)

// WithBatchSize sets the number of records per batch.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithWorkers sets the number of pool workers, which is also the queue
// capacity.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithPollInterval sets how long a drain waits for a completed batch.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.poll = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics records run metrics into m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithFinalizer adds a step that runs after the output is closed.
func WithFinalizer(f Finalizer) Option {
	return func(e *Engine) {
		e.finalizers = append(e.finalizers, f)
	}
}

// WithSecret attaches the site and project IDs to the summary.
func WithSecret(s *model.SecretMaterial) Option {
	return func(e *Engine) {
		e.secret = s
	}
}

// New creates an Engine that processes records with p and writes them to
// out.
func New(p *pipeline.Pipeline, out Output, opts ...Option) *Engine {
	e := &Engine{
		output:    out,
		batchSize: DefaultBatchSize,
		workers:   runtime.NumCPU(),
		poll:      DefaultPollInterval,
		state:     StateInitializing,
		seen:      make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.worker = pipeline.NewBatchWorker(p, pipeline.WithBatchLogger(e.logger))

	e.summary = Summary{
		RunID:   uuid.NewString(),
		State:   StateInitializing.String(),
		Trusted: true,
	}
	if e.secret != nil {
		e.summary.SiteID = e.secret.SiteID
		e.summary.ProjectID = e.secret.ProjectID
	}
	return e
}

// RunID returns the identifier of this run.
func (e *Engine) RunID() string {
	return e.summary.RunID
}

// State returns the current state. It is safe to call from any goroutine.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	prev := e.state
	e.state = s
	e.summary.State = s.String()
	e.mu.Unlock()

	e.logger.Debug("engine state changed",
		"run_id", e.summary.RunID,
		"from", prev.String(),
		"to", s.String(),
	)
}

// Run processes every record from src. On success the summary describes
// the complete output. On failure the output has been removed and the
// summary describes the rolled back run. ErrBatchMismatch is returned with
// a complete output that must not be trusted.
func (e *Engine) Run(ctx context.Context, src Source) (*Summary, error) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return nil, ErrAlreadyRun
	}
	e.started = true
	e.mu.Unlock()

	e.summary.StartedAt = time.Now()
	e.logger.Info("run started",
		"run_id", e.summary.RunID,
		"workers", e.workers,
		"batch_size", e.batchSize,
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := newPool(runCtx, e.worker, e.workers)

	e.setState(StateStreaming)
	if err := e.stream(runCtx, p, src); err != nil {
		return e.rollback(p, cancel, err)
	}

	e.setState(StateDraining)
	p.shutdown()
	for {
		res, ok := p.next()
		if !ok {
			break
		}
		if err := e.handle(res, false); err != nil {
			return e.rollback(p, cancel, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return e.rollback(p, cancel, err)
	}

	e.setState(StateFinalizing)
	if err := e.output.Close(); err != nil {
		return e.rollback(p, cancel, fmt.Errorf("failed to close output: %w", err))
	}
	for _, f := range e.finalizers {
		if err := f(runCtx); err != nil {
			return e.rollback(p, cancel, err)
		}
	}

	var mismatch error
	if e.summary.SubmittedBatches != e.summary.CompletedBatches {
		e.summary.Trusted = false
		mismatch = fmt.Errorf("%w: submitted %d, completed %d",
			ErrBatchMismatch, e.summary.SubmittedBatches, e.summary.CompletedBatches)
		e.summary.Error = mismatch.Error()
		e.logger.Error("output may be incomplete", "run_id", e.summary.RunID, "error", mismatch)
	}

	if pl, ok := e.output.(pathLister); ok {
		e.summary.Files = pl.Paths()
	}

	e.setState(StateSucceeded)
	e.finish()
	return e.snapshot(), mismatch
}

// stream reads src, batches records and submits them. It drains completed
// batches as it goes so memory stays bounded.
func (e *Engine) stream(ctx context.Context, p *pool, src Source) error {
	batch := make([]*model.Record, 0, e.batchSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		e.summary.InputRecords++

		if err := e.checkDuplicate(rec); err != nil {
			return err
		}

		batch = append(batch, rec)
		if len(batch) < e.batchSize {
			continue
		}
		if err := e.submit(p, batch); err != nil {
			return err
		}
		batch = make([]*model.Record, 0, e.batchSize)
	}

	if len(batch) > 0 {
		return e.submit(p, batch)
	}
	return nil
}

// checkDuplicate fails on a repeated non-blank patient ID. The error
// names the rows, never the identifier.
func (e *Engine) checkDuplicate(rec *model.Record) error {
	pid := strings.TrimSpace(rec.Value(model.FieldPatientID))
	if pid == "" {
		return nil
	}
	if first, ok := e.seen[pid]; ok {
		return fmt.Errorf("%w: rows %d and %d", ErrDuplicatePatientID, first, rec.RowNumber)
	}
	e.seen[pid] = rec.RowNumber
	return nil
}

func (e *Engine) submit(p *pool, records []*model.Record) error {
	e.summary.SubmittedBatches++
	b := &pipeline.Batch{ID: e.summary.SubmittedBatches, Records: records}

	if res, inline := p.submit(b); inline {
		e.summary.InlineBatches++
		if err := e.handle(res, true); err != nil {
			return err
		}
	}

	return e.drain(p)
}

// drain writes every batch that is already complete. While all workers
// are busy it waits for at least one more.
func (e *Engine) drain(p *pool) error {
	for {
		res, ok := p.tryPoll()
		if !ok {
			break
		}
		if err := e.handle(res, false); err != nil {
			return err
		}
	}

	for p.busy() {
		res, ok := p.poll(e.poll)
		if !ok {
			continue
		}
		return e.handle(res, false)
	}
	return nil
}

// handle writes a completed batch to the output.
func (e *Engine) handle(res batchResult, inline bool) error {
	if res.err != nil {
		return res.err
	}

	mode := telemetry.BatchPooled
	if inline {
		mode = telemetry.BatchInline
	}
	e.metrics.ObserveBatch(mode, res.duration)

	for _, rec := range res.batch.Records {
		if err := e.output.Write(rec); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rec.RowNumber, err)
		}
		e.count(rec)
	}

	e.summary.CompletedBatches++
	return nil
}

func (e *Engine) count(rec *model.Record) {
	rec.Walk(func(r *model.Record) {
		if r.IsDerived() {
			e.summary.DerivedRecords++
			e.metrics.AddRecords(telemetry.OutcomeDerived, 1)
		}
		if r.ShouldProcess() {
			e.summary.HashedRecords++
			e.metrics.AddRecords(telemetry.OutcomeHashed, 1)
		} else {
			e.summary.InvalidRecords++
			e.metrics.AddRecords(telemetry.OutcomeInvalid, 1)
		}
		if r.IsException && !r.IsDerived() {
			e.summary.ExceptionRecords++
			e.metrics.AddRecords(telemetry.OutcomeException, 1)
		}
	})
}

// rollback stops the pool, deletes the output and returns cause.
func (e *Engine) rollback(p *pool, cancel context.CancelFunc, cause error) (*Summary, error) {
	e.logger.Error("rolling back run",
		"run_id", e.summary.RunID,
		"state", e.State().String(),
		"error", cause,
	)

	p.stop(cancel)

	err := cause
	if abortErr := e.output.Abort(); abortErr != nil {
		err = errors.Join(cause, fmt.Errorf("failed to remove output: %w", abortErr))
	}

	e.summary.Error = cause.Error()
	e.setState(StateRolledBack)
	e.finish()
	return e.snapshot(), err
}

func (e *Engine) finish() {
	e.summary.FinishedAt = time.Now()
	e.metrics.ObserveRun(e.summary.State, e.summary.Duration(), e.summary.FinishedAt)

	e.logger.Info("run finished",
		"run_id", e.summary.RunID,
		"state", e.summary.State,
		"input_records", e.summary.InputRecords,
		"invalid_records", e.summary.InvalidRecords,
		"batches", e.summary.CompletedBatches,
		"elapsed", e.summary.Duration(),
	)
}

func (e *Engine) snapshot() *Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.summary
	s.Files = append([]string(nil), e.summary.Files...)
	return &s
}
