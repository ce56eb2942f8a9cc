package engine

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linkja/linkja-hashing-sub000/internal/pipeline"
)

// batchResult is a processed batch and the error its worker returned.
type batchResult struct {
	batch    *pipeline.Batch
	err      error
	duration time.Duration
}

// processor runs one batch. *pipeline.BatchWorker satisfies it.
type processor interface {
	Process(ctx context.Context, b *pipeline.Batch) error
}

// pool is a fixed set of workers fed by a bounded queue. Submit never
// blocks: when the queue is full the caller runs the batch inline.
type pool struct {
	size    int
	worker  processor
	ctx     context.Context
	group   *errgroup.Group
	queue   chan *pipeline.Batch
	results chan batchResult
	active  atomic.Int32

	closed   bool
	finished chan struct{}
}

// newPool starts size workers. Both the queue and the worker count equal
// size. The results buffer holds every batch that can be queued or
// running at once, plus one.
func newPool(ctx context.Context, worker processor, size int) *pool {
	g, gctx := errgroup.WithContext(ctx)
	p := &pool{
		size:     size,
		worker:   worker,
		ctx:      gctx,
		group:    g,
		queue:    make(chan *pipeline.Batch, size),
		results:  make(chan batchResult, 2*size+1),
		finished: make(chan struct{}),
	}
	for range size {
		g.Go(p.work)
	}
	return p
}

func (p *pool) work() error {
	for {
		select {
		case <-p.ctx.Done():
			return nil
		case b, ok := <-p.queue:
			if !ok {
				return nil
			}

			res := p.runActive(b)

			select {
			case p.results <- res:
			case <-p.ctx.Done():
				return nil
			}
		}
	}
}

// runActive runs b on a pool worker. The active count is restored even if
// the worker goroutine exits without returning.
func (p *pool) runActive(b *pipeline.Batch) batchResult {
	p.active.Add(1)
	defer p.active.Add(-1)
	return p.run(b)
}

func (p *pool) run(b *pipeline.Batch) batchResult {
	start := time.Now()
	err := p.worker.Process(p.ctx, b)
	return batchResult{batch: b, err: err, duration: time.Since(start)}
}

// submit queues b. If the queue is full, b runs on the calling goroutine
// and its result is returned with inline set.
func (p *pool) submit(b *pipeline.Batch) (res batchResult, inline bool) {
	select {
	case p.queue <- b:
		return batchResult{}, false
	default:
		return p.run(b), true
	}
}

// busy reports whether every worker is running a batch.
func (p *pool) busy() bool {
	return int(p.active.Load()) >= p.size
}

// poll waits up to timeout for a completed batch.
func (p *pool) poll(timeout time.Duration) (batchResult, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-p.results:
		return res, true
	case <-timer.C:
		return batchResult{}, false
	}
}

// tryPoll returns a completed batch if one is ready.
func (p *pool) tryPoll() (batchResult, bool) {
	select {
	case res := <-p.results:
		return res, true
	default:
		return batchResult{}, false
	}
}

// shutdown stops accepting work. Remaining results are read with next.
func (p *pool) shutdown() {
	if p.closed {
		return
	}
	p.closed = true
	close(p.queue)
	go func() {
		_ = p.group.Wait()
		close(p.finished)
	}()
}

// next blocks until a result is available. It returns false once every
// worker has exited and no result is left.
func (p *pool) next() (batchResult, bool) {
	select {
	case res := <-p.results:
		return res, true
	case <-p.finished:
		select {
		case res := <-p.results:
			return res, true
		default:
			return batchResult{}, false
		}
	}
}

// stop cancels queued and running work and waits for the workers to exit.
// Results still buffered are discarded.
func (p *pool) stop(cancel context.CancelFunc) {
	cancel()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	_ = p.group.Wait()
}
