package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/linkja/linkja-hashing-sub000/internal/pipeline"
)

// gatedProcessor blocks every batch except batch 3 until release is
// closed, and records the IDs it ran.
type gatedProcessor struct {
	release chan struct{}

	mu  sync.Mutex
	ids []int
}

func (g *gatedProcessor) Process(ctx context.Context, b *pipeline.Batch) error {
	if b.ID != 3 {
		select {
		case <-g.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	g.mu.Lock()
	g.ids = append(g.ids, b.ID)
	g.mu.Unlock()
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPoolCallerRuns(t *testing.T) {
	t.Parallel()

	proc := &gatedProcessor{release: make(chan struct{})}
	p := newPool(context.Background(), proc, 1)

	if _, inline := p.submit(&pipeline.Batch{ID: 1}); inline {
		t.Fatal("first batch should be queued")
	}
	waitFor(t, p.busy)

	if _, inline := p.submit(&pipeline.Batch{ID: 2}); inline {
		t.Fatal("second batch should fill the queue")
	}

	res, inline := p.submit(&pipeline.Batch{ID: 3})
	if !inline {
		t.Fatal("third batch should run on the caller")
	}
	if res.batch.ID != 3 || res.err != nil {
		t.Errorf("unexpected inline result %+v", res)
	}

	close(proc.release)
	p.shutdown()

	var got []int
	for {
		res, ok := p.next()
		if !ok {
			break
		}
		got = append(got, res.batch.ID)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 pooled results, got %v", got)
	}
}

func TestPoolStop(t *testing.T) {
	t.Parallel()

	proc := &gatedProcessor{release: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	p := newPool(ctx, proc, 2)

	p.submit(&pipeline.Batch{ID: 1})
	p.submit(&pipeline.Batch{ID: 2})

	done := make(chan struct{})
	go func() {
		p.stop(cancel)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not return")
	}
}

func TestPoolPoll(t *testing.T) {
	t.Parallel()

	proc := &gatedProcessor{release: make(chan struct{})}
	close(proc.release)
	p := newPool(context.Background(), proc, 1)

	if _, ok := p.poll(time.Millisecond); ok {
		t.Error("expected no result before any submission")
	}

	p.submit(&pipeline.Batch{ID: 1})
	res, ok := p.poll(5 * time.Second)
	if !ok || res.batch.ID != 1 {
		t.Errorf("expected batch 1, got %+v, %v", res, ok)
	}

	p.shutdown()
	if _, ok := p.next(); ok {
		t.Error("expected no more results")
	}
}
