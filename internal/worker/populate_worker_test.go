package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

type countingPopulator struct {
	mu    sync.Mutex
	calls int
	opts  service.PopulateOptions
	err   error
}

func (p *countingPopulator) Populate(_ context.Context, opts service.PopulateOptions) (*service.PopulateReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.opts = opts
	if p.err != nil {
		return nil, p.err
	}
	return &service.PopulateReport{RunID: "r", Games: &service.UpsertReport{}}, nil
}

func (p *countingPopulator) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestPopulateWorkerRunsUntilCancelled(t *testing.T) {
	p := &countingPopulator{}
	opts := service.PopulateOptions{Take: 2}
	w := NewPopulateWorker(p, opts, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for p.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d runs before deadline", p.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
	if p.opts != opts {
		t.Errorf("options = %+v", p.opts)
	}
}

func TestPopulateWorkerSurvivesLockConflict(t *testing.T) {
	p := &countingPopulator{err: utils.ErrRunInProgress}
	w := NewPopulateWorker(p, service.PopulateOptions{}, time.Hour)

	w.run(context.Background())
	w.run(context.Background())
	if p.count() != 2 {
		t.Fatalf("calls = %d", p.count())
	}
}
