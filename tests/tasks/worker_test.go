package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/electrade/network-api/internal/tasks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSource hands out a fixed list of tasks and records requeues
type fakeSource struct {
	mu       sync.Mutex
	pending  []*tasks.Task
	requeued []*tasks.Task
}

func (f *fakeSource) Dequeue(ctx context.Context, _ time.Duration) (*tasks.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		time.Sleep(10 * time.Millisecond)
		return nil, nil
	}
	task := f.pending[0]
	f.pending = f.pending[1:]
	return task, nil
}

func (f *fakeSource) Requeue(_ context.Context, task *tasks.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requeued = append(f.requeued, task)
	return nil
}

func (f *fakeSource) requeuedNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.requeued))
	for _, task := range f.requeued {
		names = append(names, task.Name)
	}
	return names
}

func newTask(name string) *tasks.Task {
	return &tasks.Task{
		ID:      uuid.NewString(),
		Name:    name,
		Payload: json.RawMessage(`{}`),
	}
}

func runWorker(t *testing.T, worker *tasks.Worker) (cancel func()) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()
	return func() {
		cancelCtx()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop after cancel")
		}
	}
}

func TestWorker_PanickingHandlerDoesNotKillLoop(t *testing.T) {
	source := &fakeSource{pending: []*tasks.Task{newTask("explode"), newTask("settle")}}
	worker := tasks.NewWorker(source, zap.NewNop())

	settled := make(chan struct{})
	worker.Register("explode", func(context.Context, json.RawMessage) error {
		panic("boom")
	})
	worker.Register("settle", func(context.Context, json.RawMessage) error {
		close(settled)
		return nil
	})

	stop := runWorker(t, worker)
	defer stop()

	select {
	case <-settled:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never reached the task after the panicking one")
	}

	// The panicking task went back for redelivery like any failure
	assert.Equal(t, []string{"explode"}, source.requeuedNames())
}

func TestWorker_FailedTaskIsRequeuedUntilMaxRetries(t *testing.T) {
	exhausted := newTask("flaky")
	exhausted.Retries = tasks.MaxRetries
	source := &fakeSource{pending: []*tasks.Task{newTask("flaky"), exhausted, newTask("settle")}}
	worker := tasks.NewWorker(source, zap.NewNop())

	settled := make(chan struct{})
	worker.Register("flaky", func(context.Context, json.RawMessage) error {
		return errors.New("transient failure")
	})
	worker.Register("settle", func(context.Context, json.RawMessage) error {
		close(settled)
		return nil
	})

	stop := runWorker(t, worker)
	defer stop()

	select {
	case <-settled:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not drain the queue")
	}

	// The fresh failure is requeued; the exhausted one is dropped
	source.mu.Lock()
	defer source.mu.Unlock()
	require.Len(t, source.requeued, 1)
	assert.Equal(t, 0, source.requeued[0].Retries)
}

func TestWorker_UnknownTaskIsSkipped(t *testing.T) {
	source := &fakeSource{pending: []*tasks.Task{newTask("nobody-home"), newTask("settle")}}
	worker := tasks.NewWorker(source, zap.NewNop())

	settled := make(chan struct{})
	worker.Register("settle", func(context.Context, json.RawMessage) error {
		close(settled)
		return nil
	})

	stop := runWorker(t, worker)
	defer stop()

	select {
	case <-settled:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not drain the queue")
	}

	assert.Empty(t, source.requeuedNames())
}
