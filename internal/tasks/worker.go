package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MaxRetries bounds redelivery of a failing task before it is dropped
const MaxRetries = 3

// pollTimeout is how long a single Dequeue blocks before re-checking ctx
const pollTimeout = 5 * time.Second

// HandlerFunc processes one task payload
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// Source supplies tasks to a worker and takes failed ones back for
// redelivery. Queue is the redis-backed implementation.
type Source interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*Task, error)
	Requeue(ctx context.Context, task *Task) error
}

// Worker consumes tasks from a source and dispatches them to registered
// handlers by task name.
type Worker struct {
	source   Source
	handlers map[string]HandlerFunc
	logger   *zap.Logger
}

// NewWorker creates a worker on the given task source
func NewWorker(source Source, logger *zap.Logger) *Worker {
	return &Worker{
		source:   source,
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
	}
}

// Register binds a handler to a task name. Not safe to call once Run
// has started.
func (w *Worker) Register(name string, handler HandlerFunc) {
	w.handlers[name] = handler
}

// Run consumes tasks until the context is cancelled
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("task worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("task worker stopped")
			return
		default:
		}

		task, err := w.source.Dequeue(ctx, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("task worker stopped")
				return
			}
			w.logger.Error("failed to dequeue task", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}

		w.process(ctx, task)
	}
}

func (w *Worker) process(ctx context.Context, task *Task) {
	start := time.Now()

	handler, ok := w.handlers[task.Name]
	if !ok {
		w.logger.Warn("no handler registered for task",
			zap.String("task_id", task.ID),
			zap.String("task_name", task.Name),
		)
		return
	}

	if err := w.invoke(ctx, handler, task); err != nil {
		w.logger.Error("task failed",
			zap.String("task_id", task.ID),
			zap.String("task_name", task.Name),
			zap.Int("retries", task.Retries),
			zap.Error(err),
		)
		if task.Retries < MaxRetries {
			if reqErr := w.source.Requeue(ctx, task); reqErr != nil {
				w.logger.Error("failed to requeue task",
					zap.String("task_id", task.ID),
					zap.Error(reqErr),
				)
			}
		} else {
			w.logger.Error("task dropped after max retries",
				zap.String("task_id", task.ID),
				zap.String("task_name", task.Name),
			)
		}
		return
	}

	w.logger.Info("task completed",
		zap.String("task_id", task.ID),
		zap.String("task_name", task.Name),
		zap.Duration("duration", time.Since(start)),
	)
}

// invoke runs the handler, turning a panic into an error so one bad
// task cannot take down the consume loop.
func (w *Worker) invoke(ctx context.Context, handler HandlerFunc, task *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task handler panicked: %v", r)
		}
	}()
	return handler(ctx, task.Payload)
}
