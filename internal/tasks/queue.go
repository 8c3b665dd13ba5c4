package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Task is the queue envelope. Payload stays opaque to the queue; the
// registered handler decodes it.
type Task struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
	Retries    int             `json:"retries"`
}

// Queue is a redis-list backed task queue. Producers LPUSH, the worker
// BRPOPs, so delivery order is FIFO and at-least-once.
type Queue struct {
	client *redis.Client
	key    string
}

// NewQueue creates a queue on the given redis list key
func NewQueue(client *redis.Client, key string) *Queue {
	return &Queue{client: client, key: key}
}

// Enqueue serializes the payload and pushes a task, returning its id
func (q *Queue) Enqueue(ctx context.Context, name string, payload interface{}) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := Task{
		ID:         uuid.NewString(),
		Name:       name,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}

	encoded, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := q.client.LPush(ctx, q.key, encoded).Err(); err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	return task.ID, nil
}

// Requeue pushes a failed task back with its retry counter bumped
func (q *Queue) Requeue(ctx context.Context, task *Task) error {
	task.Retries++
	encoded, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, encoded).Err()
}

// Dequeue blocks up to timeout for the next task. A nil task with nil
// error means the wait timed out.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	// BRPop returns [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply length %d", len(res))
	}

	var task Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, fmt.Errorf("failed to decode task: %w", err)
	}
	return &task, nil
}

// Len returns the number of pending tasks
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
