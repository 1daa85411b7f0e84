// Package queue runs background jobs, used for image-generation work that is
// too slow for the request path.
//
// Jobs are serialised as JSON envelopes so drivers can be swapped between
// the in-memory channel (dev, tests) and Redis (production, survives
// restarts and feeds separate worker processes).
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Job is the interface every queued job must satisfy.
type Job interface {
	// Handle executes the job. Return a non-nil error to signal failure.
	Handle(ctx context.Context) error
}

// FailedJob records a job that exhausted its retries.
type FailedJob struct {
	Type     string
	Payload  []byte
	Err      error
	FailedAt time.Time
	Attempts int
}

// Driver is the queue storage backend.
type Driver interface {
	Push(payload []byte) error
	// Pop blocks until a job is available or the driver's poll interval
	// elapses; (nil, nil) means no job was ready.
	Pop(ctx context.Context) ([]byte, error)
}

type envelope struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Manager dispatches jobs onto a driver and runs the workers that drain it.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job // type name → constructor
	failed   []FailedJob
	maxRetry int
	log      *slog.Logger
	wg       sync.WaitGroup
}

// NewManager creates a queue manager on the given driver.
func NewManager(driver Driver, log *slog.Logger) *Manager {
	return &Manager{
		driver:   driver,
		registry: map[string]func() Job{},
		maxRetry: 3,
		log:      log,
	}
}

// SetMaxRetry sets how many times a failing job is retried.
func (m *Manager) SetMaxRetry(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxRetry = n
}

// Register makes a job type available for deserialisation by name.
// Call once at boot for every job type.
func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry[name] = factory
}

// Dispatch pushes job onto the queue.
func (m *Manager) Dispatch(job Job) error {
	typeName := fmt.Sprintf("%T", job)

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", typeName, err)
	}

	env, err := json.Marshal(envelope{Type: typeName, Payload: payload})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	return m.driver.Push(env)
}

// StartWorkers launches n workers that process jobs until ctx is cancelled.
func (m *Manager) StartWorkers(ctx context.Context, n int) {
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		m.wg.Add(1)
		go m.work(ctx)
	}
	m.log.Info("queue: workers started", "count", n)
}

// Wait blocks until every worker has exited (after ctx cancellation).
func (m *Manager) Wait() { m.wg.Wait() }

// Failed returns a snapshot of the jobs that exhausted their retries.
func (m *Manager) Failed() []FailedJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FailedJob, len(m.failed))
	copy(out, m.failed)
	return out
}

func (m *Manager) work(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		raw, err := m.driver.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.log.Error("queue: pop", "error", err)
			continue
		}
		if raw == nil {
			continue // poll timeout, no job ready
		}

		m.process(ctx, raw)
	}
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		m.log.Error("queue: bad envelope, dropping", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	maxRetry := m.maxRetry
	m.mu.RUnlock()
	if !ok {
		m.log.Error("queue: unknown job type, dropping", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		m.log.Error("queue: unmarshal job, dropping", "type", env.Type, "error", err)
		return
	}

	err := job.Handle(ctx)
	if err == nil {
		return
	}

	env.Attempts++
	m.log.Warn("queue: job failed", "type", env.Type, "attempts", env.Attempts, "error", err)

	if env.Attempts < maxRetry {
		if retry, marshalErr := json.Marshal(env); marshalErr == nil {
			if pushErr := m.driver.Push(retry); pushErr == nil {
				return
			}
		}
	}

	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		Type:     env.Type,
		Payload:  env.Payload,
		Err:      err,
		FailedAt: time.Now(),
		Attempts: env.Attempts,
	})
	m.mu.Unlock()
}
