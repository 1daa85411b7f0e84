package queue

import "context"

// MemoryDriver is a process-local channel-backed driver. Good for
// development and tests; jobs are lost on restart.
type MemoryDriver struct {
	jobs chan []byte
}

// NewMemoryDriver creates an in-memory driver with a bounded buffer.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{jobs: make(chan []byte, 1024)}
}

func (d *MemoryDriver) Push(payload []byte) error {
	d.jobs <- payload
	return nil
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-d.jobs:
		return payload, nil
	}
}
