// Package jobs defines the background jobs dispatched onto the queue.
package jobs

import (
	"context"

	"github.com/adforge/adforge/app/services"
	"github.com/adforge/adforge/pkg/queue"
)

// GenerateAdJobType is the registry name for GenerateAdJob.
const GenerateAdJobType = "*jobs.GenerateAdJob"

// GenerateAdJob carries the identity of one product whose ad image should be
// generated. The worker re-reads the product, so the job payload stays tiny
// and stale fields cannot leak into the result.
type GenerateAdJob struct {
	UID        string `json:"uid"`
	BusinessID string `json:"businessId"`
	ProductID  string `json:"productId"`

	generation *services.Generation
}

// Handle runs the generation pipeline. It always returns nil: a generation
// failure is recorded as the product's failed status, not retried blindly.
func (j *GenerateAdJob) Handle(ctx context.Context) error {
	j.generation.Run(ctx, j.UID, j.BusinessID, j.ProductID)
	return nil
}

// Register wires the job type into the queue manager with its dependencies
// injected through the factory.
func Register(m *queue.Manager, generation *services.Generation) {
	m.Register(GenerateAdJobType, func() queue.Job {
		return &GenerateAdJob{generation: generation}
	})
}
