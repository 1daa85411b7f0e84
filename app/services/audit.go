package services

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/adforge/adforge/app/models"
	"github.com/adforge/adforge/pkg/reqid"
)

const (
	auditQueueSize  = 4096
	auditBatchSize  = 50
	auditDrainTick  = 2 * time.Second
	auditCollection = "lifecycle_audit"
)

// TransitionRecord is one status transition as stored in the audit
// collection.
type TransitionRecord struct {
	ProductID  string        `bson:"productId"`
	BusinessID string        `bson:"businessId"`
	UID        string        `bson:"uid"`
	From       models.Status `bson:"from"`
	To         models.Status `bson:"to"`
	RequestID  string        `bson:"requestId,omitempty"`
	At         time.Time     `bson:"at"`
}

// AuditTrail asynchronously stores every lifecycle transition in MongoDB,
// with zero impact on the mutation path:
//
//   - Records are enqueued into a buffered channel (non-blocking).
//   - One background goroutine drains the channel and performs InsertMany
//     in batches.
//   - A full channel drops the record; auditing must never block mutations.
//   - Close() flushes the remaining batch.
//
// A nil *AuditTrail is valid and records nothing.
type AuditTrail struct {
	col   *mongo.Collection
	queue chan TransitionRecord
	done  chan struct{}
	log   *slog.Logger
}

// NewAuditTrail starts the drain goroutine. Call Close() at shutdown.
func NewAuditTrail(db *mongo.Database, log *slog.Logger) *AuditTrail {
	a := &AuditTrail{
		col:   db.Collection(auditCollection),
		queue: make(chan TransitionRecord, auditQueueSize),
		done:  make(chan struct{}),
		log:   log,
	}
	go a.drain()
	return a
}

// Record enqueues one transition. Never blocks; drops when the queue is full.
func (a *AuditTrail) Record(ctx context.Context, p *models.Product, to models.Status) {
	if a == nil {
		return
	}
	rec := TransitionRecord{
		ProductID:  p.ID,
		BusinessID: p.BusinessID,
		UID:        p.UID,
		From:       p.Status,
		To:         to,
		RequestID:  reqid.FromCtx(ctx),
		At:         time.Now().UTC(),
	}
	select {
	case a.queue <- rec:
	default:
		// Queue full — drop rather than slow the mutation.
	}
}

// Close flushes pending records and stops the drain goroutine.
func (a *AuditTrail) Close() {
	if a == nil {
		return
	}
	close(a.queue)
	<-a.done
}

func (a *AuditTrail) drain() {
	defer close(a.done)

	batch := make([]interface{}, 0, auditBatchSize)
	ticker := time.NewTicker(auditDrainTick)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := a.col.InsertMany(ctx, batch); err != nil {
			a.log.Warn("audit: insert batch failed", "count", len(batch), "error", err)
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case rec, ok := <-a.queue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, rec)
			if len(batch) >= auditBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
