package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"payments-api/pkg/logging"

	"github.com/redis/go-redis/v9"
)

const paymentQueueKey = "payments:queue"

// BuildPaymentJobID derives the stable job id for a callback reference.
// Re-delivery of the same webhook produces the same id, so the queue
// collapses duplicates before they reach the processor.
func BuildPaymentJobID(reference string) string {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return ""
	}
	return "paycb:" + reference
}

// Dispatcher hands a verified-but-unprocessed callback payload to whatever
// executes it. Enqueue returns false when the caller must process inline.
type Dispatcher interface {
	Enqueue(ctx context.Context, reference string, payload []byte) bool
}

// InlineDispatcher is the degraded mode used when the queue is disabled:
// every payload is processed synchronously by the caller.
type InlineDispatcher struct{}

// NewInlineDispatcher creates an InlineDispatcher.
func NewInlineDispatcher() *InlineDispatcher {
	return &InlineDispatcher{}
}

// Enqueue never enqueues.
func (d *InlineDispatcher) Enqueue(ctx context.Context, reference string, payload []byte) bool {
	return false
}

// queuedJob is the envelope stored under the job id key.
type queuedJob struct {
	ID        string          `json:"id"`
	Reference string          `json:"reference"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
}

// QueueDispatcher pushes callbacks onto a Redis-backed job queue. The job
// key doubles as the dedup record and is kept for a result-retention window
// after completion. Any Redis failure degrades to inline processing; the
// queue is a resilience optimization, not a correctness dependency.
type QueueDispatcher struct {
	client     *redis.Client
	keepResult time.Duration
}

// NewQueueDispatcher creates a dispatcher over a connected Redis client.
func NewQueueDispatcher(client *redis.Client, keepResultSeconds int) *QueueDispatcher {
	return &QueueDispatcher{
		client:     client,
		keepResult: time.Duration(keepResultSeconds) * time.Second,
	}
}

// Enqueue stores the job envelope under its stable id and pushes the id onto
// the work list. A duplicate id means the same webhook is already queued or
// recently finished; that counts as enqueued so the delivery is acked.
func (d *QueueDispatcher) Enqueue(ctx context.Context, reference string, payload []byte) bool {
	jobID := BuildPaymentJobID(reference)
	if jobID == "" {
		return false
	}

	job := queuedJob{ID: jobID, Reference: reference, Payload: payload}
	data, err := json.Marshal(job)
	if err != nil {
		logging.Errorf("Failed to marshal payment job %s: %v", jobID, err)
		return false
	}

	created, err := d.client.SetNX(ctx, jobID, data, d.keepResult).Result()
	if err != nil {
		logging.Warnf("Payment queue unavailable, processing inline: %v", err)
		return false
	}
	if !created {
		logging.Infof("Payment callback already queued: %s", jobID)
		return true
	}

	if err := d.client.LPush(ctx, paymentQueueKey, jobID).Err(); err != nil {
		logging.Warnf("Failed to enqueue payment job %s, processing inline: %v", jobID, err)
		d.client.Del(ctx, jobID)
		return false
	}

	logging.Infof("Queued payment callback %s", jobID)
	return true
}

// requeue puts a job back on the list with its attempt count bumped.
func (d *QueueDispatcher) requeue(ctx context.Context, job *queuedJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := d.client.Set(ctx, job.ID, data, d.keepResult).Err(); err != nil {
		return err
	}
	return d.client.LPush(ctx, paymentQueueKey, job.ID).Err()
}
