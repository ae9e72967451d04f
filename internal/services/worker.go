package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"payments-api/pkg/logging"

	"github.com/redis/go-redis/v9"
)

// PaymentWorker drains the payment queue and re-submits each payload to the
// callback endpoint over the trusted internal channel, so queued and inline
// deliveries execute the exact same validation and mutation code.
type PaymentWorker struct {
	dispatcher    *QueueDispatcher
	client        *redis.Client
	httpClient    *http.Client
	callbackURL   string
	internalToken string
	maxAttempts   int
	alerter       Alerter
}

// WorkerConfig holds the worker's knobs.
type WorkerConfig struct {
	InternalBaseURL   string
	InternalToken     string
	MaxAttempts       int
	JobTimeoutSeconds int
}

// NewPaymentWorker creates a worker. The internal token is required: without
// it queued payloads could never pass the callback's auth gate.
func NewPaymentWorker(dispatcher *QueueDispatcher, alerter Alerter, cfg WorkerConfig) (*PaymentWorker, error) {
	if cfg.InternalToken == "" {
		return nil, errors.New("internal task token is required for queued payment processing")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.JobTimeoutSeconds <= 0 {
		cfg.JobTimeoutSeconds = 120
	}

	return &PaymentWorker{
		dispatcher:    dispatcher,
		client:        dispatcher.client,
		httpClient:    &http.Client{Timeout: time.Duration(cfg.JobTimeoutSeconds) * time.Second},
		callbackURL:   strings.TrimRight(cfg.InternalBaseURL, "/") + "/payments/callback",
		internalToken: cfg.InternalToken,
		maxAttempts:   cfg.MaxAttempts,
		alerter:       alerter,
	}, nil
}

// Run consumes jobs until the context is cancelled.
func (w *PaymentWorker) Run(ctx context.Context) {
	logging.Infof("Payment worker started")
	for {
		if err := ctx.Err(); err != nil {
			logging.Infof("Payment worker stopped")
			return
		}

		result, err := w.client.BRPop(ctx, 5*time.Second, paymentQueueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			logging.Warnf("Payment worker poll failed: %v", err)
			time.Sleep(2 * time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		w.handleJob(ctx, result[1])
	}
}

// handleJob loads the job envelope and submits it once, classifying the
// outcome into done, retry, or give-up.
func (w *PaymentWorker) handleJob(ctx context.Context, jobID string) {
	data, err := w.client.Get(ctx, jobID).Result()
	if err != nil {
		// Envelope expired or lost; nothing to process.
		logging.Warnf("Payment job %s has no envelope: %v", jobID, err)
		return
	}

	var job queuedJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		logging.Errorf("Payment job %s has a corrupt envelope: %v", jobID, err)
		return
	}

	status, err := w.submit(ctx, job.Payload)
	if err == nil && !retryableStatus(status) {
		if status >= 400 {
			// Permanent rejection: the processor refused the payload.
			// Not retried; surfaced for investigation.
			logging.Warnf("Payment job %s permanently rejected with status %d", jobID, status)
			w.alerter.SendOperatorAlert(ctx, fmt.Sprintf(
				"Queued payment callback %s was rejected with status %d.", jobID, status))
		} else {
			logging.Infof("Processed queued payment callback %s with status %d", jobID, status)
		}
		return
	}

	job.Attempts++
	if job.Attempts >= w.maxAttempts {
		logging.Errorf("Payment job %s abandoned after %d attempts (status %d, err %v)", jobID, job.Attempts, status, err)
		w.alerter.SendOperatorAlert(ctx, fmt.Sprintf(
			"Payment callback %s abandoned after %d attempts.", jobID, job.Attempts))
		return
	}

	time.Sleep(backoffDelay(job.Attempts))
	if err := w.dispatcher.requeue(ctx, &job); err != nil {
		logging.Errorf("Failed to requeue payment job %s: %v", jobID, err)
		w.alerter.SendOperatorAlert(ctx, fmt.Sprintf(
			"Payment callback %s could not be requeued and was dropped.", jobID))
	}
}

// submit re-posts the original raw payload to the callback endpoint with the
// internal token attached.
func (w *PaymentWorker) submit(ctx context.Context, payload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.callbackURL, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Task-Token", w.internalToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

// retryableStatus reports whether a response status is a transient,
// server-side fault. Client-side rejections are permanent.
func retryableStatus(status int) bool {
	return status >= 500
}

// backoffDelay spaces retries out without unbounded growth.
func backoffDelay(attempt int) time.Duration {
	delay := time.Duration(attempt) * 2 * time.Second
	if delay > 30*time.Second {
		delay = 30 * time.Second
	}
	return delay
}
