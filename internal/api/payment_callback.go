package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"payments-api/internal/middleware"
	"payments-api/internal/models"
	"payments-api/internal/response"
	"payments-api/internal/services"
	"payments-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// CallbackProcessor is the processing entrypoint shared by the inline and
// queued paths.
type CallbackProcessor interface {
	Process(ctx context.Context, cb *models.PaymentCallback) (*services.ProcessResult, error)
}

// PaymentCallbackHandler handles the payment gateway's confirmation webhook.
type PaymentCallbackHandler struct {
	processor  CallbackProcessor
	dispatcher services.Dispatcher
}

// NewPaymentCallbackHandler creates the handler.
func NewPaymentCallbackHandler(processor CallbackProcessor, dispatcher services.Dispatcher) *PaymentCallbackHandler {
	return &PaymentCallbackHandler{processor: processor, dispatcher: dispatcher}
}

// HandleCallback processes an authenticated payment callback. External
// deliveries are queued when possible and acknowledged immediately; internal
// re-submissions from the worker, and any delivery while the queue is down,
// are processed inline. Both paths run the same processor.
func (h *PaymentCallbackHandler) HandleCallback(c *gin.Context) {
	rawBody := c.MustGet(middleware.ContextRawBody).([]byte)
	internalMode := c.GetBool(middleware.ContextInternalMode)

	var callback models.PaymentCallback
	if err := json.Unmarshal(rawBody, &callback); err != nil {
		logging.Errorf("Invalid JSON in callback payload: %v", err)
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	reference := callback.Reference()
	if reference == "" {
		logging.Errorf("Missing payment reference in callback payload.")
		response.ErrorJSON(c, http.StatusBadRequest, "Missing payment reference")
		return
	}

	if !internalMode && h.dispatcher.Enqueue(c.Request.Context(), reference, rawBody) {
		logging.Infof("Queued payment callback for background processing.")
		response.SuccessJSON(c, "Callback queued")
		return
	}

	result, err := h.processor.Process(c.Request.Context(), &callback)
	if err != nil {
		status, message := classify(err)
		response.ErrorJSON(c, status, message)
		return
	}

	if result.Outcome == services.OutcomePaymentFailed {
		response.JSON(c, http.StatusOK, response.Failed(result.Message))
		return
	}
	response.SuccessJSON(c, result.Message)
}

// classify maps a processor error onto the retry contract: 4xx is permanent
// and never retried by the queue, 5xx is transient and retryable.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrMalformedReference):
		return http.StatusBadRequest, "Invalid account reference"
	case errors.Is(err, services.ErrInvalidAmount):
		return http.StatusBadRequest, "Invalid amount"
	case errors.Is(err, services.ErrAmountMismatch):
		return http.StatusBadRequest, "Invalid payment amount"
	case errors.Is(err, services.ErrProviderNotFound):
		return http.StatusNotFound, "Provider not found"
	case errors.Is(err, services.ErrProviderNotVerified):
		return http.StatusForbidden, "Provider not verified"
	case errors.Is(err, services.ErrBoostNotEligible):
		return http.StatusForbidden, "Boost requires an active subscription"
	default:
		return http.StatusInternalServerError, "Internal callback error"
	}
}
