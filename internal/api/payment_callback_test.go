package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"payments-api/internal/models"
	"payments-api/internal/services"

	"github.com/gin-gonic/gin"
)

type mockProcessor struct {
	ProcessFunc func(ctx context.Context, cb *models.PaymentCallback) (*services.ProcessResult, error)
	calls       int
}

func (m *mockProcessor) Process(ctx context.Context, cb *models.PaymentCallback) (*services.ProcessResult, error) {
	m.calls++
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, cb)
	}
	return &services.ProcessResult{Outcome: services.OutcomeSubscriptionActivated, Message: "Subscription activated"}, nil
}

type mockDispatcher struct {
	enqueued bool
	payloads [][]byte
	refs     []string
}

func (m *mockDispatcher) Enqueue(ctx context.Context, reference string, payload []byte) bool {
	m.refs = append(m.refs, reference)
	m.payloads = append(m.payloads, payload)
	return m.enqueued
}

const (
	testSecret        = "callback-secret"
	testInternalToken = "internal-token"
)

func newTestRouter(processor CallbackProcessor, dispatcher services.Dispatcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	verifier := services.NewSignatureVerifier(testSecret, testInternalToken)
	SetupRoutes(r, NewPaymentCallbackHandler(processor, dispatcher), verifier)
	return r
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postCallback(r *gin.Engine, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body.Status, body.Message
}

func TestCallbackRejectsMissingSignature(t *testing.T) {
	processor := &mockProcessor{}
	r := newTestRouter(processor, &mockDispatcher{})

	w := postCallback(r, []byte(`{"status":"success"}`), nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if processor.calls != 0 {
		t.Error("unauthenticated request must never reach the processor")
	}
}

func TestCallbackRejectsTamperedBody(t *testing.T) {
	processor := &mockProcessor{}
	r := newTestRouter(processor, &mockDispatcher{})

	body := []byte(`{"status":"success","Amount":600}`)
	tampered := []byte(`{"status":"success","Amount":601}`)
	w := postCallback(r, tampered, map[string]string{"X-MegaPay-Signature": sign(testSecret, body)})
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if processor.calls != 0 {
		t.Error("tampered request must never reach the processor")
	}
}

func TestCallbackFailsClosedWithoutSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	processor := &mockProcessor{}
	SetupRoutes(r, NewPaymentCallbackHandler(processor, &mockDispatcher{}),
		services.NewSignatureVerifier("", ""))

	w := postCallback(r, []byte(`{"status":"success"}`), nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if processor.calls != 0 {
		t.Error("unconfigured endpoint must never reach the processor")
	}
}

func TestCallbackAcceptsSha256PrefixedSignature(t *testing.T) {
	r := newTestRouter(&mockProcessor{}, &mockDispatcher{})

	body := []byte(`{"status":"success","MpesaReceiptNumber":"RX1","Amount":600,"AccountReference":"BB_5001_7_n"}`)
	w := postCallback(r, body, map[string]string{"X-Signature": "sha256=" + sign(testSecret, body)})
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
}

func TestCallbackQueuesExternalDelivery(t *testing.T) {
	processor := &mockProcessor{}
	dispatcher := &mockDispatcher{enqueued: true}
	r := newTestRouter(processor, dispatcher)

	body := []byte(`{"status":"success","MpesaReceiptNumber":"RX1","Amount":600,"AccountReference":"BB_5001_7_n"}`)
	w := postCallback(r, body, map[string]string{"X-MegaPay-Signature": sign(testSecret, body)})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	status, message := decodeResponse(t, w)
	if status != "success" || message != "Callback queued" {
		t.Errorf("response = (%q, %q), want queued ack", status, message)
	}
	if processor.calls != 0 {
		t.Error("queued delivery must not be processed inline")
	}
	if len(dispatcher.refs) != 1 || dispatcher.refs[0] != "RX1" {
		t.Errorf("dispatcher refs = %v, want [RX1]", dispatcher.refs)
	}
	if string(dispatcher.payloads[0]) != string(body) {
		t.Error("dispatcher must receive the raw verified body")
	}
}

func TestCallbackProcessesInlineWhenQueueUnavailable(t *testing.T) {
	processor := &mockProcessor{}
	r := newTestRouter(processor, &mockDispatcher{enqueued: false})

	body := []byte(`{"status":"success","MpesaReceiptNumber":"RX1","Amount":600,"AccountReference":"BB_5001_7_n"}`)
	w := postCallback(r, body, map[string]string{"X-MegaPay-Signature": sign(testSecret, body)})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	status, message := decodeResponse(t, w)
	if status != "success" || message != "Subscription activated" {
		t.Errorf("response = (%q, %q), want inline activation", status, message)
	}
	if processor.calls != 1 {
		t.Errorf("processor calls = %d, want 1", processor.calls)
	}
}

func TestCallbackInternalTokenBypassesQueue(t *testing.T) {
	processor := &mockProcessor{}
	dispatcher := &mockDispatcher{enqueued: true}
	r := newTestRouter(processor, dispatcher)

	body := []byte(`{"status":"success","MpesaReceiptNumber":"RX1","Amount":600,"AccountReference":"BB_5001_7_n"}`)
	w := postCallback(r, body, map[string]string{"X-Internal-Task-Token": testInternalToken})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	if processor.calls != 1 {
		t.Errorf("processor calls = %d, want inline processing on the internal path", processor.calls)
	}
	if len(dispatcher.refs) != 0 {
		t.Error("internal re-submission must never be re-queued")
	}
}

func TestCallbackRejectsWrongInternalToken(t *testing.T) {
	processor := &mockProcessor{}
	r := newTestRouter(processor, &mockDispatcher{})

	w := postCallback(r, []byte(`{"status":"success"}`), map[string]string{"X-Internal-Task-Token": "wrong"})
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if processor.calls != 0 {
		t.Error("wrong internal token must never reach the processor")
	}
}

func TestCallbackRejectsInvalidJSON(t *testing.T) {
	r := newTestRouter(&mockProcessor{}, &mockDispatcher{})

	body := []byte(`{not json`)
	w := postCallback(r, body, map[string]string{"X-MegaPay-Signature": sign(testSecret, body)})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCallbackRejectsMissingReference(t *testing.T) {
	r := newTestRouter(&mockProcessor{}, &mockDispatcher{})

	body := []byte(`{"status":"success","Amount":600}`)
	w := postCallback(r, body, map[string]string{"X-MegaPay-Signature": sign(testSecret, body)})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	_, message := decodeResponse(t, w)
	if message != "Missing payment reference" {
		t.Errorf("message = %q, want missing-reference error", message)
	}
}

func TestCallbackErrorClassification(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"malformed reference", services.ErrMalformedReference, http.StatusBadRequest},
		{"invalid amount", services.ErrInvalidAmount, http.StatusBadRequest},
		{"amount mismatch", services.ErrAmountMismatch, http.StatusBadRequest},
		{"provider not found", services.ErrProviderNotFound, http.StatusNotFound},
		{"provider not verified", services.ErrProviderNotVerified, http.StatusForbidden},
		{"boost not eligible", services.ErrBoostNotEligible, http.StatusForbidden},
		{"persistence", services.ErrPersistence, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			processor := &mockProcessor{
				ProcessFunc: func(context.Context, *models.PaymentCallback) (*services.ProcessResult, error) {
					return nil, tc.err
				},
			}
			r := newTestRouter(processor, &mockDispatcher{})

			body := []byte(`{"status":"success","MpesaReceiptNumber":"RX1","Amount":600,"AccountReference":"BB_5001_7_n"}`)
			w := postCallback(r, body, map[string]string{"X-MegaPay-Signature": sign(testSecret, body)})
			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			status, _ := decodeResponse(t, w)
			if status != "error" {
				t.Errorf("response status = %q, want error", status)
			}
		})
	}
}

func TestCallbackFailedPaymentAcknowledgedWith200(t *testing.T) {
	processor := &mockProcessor{
		ProcessFunc: func(context.Context, *models.PaymentCallback) (*services.ProcessResult, error) {
			return &services.ProcessResult{Outcome: services.OutcomePaymentFailed, Message: "Payment failed"}, nil
		},
	}
	r := newTestRouter(processor, &mockDispatcher{})

	body := []byte(`{"status":"cancelled","MpesaReceiptNumber":"RX1","Amount":600,"AccountReference":"BB_5001_7_n"}`)
	w := postCallback(r, body, map[string]string{"X-MegaPay-Signature": sign(testSecret, body)})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, failed payments are resolved and must not be retried", w.Code)
	}
	status, _ := decodeResponse(t, w)
	if status != "failed" {
		t.Errorf("response status = %q, want failed", status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(&mockProcessor{}, &mockDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
