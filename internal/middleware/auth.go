package middleware

import (
	"net/http"

	"payments-api/internal/response"
	"payments-api/internal/services"
	"payments-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// Context keys populated by CallbackAuthMiddleware.
const (
	ContextRawBody      = "raw_body"
	ContextInternalMode = "internal_mode"
)

// CallbackAuthMiddleware authenticates payment callbacks before any parsing
// happens. Exactly one of two paths may authorize a request: the gateway's
// HMAC signature over the raw body, or the internal task token attached by
// the queue worker. With neither secret configured, external requests are
// rejected: the endpoint fails closed, never open.
func CallbackAuthMiddleware(verifier *services.SignatureVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		internalMode := verifier.VerifyInternalToken(c.GetHeader("X-Internal-Task-Token"))

		if !internalMode && !verifier.Configured() {
			logging.Errorf("MEGAPAY_CALLBACK_SECRET not configured. Rejecting callback.")
			response.ErrorJSON(c, http.StatusServiceUnavailable, "Callback secret not configured")
			c.Abort()
			return
		}

		rawBody, err := c.GetRawData()
		if err != nil {
			logging.Errorf("Failed to read callback body: %v", err)
			response.ErrorJSON(c, http.StatusBadRequest, "Failed to read request body")
			c.Abort()
			return
		}

		if !internalMode {
			signature := c.GetHeader("X-MegaPay-Signature")
			if signature == "" {
				signature = c.GetHeader("X-Signature")
			}
			if !verifier.VerifySignature(rawBody, signature) {
				logging.Warnf("Invalid or missing callback signature.")
				response.ErrorJSON(c, http.StatusForbidden, "Invalid signature")
				c.Abort()
				return
			}
		}

		c.Set(ContextRawBody, rawBody)
		c.Set(ContextInternalMode, internalMode)
		c.Next()
	}
}
