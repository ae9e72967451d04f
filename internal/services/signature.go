package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// SignatureVerifier authenticates inbound callbacks. External requests carry
// an HMAC-SHA256 of the raw body; internal re-submissions from the queue
// worker carry a static token instead, because the body was already verified
// once before queueing.
type SignatureVerifier struct {
	secret        string
	internalToken string
}

// NewSignatureVerifier creates a verifier with the configured secrets.
func NewSignatureVerifier(secret, internalToken string) *SignatureVerifier {
	return &SignatureVerifier{secret: secret, internalToken: internalToken}
}

// Configured reports whether the external HMAC path can authorize requests.
// When false, unauthenticated external requests must be rejected.
func (v *SignatureVerifier) Configured() bool {
	return v.secret != ""
}

// VerifySignature checks an HMAC-SHA256 hex signature over the raw request
// body, accepting an optional "sha256=" prefix, in constant time.
func (v *SignatureVerifier) VerifySignature(rawBody []byte, signature string) bool {
	if v.secret == "" || signature == "" {
		return false
	}
	signature = strings.TrimSpace(signature)
	if after, ok := strings.CutPrefix(signature, "sha256="); ok {
		signature = after
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyInternalToken checks the worker re-submission token in constant time.
func (v *SignatureVerifier) VerifyInternalToken(token string) bool {
	if v.internalToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(v.internalToken), []byte(token)) == 1
}
