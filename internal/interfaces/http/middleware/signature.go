package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/interfaces/http/response"
)

// SignatureHeader carries the provider's HMAC over the raw request body.
const SignatureHeader = "X-Webhook-Signature"

// SignatureMiddleware verifies the webhook HMAC-SHA256 signature before any
// handler runs. The body is restored for downstream binding. A missing or
// mismatched signature is rejected without touching any state.
func SignatureMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.AbortError(c, domainerrors.BadRequest("unreadable request body"))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if !VerifySignature(body, c.GetHeader(SignatureHeader), secret) {
			response.AbortError(c, domainerrors.FromDomain(domainerrors.ErrInvalidSignature))
			return
		}

		c.Next()
	}
}

// VerifySignature compares an HMAC-SHA256 hex signature against the payload
// in constant time.
func VerifySignature(payload []byte, signatureHeader, secret string) bool {
	sig := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(signatureHeader), "sha256="))
	if sig == "" || secret == "" {
		return false
	}

	decoded, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decoded)
}
