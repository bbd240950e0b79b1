package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"kaycrm/pkg/logger"
)

const SignatureHeader = "X-Signature-256"

// WebhookSignatureVerification checks an HMAC-SHA256 of the raw body on every
// request under pathPrefix. Other paths are not touched.
func WebhookSignatureVerification(secret, pathPrefix string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, pathPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			signature := extractSignature(r)
			if signature == "" {
				rejectUnsigned(w, log, r, "Missing "+SignatureHeader+" header")
				return
			}

			body, err := readAndRestoreBody(r)
			if err != nil {
				rejectUnsigned(w, log, r, "Failed to read request body")
				return
			}

			if !VerifySignature(body, signature, secret) {
				rejectUnsigned(w, log, r, "Invalid webhook signature")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Sign returns the header value a caller must send for body.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(body []byte, receivedSignature string, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expectedSignature := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expectedSignature), []byte(receivedSignature))
}

func extractSignature(r *http.Request) string {
	header := r.Header.Get(SignatureHeader)
	if header == "" {
		return ""
	}

	signature, found := strings.CutPrefix(header, "sha256=")
	if found {
		return signature
	}

	return header
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	return body, nil
}

func rejectUnsigned(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Webhook verification failed",
		"request_id", requestID(r),
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)

	writeJSONError(w, http.StatusUnauthorized, `{"error":"Unauthorized","code":"UNAUTHORIZED"}`)
}
