package bpjs

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/bpjs/bridge/internal/config"
)

// ContentTypeJSON is the default content type for remote calls.
const ContentTypeJSON = "application/json"

// ContentTypeForm is required by certain vclaim submission endpoints. The
// remote authority expects this exact header value while still receiving a
// JSON body; the casing is part of the observed protocol.
const ContentTypeForm = "Application/x-www-form-urlencoded"

// Signature computes the per-call request signature: HMAC-SHA256 over the
// byte string "{consID}&{timestamp}" keyed by the service's secret key,
// base64-encoded. Deterministic for a given (consID, timestamp, secretKey)
// triple.
func Signature(consID, timestamp, secretKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(consID + "&" + timestamp))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Headers builds the authentication header set for one call. The timestamp is
// seconds since epoch as a decimal string and must be the same value later
// passed to DecryptResponse.
func Headers(creds config.ServiceCredentials, timestamp, contentType string) map[string]string {
	if contentType == "" {
		contentType = ContentTypeJSON
	}
	return map[string]string{
		"X-cons-id":    creds.ConsID,
		"X-timestamp":  timestamp,
		"X-signature":  Signature(creds.ConsID, timestamp, creds.SecretKey),
		"user_key":     creds.UserKey,
		"Content-Type": contentType,
	}
}
