// Package webhookutils holds small helpers for reading webhook delivery
// headers. Proxies and API gateways forward headers with inconsistent
// casing, and Go's HTTP library canonicalizes keys (X-GitHub-Event becomes
// X-Github-Event), so lookups must never rely on exact key matches.
package webhookutils

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// GetHeaderCaseInsensitive retrieves a header value using case-insensitive
// key matching.
func GetHeaderCaseInsensitive(headers http.Header, key string) (string, bool) {
	keyLower := strings.ToLower(key)
	for k, values := range headers {
		if strings.ToLower(k) == keyLower && len(values) > 0 {
			return values[0], true
		}
	}
	return "", false
}

// EventName returns the X-GitHub-Event header value, or false when the
// request carries none.
func EventName(headers http.Header) (string, bool) {
	return GetHeaderCaseInsensitive(headers, "X-GitHub-Event")
}

// DeliveryID returns the X-GitHub-Delivery header value, generating one
// when the sender omitted it so that every delivery can be correlated in
// the logs.
func DeliveryID(headers http.Header) string {
	if id, ok := GetHeaderCaseInsensitive(headers, "X-GitHub-Delivery"); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
