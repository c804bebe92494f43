package ai

import "errors"

var (
	// ErrQuotaExceeded is returned when the provider rejects the call for
	// rate or billing limits (HTTP 429).
	ErrQuotaExceeded = errors.New("ai quota exceeded")

	// ErrUnavailable means /v1/analyze was called with no generator wired.
	ErrUnavailable = errors.New("ai generator not configured")
)
