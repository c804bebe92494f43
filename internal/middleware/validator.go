package middleware

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/procdoc/internal/domain/reports"
)

// Input validation and sanitization utilities

// maxCleanupHours bounds the cleanup age to ten years
const maxCleanupHours = 24 * 365 * 10

// ValidateReportFilename rejects anything that is not a bare report name
func ValidateReportFilename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: filename cannot be empty", reports.ErrInvalidInput)
	}
	if !reports.ValidFilename(name) {
		return fmt.Errorf("%w: invalid report filename", reports.ErrInvalidInput)
	}
	return nil
}

// ValidateHexColor validates an optional #RRGGBB color
func ValidateHexColor(color string) error {
	return reports.ValidateColor(color)
}

// ValidateHours validates the cleanup age
func ValidateHours(hours float64) error {
	if hours < 0 {
		return fmt.Errorf("%w: hours must not be negative", reports.ErrInvalidInput)
	}
	if hours > maxCleanupHours {
		return fmt.Errorf("%w: hours must not exceed %d", reports.ErrInvalidInput, maxCleanupHours)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination page size
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidatePage validates the 1-based page number
func ValidatePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}
