// Package validator provides input validation and sanitization functions
// for the InboxPilot backend security layer.
package validator

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrInvalidUserID    = errors.New("invalid user id format")
	ErrInputTooLong     = errors.New("input exceeds maximum length")
	ErrInvalidCharacter = errors.New("input contains invalid characters")
	ErrEmptyInput       = errors.New("input cannot be empty")
)

// userIDRegex matches the identifiers issued by the fronting auth layer:
// alphanumeric with dots, underscores, colons and hyphens.
var userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._:-]*$`)

// MaxUserIDLength bounds externally supplied user identifiers.
const MaxUserIDLength = 255

// ValidateUserID validates an externally supplied user identifier.
// Returns nil if valid, or an appropriate error.
func ValidateUserID(userID string) error {
	userID = strings.TrimSpace(userID)

	if userID == "" {
		return ErrEmptyInput
	}

	if utf8.RuneCountInString(userID) > MaxUserIDLength {
		return ErrInputTooLong
	}

	if !userIDRegex.MatchString(userID) {
		return ErrInvalidUserID
	}

	return nil
}

// MaxSearchLength bounds free-text search terms before they reach the query layer.
const MaxSearchLength = 256

// SanitizeSearchTerm prepares a free-text search term for querying.
// Removes control characters, trims whitespace, and enforces the length cap.
func SanitizeSearchTerm(input string) string {
	return SanitizeString(input, MaxSearchLength)
}

// SanitizeString removes potentially dangerous characters and enforces length limits.
// Removes control characters and trims whitespace.
func SanitizeString(input string, maxLength int) string {
	// Remove control characters (ASCII 0-31 and 127)
	input = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)

	// Trim whitespace
	input = strings.TrimSpace(input)

	// Enforce maximum length if specified
	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		runes := []rune(input)
		input = string(runes[:maxLength])
	}

	return input
}
