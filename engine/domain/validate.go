package domain

import (
	"strings"
	"unicode/utf8"
)

// ValidateQuery rejects queries that must never reach a remote service.
// Whitespace-only text counts as empty.
func ValidateQuery(text string) error {
	if strings.TrimSpace(text) == "" {
		return NewValidationError("query", text, ErrEmptyQuery)
	}
	if utf8.RuneCountInString(text) > MaxQueryRunes {
		return NewValidationError("query", text[:32]+"...", ErrQueryTooLong)
	}
	return nil
}
