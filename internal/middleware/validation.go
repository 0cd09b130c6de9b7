package middleware

import (
	"errors"
	"unicode/utf8"
)

const maxQueryLength = 100000 // ~100KB

// ValidateQuery validates the user query of a chat request.
func ValidateQuery(query string) error {
	if len(query) == 0 {
		return errors.New("query cannot be empty")
	}
	if len(query) > maxQueryLength {
		return errors.New("query exceeds maximum length")
	}
	if !utf8.ValidString(query) {
		return errors.New("query must be valid UTF-8")
	}
	return nil
}

// ValidateSystemPrompt validates an optional system prompt.
func ValidateSystemPrompt(prompt string) error {
	if len(prompt) > maxQueryLength {
		return errors.New("system prompt exceeds maximum length")
	}
	if !utf8.ValidString(prompt) {
		return errors.New("system prompt must be valid UTF-8")
	}
	return nil
}
