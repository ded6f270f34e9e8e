package openai

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when no API key is provided.
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrNoChoices is returned when the API response has no choices.
	ErrNoChoices = errors.New("no choices in API response")
)

// APIError represents a non-2xx answer from the chat API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Body)
}
