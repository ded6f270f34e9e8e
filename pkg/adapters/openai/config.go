package openai

import (
	"os"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 60 * time.Second
)

// Config holds the client configuration.
type Config struct {
	APIKey      string        // Required: API key for authentication
	BaseURL     string        // Base URL, "/chat/completions" is appended
	Model       string        // Model to use
	Temperature *float64      // Optional sampling temperature
	HTTPTimeout time.Duration // HTTP client timeout
}

// Validate checks the configuration and sets defaults.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = DefaultTimeout
	}
	return nil
}

// APIKeyFromEnv returns GEMINI_API_KEY, falling back to GOOGLE_API_KEY.
func APIKeyFromEnv() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GOOGLE_API_KEY")
}
