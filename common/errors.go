package common

import (
	"errors"
	"fmt"
)

// Process exit codes, one per error kind
const (
	ExitOK             = 0
	ExitUsage          = 1
	ExitConfiguration  = 2
	ExitHostingAPI     = 3
	ExitAIRequest      = 4
	ExitPromptTooLarge = 5
)

// UsageError is returned when the command line arguments are missing or malformed
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// ConfigurationError is returned when a required secret or setting is unavailable
type ConfigurationError struct {
	// Missing names the absent environment variable, if any
	Missing string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Missing != "" {
		return fmt.Sprintf("%s missing. Make sure it is set in .env or environment variables!", e.Missing)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// HostingAPIError is returned when the hosting platform rejects a request
type HostingAPIError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *HostingAPIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("hosting API %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("hosting API %s failed: %v", e.Op, e.Err)
}

func (e *HostingAPIError) Unwrap() error {
	return e.Err
}

// AIRequestError is returned when the model endpoint answers with a non-success status
// or with a payload that holds no usable choice
type AIRequestError struct {
	StatusCode int
	// Body is the raw response body as returned by the endpoint
	Body    string
	Message string
}

func (e *AIRequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("AI API request failed: %s", e.Message)
	}
	return fmt.Sprintf("AI API request failed with status %d: %s", e.StatusCode, e.Body)
}

// PromptTooLargeError is returned before calling the model when the rendered prompt exceeds the configured limit
type PromptTooLargeError struct {
	Size  int
	Limit int
	Files int
}

func (e *PromptTooLargeError) Error() string {
	return fmt.Sprintf("prompt too large: %d bytes across %d files exceeds limit of %d bytes", e.Size, e.Files, e.Limit)
}

// ExitCode maps an error returned by the pipeline to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var usageErr *UsageError
	var configErr *ConfigurationError
	var hostingErr *HostingAPIError
	var aiErr *AIRequestError
	var promptErr *PromptTooLargeError

	switch {
	case errors.As(err, &usageErr):
		return ExitUsage
	case errors.As(err, &configErr):
		return ExitConfiguration
	case errors.As(err, &hostingErr):
		return ExitHostingAPI
	case errors.As(err, &aiErr):
		return ExitAIRequest
	case errors.As(err, &promptErr):
		return ExitPromptTooLarge
	}

	return ExitUsage
}
