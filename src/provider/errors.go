package provider

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAuthFailed          = errors.New("authentication failed")
	ErrEndpointNotFound    = errors.New("collector endpoint not found")
	ErrCollectorDown       = errors.New("collector unreachable")
	ErrCyclicUpstream      = errors.New("cyclic upstream reference")
	ErrMissingPredecessor  = errors.New("missing predecessor build")
	ErrNoCollectorEndpoint = errors.New("collector API URL is not configured")
)

// UserError wraps errors with user-friendly messages
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// WrapError converts collector and resolution errors to user-friendly messages
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()

	if errors.Is(err, ErrNoCollectorEndpoint) {
		return &UserError{
			Message: "Collector API URL is not configured",
			Hint:    "Set HYGIEIA_API_URL or api_url in hygieia.yaml, e.g. http://hygieia.local:8080/api",
			Err:     err,
		}
	}

	if strings.HasPrefix(msg, "401") || errors.Is(err, ErrAuthFailed) {
		return &UserError{
			Message: "Authentication failed",
			Hint:    "Check that the collector API token is valid.\n  - Set HYGIEIA_TOKEN or token in hygieia.yaml",
			Err:     err,
		}
	}

	if strings.HasPrefix(msg, "404") || errors.Is(err, ErrEndpointNotFound) {
		return &UserError{
			Message: "Collector endpoint not found",
			Hint:    "Check that the API URL points at the collector API root (it usually ends in /api).",
			Err:     err,
		}
	}

	if errors.Is(err, ErrCollectorDown) {
		return &UserError{
			Message: "Collector unreachable",
			Hint:    "Check network access to the collector and any proxy settings.",
			Err:     err,
		}
	}

	return err
}
