package api

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrBackendDown  = errors.New("backend unreachable")
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

// WrapError converts backend errors to user-friendly messages
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrBackendDown) {
		return &UserError{
			Message: "Scoring backend unreachable",
			Hint:    "Check that the pipeline backend is running and api.base_url points at it (default http://localhost:5000).",
			Err:     err,
		}
	}

	if errors.Is(err, ErrUnauthorized) {
		return &UserError{
			Message: "API key rejected",
			Hint:    "Set a valid key with `sentinel-cli set-key` or the DQS_SENTINEL_API_KEY environment variable.",
			Err:     err,
		}
	}

	if errors.Is(err, ErrNotFound) {
		return &UserError{
			Message: "Endpoint not found",
			Hint:    "The backend may be an older version without the live log API.",
			Err:     err,
		}
	}

	return err
}
