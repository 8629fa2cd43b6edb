package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrCharacterNotFound  = errors.New("character not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrContentNotFound    = errors.New("content not found")

	// ErrUserInputRequired is returned when a turn against an existing
	// session carries no input text
	ErrUserInputRequired = errors.New("user_input is required")

	// ErrSessionFieldsRequired is returned when a new session is requested
	// without the ids needed to create it
	ErrSessionFieldsRequired = errors.New("character_id and user_id are required to start a session")

	// ErrInvalidTopic is returned when a new session names a topic outside
	// the closed topic set
	ErrInvalidTopic = errors.New("unknown topic")
)

// UpstreamError wraps a completion API failure so handlers can distinguish
// it from validation and not-found conditions
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion API error: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err originates from the completion API
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
