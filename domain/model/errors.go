package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL          = errors.New("invalid video url")
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrContestNotFound     = errors.New("contest not found")
	ErrContestNotOpen      = errors.New("contest is not accepting submissions")

	// ErrCredentialMissing is a skip condition, not a failure.
	ErrCredentialMissing = errors.New("platform account not connected")
	ErrDecryption        = errors.New("credential decryption failed")
)

// PlatformAPIError is returned for any non-2xx status or error envelope from the platform.
type PlatformAPIError struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	LogID      string `json:"log_id,omitempty"`
	HTTPStatus int    `json:"http_status,omitempty"`
	Transient  bool   `json:"transient"`
}

func (e *PlatformAPIError) Error() string {
	if e.LogID != "" {
		return fmt.Sprintf("platform api error %s (status %d, log_id %s): %s", e.Code, e.HTTPStatus, e.LogID, e.Message)
	}
	return fmt.Sprintf("platform api error %s (status %d): %s", e.Code, e.HTTPStatus, e.Message)
}

func (e *PlatformAPIError) IsTransient() bool { return e.Transient }

// IsTransientPlatformError reports whether err is a platform error worth retrying next cycle.
func IsTransientPlatformError(err error) bool {
	var pe *PlatformAPIError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return false
}

// PersistenceError marks a store failure that aborts a scheduler run.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }
