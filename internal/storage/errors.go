package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rowgate/rowgate/internal/domain"
)

// StorageError is the classified failure every backend reports. Retryable is
// advisory metadata: this package never retries on its own, retry policy
// belongs to the caller.
type StorageError struct {
	Code      domain.ErrorCode
	Message   string
	Provider  string
	Retryable bool
}

func (e *StorageError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return e.Message
}

// IsRetryableError classifies an error by its message: transient transport
// failures (timeouts, network) are retryable, authorization failures are not.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var serr *StorageError
	if errors.As(err, &serr) {
		return serr.Retryable
	}
	return retryableMessage(err.Error())
}

func retryableMessage(msg string) bool {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "invalid credentials"),
		strings.Contains(msg, "access denied"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "forbidden"),
		strings.Contains(msg, "permission"):
		return false
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "timed out"),
		strings.Contains(msg, "network"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"):
		return true
	}
	return false
}

// classify wraps a backend failure as a StorageError, preserving an existing
// classification when the backend already produced one.
func classify(provider string, code domain.ErrorCode, err error) *StorageError {
	var serr *StorageError
	if errors.As(err, &serr) {
		return serr
	}
	return &StorageError{
		Code:      code,
		Message:   err.Error(),
		Provider:  provider,
		Retryable: retryableMessage(err.Error()),
	}
}

// missingCredentials builds the non-retryable error for a configuration that
// lacks the fields its storage type needs. Raised before any network call.
func missingCredentials(provider string, fields ...string) *StorageError {
	return &StorageError{
		Code:      domain.CodeMissingCredentials,
		Message:   fmt.Sprintf("missing credentials: %s", strings.Join(fields, ", ")),
		Provider:  provider,
		Retryable: false,
	}
}
