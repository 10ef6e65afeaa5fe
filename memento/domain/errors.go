package domain

import (
	"errors"
	"fmt"
)

// ErrPostNotFound is returned when no post is stored for a date key.
var ErrPostNotFound = errors.New("post not found")

// ConfigurationError reports a required setting that is missing.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("Missing %s", e.Setting)
}

// ProviderError reports a failed call to the text-generation provider.
// StatusCode is zero when no response was received.
type ProviderError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("provider error: status %d: %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("provider error: %v", e.Err)
	default:
		return "provider error: " + e.Body
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// StorageError reports that the backing store could not be read, written or parsed.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
