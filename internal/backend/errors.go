package backend

import (
	"errors"
	"fmt"
)

// ConfigurationError reports an unknown backend identifier. It is fatal:
// never retried, never degraded.
type ConfigurationError struct {
	Backend string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown backend %q", e.Backend)
}

// AuthenticationError reports bad or missing cloud credentials. It is
// raised at provider construction, never mid-call, and is never retried.
type AuthenticationError struct {
	Provider string
	Reason   string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s authentication failed: %s", e.Provider, e.Reason)
}

// BackendUnavailableError reports that no operational non-simulated device
// was found at provider construction. Not retried.
type BackendUnavailableError struct {
	Provider string
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("%s: no operational device available", e.Provider)
}

// EstimationError reports a malformed oracle or a failed estimation job.
// It propagates unmodified to the caller, which decides between retry and
// fallback.
type EstimationError struct {
	Provider string
	Oracle   int
	Reason   string
}

func (e *EstimationError) Error() string {
	return fmt.Sprintf("%s: oracle %d: %s", e.Provider, e.Oracle, e.Reason)
}

// TransientError wraps a network or timeout failure that is eligible for
// scheduler retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure in %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Retryable reports whether err is eligible for scheduler retry. Only
// transient execution failures qualify; configuration and authentication
// failures are explicitly excluded even when wrapped.
func Retryable(err error) bool {
	var cfg *ConfigurationError
	var auth *AuthenticationError
	if errors.As(err, &cfg) || errors.As(err, &auth) {
		return false
	}
	var transient *TransientError
	return errors.As(err, &transient)
}
