package coros

import "fmt"

// AuthError means login failed or the login response was unusable.
// It is fatal: nothing downstream can run without a session.
type AuthError struct {
	Status int
	Reason string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("auth failed: status %d: %s", e.Status, e.Reason)
	}
	return "auth failed: " + e.Reason
}

// TransportError is an HTTP-level failure: a request that could not be
// sent, or a response with a non-success status. Fatal when raised by
// the lister, per-activity otherwise.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request to %s failed: status %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ExtractionError means the detail endpoint never produced a valid
// payload within the retry budget.
type ExtractionError struct {
	Endpoint string
	Attempts int
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("call to %s failed after %d attempts", e.Endpoint, e.Attempts)
}

// ValidationError means a payload was structurally present but did not
// match the expected shape during translation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid payload: field %q: %s", e.Field, e.Reason)
	}
	return "invalid payload: " + e.Reason
}
