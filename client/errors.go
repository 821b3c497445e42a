package client

import "fmt"

// ErrorKind classifies request failures. The distinction between KindNetwork
// and KindAuth is load-bearing: only genuine authentication rejections may
// clear stored credentials, so a flaky connection never logs the user out.
type ErrorKind int

const (
	// KindNetwork covers transport failures, timeouts and 5xx responses.
	KindNetwork ErrorKind = iota
	// KindAuth covers 401/403 rejections that survived the retry cycle.
	KindAuth
	// KindHTTP covers all other non-2xx responses.
	KindHTTP
)

type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is a transient failure that should be
// retried rather than treated as a session problem.
func IsNetworkError(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Kind == KindNetwork
}

// IsAuthError reports whether err is a hard authentication failure.
func IsAuthError(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Kind == KindAuth
}
