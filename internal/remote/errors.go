package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrResponseTooLarge is returned when a response body exceeds the read limit.
var ErrResponseTooLarge = errors.New("response body exceeds 8 MiB limit")

// TransportError reports a call that never produced an HTTP response:
// DNS failure, connection reset, or timeout.
type TransportError struct {
	Method  string
	Path    string
	Elapsed time.Duration
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request timed out after %s", e.Elapsed.Round(time.Millisecond))
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func newTransportError(ctx context.Context, method, path string, elapsed time.Duration, err error) *TransportError {
	return &TransportError{
		Method:  method,
		Path:    path,
		Elapsed: elapsed,
		Timeout: isTimeout(ctx, err),
		Err:     err,
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// APIError renders a non-2xx response verbatim for administrative actions.
func APIError(resp *Response) error {
	return fmt.Errorf("API error (HTTP %d): %s", resp.Status, compact(resp.Raw))
}

func compact(raw []byte) string {
	const limit = 500
	s := string(raw)
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	if s == "" {
		return "empty response"
	}
	return s
}
