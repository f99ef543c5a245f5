package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// Field applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Str adds an arbitrary string field.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// Action adds the tool action name.
func Action(name string) Field {
	return Str("action", name)
}

// InvocationID adds the per-call invocation id.
func InvocationID(id string) Field {
	return Str("invocation_id", id)
}

// JobID adds a remote job id.
func JobID(id string) Field {
	return Str("job_id", id)
}

// Path adds a local filesystem path.
func Path(p string) Field {
	return Str("path", p)
}

// Status adds an HTTP status code.
func Status(code int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("status", code)
	}
}

// Duration adds an elapsed time in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("duration_ms", int(d.Milliseconds()))
	}
}

// OK adds the outcome flag.
func OK(ok bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("ok", ok)
	}
}

// Err adds an error field. A nil error adds nothing.
func Err(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}
