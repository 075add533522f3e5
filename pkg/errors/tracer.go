package errors

import "github.com/pkg/errors"

// StackTracer is implemented by errors that carry a stack trace.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// Tracer is an error with a short message and a wrapped cause that keeps
// the stack trace of the point where the cause was first wrapped.
type Tracer struct {
	Message string
	Err     error
}

// NewTracer creates a Tracer with the given message and no cause yet.
func NewTracer(message string) *Tracer {
	return &Tracer{Message: message}
}

// Wrap attaches a cause to the tracer. If the cause does not already carry
// a stack trace, one is captured here.
func (t *Tracer) Wrap(err error) *Tracer {
	t.Err = err
	if _, ok := err.(StackTracer); !ok {
		t.Err = errors.WithStack(err)
	}
	return t
}

func (t *Tracer) Error() string {
	return t.Message
}

func (t *Tracer) Unwrap() error {
	return t.Err
}

// StackTrace returns the stack trace of the wrapped cause, if any.
func (t *Tracer) StackTrace() errors.StackTrace {
	if st, ok := t.Err.(StackTracer); ok {
		return st.StackTrace()
	}
	return nil
}
