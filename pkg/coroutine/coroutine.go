// Package coroutine defines the resumable computation contract used by the
// secret backends.
//
// A Coroutine never performs blocking I/O itself. Each call to Resume
// returns a Step that is either final (Done or Failed) or a Request
// describing the I/O the caller must perform before resuming. The caller
// chooses how requests are executed by supplying a Runtime: blocking system
// calls, a bounded worker pool, or a test double returning canned outcomes.
//
// Driving a coroutine by hand looks like this:
//
//	var input any
//	for {
//	    step := co.Resume(input)
//	    switch step.State {
//	    case coroutine.StateDone:
//	        return step.Value, nil
//	    case coroutine.StateFailed:
//	        return zero, step.Err
//	    case coroutine.StateNeedsIO:
//	        input, err = rt.Execute(ctx, step.Request)
//	        ...
//	    }
//	}
//
// Drive implements exactly that loop.
package coroutine

import (
	"context"
	"errors"
	"fmt"
)

// State tells which of the three step shapes a Step holds.
type State uint8

const (
	// StateNeedsIO means the coroutine is suspended on Step.Request.
	StateNeedsIO State = iota
	// StateDone means Step.Value holds the final result.
	StateDone
	// StateFailed means Step.Err holds the final failure.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNeedsIO:
		return "needs-io"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Request describes one blocking I/O operation. Implementations must not
// expose secret material from String or Kind.
type Request interface {
	// Kind is a short stable identifier such as "process.spawn".
	Kind() string
}

// Step is the result of one resumption.
type Step[T any] struct {
	State   State
	Value   T
	Err     error
	Request Request
}

// Done returns a final successful step.
func Done[T any](v T) Step[T] {
	return Step[T]{State: StateDone, Value: v}
}

// Failed returns a final failed step.
func Failed[T any](err error) Step[T] {
	return Step[T]{State: StateFailed, Err: err}
}

// NeedsIO returns a step suspended on req.
func NeedsIO[T any](req Request) Step[T] {
	return Step[T]{State: StateNeedsIO, Request: req}
}

// Coroutine is a single-use resumable computation producing a T.
//
// The first call to Resume receives nil. Every later call receives the
// outcome of the Request returned by the previous step.
type Coroutine[T any] interface {
	Resume(input any) Step[T]
}

// Runtime executes the I/O requests yielded by coroutines.
type Runtime interface {
	Execute(ctx context.Context, req Request) (any, error)
}

// RuntimeFunc adapts a function to the Runtime interface.
type RuntimeFunc func(ctx context.Context, req Request) (any, error)

// Execute calls f.
func (f RuntimeFunc) Execute(ctx context.Context, req Request) (any, error) {
	return f(ctx, req)
}

// IOError reports a Runtime failure while executing a request.
type IOError struct {
	Request Request
	Err     error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Request.Kind(), e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ErrNilRequest is returned when a coroutine suspends without a request.
var ErrNilRequest = errors.New("coroutine suspended without a request")

// Drive resumes co until it finishes, executing every request with rt.
//
// Runtime failures end the loop with an *IOError; the coroutine is not
// resumed again after such a failure.
func Drive[T any](ctx context.Context, co Coroutine[T], rt Runtime) (T, error) {
	var (
		zero  T
		input any
	)

	for {
		step := co.Resume(input)

		switch step.State {
		case StateDone:
			return step.Value, nil
		case StateFailed:
			return zero, step.Err
		case StateNeedsIO:
			if step.Request == nil {
				return zero, ErrNilRequest
			}
			out, err := rt.Execute(ctx, step.Request)
			if err != nil {
				return zero, &IOError{Request: step.Request, Err: err}
			}
			input = out
		default:
			return zero, fmt.Errorf("coroutine returned unknown %s", step.State)
		}
	}
}
