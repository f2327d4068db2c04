package keyring

import (
	"fmt"

	"github.com/systmms/secstream/pkg/coroutine"
)

// oneShot yields a single request and finishes with its outcome.
type oneShot[T any] struct {
	guard   coroutine.Guard
	entry   Entry
	request coroutine.Request
	issued  bool
}

func (o *oneShot[T]) Resume(input any) coroutine.Step[T] {
	if err := o.guard.Enter(); err != nil {
		return coroutine.Failed[T](err)
	}
	defer o.guard.Leave()

	if !o.issued {
		if input != nil {
			o.guard.Finish()
			return coroutine.Failed[T](&coroutine.UnexpectedInputError{Want: "nil", Got: input})
		}
		if err := o.entry.Validate(); err != nil {
			o.guard.Finish()
			return coroutine.Failed[T](err)
		}
		o.issued = true
		return coroutine.NeedsIO[T](o.request)
	}

	o.guard.Finish()
	v, ok := input.(T)
	if !ok {
		var zero T
		return coroutine.Failed[T](&coroutine.UnexpectedInputError{Want: fmt.Sprintf("%T", zero), Got: input})
	}
	return coroutine.Done(v)
}

// ReadSecret returns a coroutine that looks up e and finishes with the
// stored bytes.
func ReadSecret(e Entry) coroutine.Coroutine[[]byte] {
	return &oneShot[[]byte]{entry: e, request: &ReadRequest{Entry: e}}
}

// WriteSecret returns a coroutine that stores secret at e.
func WriteSecret(e Entry, secret []byte) coroutine.Coroutine[struct{}] {
	return &oneShot[struct{}]{entry: e, request: &WriteRequest{Entry: e, Secret: secret}}
}

// DeleteSecret returns a coroutine that removes e.
func DeleteSecret(e Entry) coroutine.Coroutine[struct{}] {
	return &oneShot[struct{}]{entry: e, request: &DeleteRequest{Entry: e}}
}
