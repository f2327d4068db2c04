package coroutine

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrConsumed is returned when a finished coroutine is resumed again.
	ErrConsumed = errors.New("coroutine already finished")
	// ErrConcurrentResume is returned when two drivers resume the same
	// coroutine at once.
	ErrConcurrentResume = errors.New("coroutine resumed concurrently")
)

// UnexpectedInputError reports an outcome of the wrong type, or a non-nil
// input on the first resumption.
type UnexpectedInputError struct {
	Want string
	Got  any
}

func (e *UnexpectedInputError) Error() string {
	if e.Got == nil {
		return fmt.Sprintf("unexpected nil input, want %s", e.Want)
	}
	return fmt.Sprintf("unexpected input %T, want %s", e.Got, e.Want)
}

// Guard enforces single-driver, single-use resumption. Embed it in a
// coroutine and bracket Resume with Enter and Leave:
//
//	if err := c.guard.Enter(); err != nil {
//	    return coroutine.Failed[T](err)
//	}
//	defer c.guard.Leave()
//
// Call Finish before returning a final step.
type Guard struct {
	mu       sync.Mutex
	finished bool
}

// Enter claims the coroutine for the current resumption.
func (g *Guard) Enter() error {
	if !g.mu.TryLock() {
		return ErrConcurrentResume
	}
	if g.finished {
		g.mu.Unlock()
		return ErrConsumed
	}
	return nil
}

// Leave releases the claim taken by Enter.
func (g *Guard) Leave() {
	g.mu.Unlock()
}

// Finish marks the coroutine consumed. Must be called between Enter and
// Leave.
func (g *Guard) Finish() {
	g.finished = true
}
