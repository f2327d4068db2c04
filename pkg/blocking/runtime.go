// Package blocking provides the default I/O runtime for coroutines: each
// request is executed with ordinary blocking calls on the caller's
// goroutine.
package blocking

import (
	"context"
	"fmt"
	"time"

	"github.com/systmms/secstream/internal/logging"
	"github.com/systmms/secstream/pkg/coroutine"
	"github.com/systmms/secstream/pkg/exec"
	"github.com/systmms/secstream/pkg/keyring"
	"github.com/systmms/secstream/pkg/process"
)

// UnsupportedRequestError is returned for a request kind the runtime does
// not know how to perform.
type UnsupportedRequestError struct {
	Kind string
}

func (e *UnsupportedRequestError) Error() string {
	return fmt.Sprintf("runtime cannot execute %q requests", e.Kind)
}

// Runtime executes process and keyring requests.
type Runtime struct {
	Exec    exec.Executor
	Keyring keyring.Store
	Logger  *logging.Logger
	// Timeout bounds each request. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// New returns a Runtime wired to the real executor and platform store.
func New() *Runtime {
	return &Runtime{
		Exec:    exec.DefaultExecutor(),
		Keyring: keyring.Platform(),
		Logger:  logging.Nop(),
	}
}

// Execute implements coroutine.Runtime.
func (r *Runtime) Execute(ctx context.Context, req coroutine.Request) (any, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	r.logger().Trace("executing %s request", req.Kind())
	start := time.Now()

	var (
		out any
		err error
	)
	switch req := req.(type) {
	case *process.SpawnRequest:
		out, err = r.spawn(ctx, req)
	case *keyring.ReadRequest, *keyring.WriteRequest, *keyring.DeleteRequest:
		out, err = r.storeCall(ctx, req)
	default:
		return nil, &UnsupportedRequestError{Kind: req.Kind()}
	}

	if err != nil {
		r.logger().Debug("%s request failed after %s: %v", req.Kind(), time.Since(start), err)
		return nil, err
	}
	r.logger().Trace("%s request finished in %s", req.Kind(), time.Since(start))
	return out, nil
}

func (r *Runtime) spawn(ctx context.Context, req *process.SpawnRequest) (any, error) {
	executor := r.Exec
	if executor == nil {
		executor = exec.DefaultExecutor()
	}
	out, err := executor.Run(ctx, req.Command)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// storeCall runs the store call on its own goroutine so that ctx can cut the
// wait short; platform stores take no context.
func (r *Runtime) storeCall(ctx context.Context, req coroutine.Request) (any, error) {
	store := r.Keyring
	if store == nil {
		store = keyring.Platform()
	}

	type result struct {
		out any
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := keyring.Execute(store, req)
		done <- result{out, err}
	}()

	select {
	case res := <-done:
		return res.out, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Runtime) logger() *logging.Logger {
	if r.Logger == nil {
		return logging.Nop()
	}
	return r.Logger
}
