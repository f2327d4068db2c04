package blocking

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/systmms/secstream/internal/metrics"
	"github.com/systmms/secstream/pkg/coroutine"
)

// Limit bounds the number of requests rt executes at once. Callers beyond
// the limit wait for a slot or for ctx to end.
func Limit(rt coroutine.Runtime, n int64) coroutine.Runtime {
	if n <= 0 {
		return rt
	}
	sem := semaphore.NewWeighted(n)
	return coroutine.RuntimeFunc(func(ctx context.Context, req coroutine.Request) (any, error) {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer sem.Release(1)
		return rt.Execute(ctx, req)
	})
}

// Instrument counts every request rt executes.
func Instrument(rt coroutine.Runtime, m *metrics.Metrics) coroutine.Runtime {
	return coroutine.RuntimeFunc(func(ctx context.Context, req coroutine.Request) (any, error) {
		out, err := rt.Execute(ctx, req)
		m.RecordIORequest(req.Kind(), err)
		return out, err
	})
}
