package fakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/systmms/secstream/pkg/coroutine"
)

// Outcome is one canned answer of a ScriptedRuntime.
type Outcome struct {
	Value any
	Err   error
}

// ScriptedRuntime answers requests with a fixed sequence of outcomes and
// records what it was asked. It performs no I/O.
type ScriptedRuntime struct {
	mu       sync.Mutex
	outcomes []Outcome
	Requests []coroutine.Request
}

// NewScriptedRuntime returns a runtime that answers with outcomes in order.
func NewScriptedRuntime(outcomes ...Outcome) *ScriptedRuntime {
	return &ScriptedRuntime{outcomes: outcomes}
}

// Execute implements coroutine.Runtime.
func (s *ScriptedRuntime) Execute(_ context.Context, req coroutine.Request) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Requests = append(s.Requests, req)
	if len(s.outcomes) == 0 {
		return nil, fmt.Errorf("scripted runtime: unexpected %s request", req.Kind())
	}
	next := s.outcomes[0]
	s.outcomes = s.outcomes[1:]
	return next.Value, next.Err
}

// RequestCount returns how many requests were executed.
func (s *ScriptedRuntime) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

var _ coroutine.Runtime = (*ScriptedRuntime)(nil)
