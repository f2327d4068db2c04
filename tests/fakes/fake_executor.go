package fakes

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/systmms/secstream/pkg/exec"
	"github.com/systmms/secstream/pkg/process"
)

// FakeExecutor is a test double for exec.Executor.
type FakeExecutor struct {
	mu sync.Mutex

	// Responses maps a command line (process.Command.String) or a prefix of
	// one ending in "*" to its canned output.
	Responses map[string]FakeResponse

	// DefaultResponse is used when no entry in Responses matches.
	DefaultResponse *FakeResponse

	// Calls records every command passed to Run.
	Calls []process.Command

	// StrictMode makes Run fail for commands without a response.
	StrictMode bool
}

// FakeResponse is the canned result of one command.
type FakeResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	// Err simulates a spawn failure.
	Err error
}

// NewFakeExecutor creates an executor with no responses.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{Responses: make(map[string]FakeResponse)}
}

// Run returns the response registered for cmd.
func (f *FakeExecutor) Run(ctx context.Context, cmd process.Command) (*process.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, cmd)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, ok := f.lookup(cmd.String())
	if !ok {
		if f.StrictMode {
			return nil, &exec.SpawnError{Command: cmd.Name(), Err: fmt.Errorf("fake: no response configured for %q", cmd.String())}
		}
		resp = FakeResponse{}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &process.Output{
		ExitCode: resp.ExitCode,
		Stdout:   append([]byte(nil), resp.Stdout...),
		Stderr:   append([]byte(nil), resp.Stderr...),
	}, nil
}

func (f *FakeExecutor) lookup(line string) (FakeResponse, bool) {
	if resp, ok := f.Responses[line]; ok {
		return resp, true
	}
	for pattern, resp := range f.Responses {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok && strings.HasPrefix(line, prefix) {
			return resp, true
		}
	}
	if f.DefaultResponse != nil {
		return *f.DefaultResponse, true
	}
	return FakeResponse{}, false
}

// AddOutput registers a successful command printing stdout.
func (f *FakeExecutor) AddOutput(line, stdout string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[line] = FakeResponse{Stdout: []byte(stdout)}
}

// AddFailure registers a command exiting with code and printing stderr.
func (f *FakeExecutor) AddFailure(line string, code int, stderr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[line] = FakeResponse{ExitCode: code, Stderr: []byte(stderr)}
}

// CallCount returns the number of times Run was called.
func (f *FakeExecutor) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

var _ exec.Executor = (*FakeExecutor)(nil)
