package process

import (
	"github.com/systmms/secstream/pkg/coroutine"
)

// Output is the result of a finished process.
type Output struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Success reports a zero exit status.
func (o *Output) Success() bool {
	return o.ExitCode == 0
}

// Wipe zeroes both captured streams.
func (o *Output) Wipe() {
	clear(o.Stdout)
	clear(o.Stderr)
}

// SpawnRequest asks the runtime to spawn Command, wait for it and capture
// its output. The runtime answers with *Output.
type SpawnRequest struct {
	Command Command
}

// Kind implements coroutine.Request.
func (*SpawnRequest) Kind() string { return "process.spawn" }

func (r *SpawnRequest) String() string {
	return "spawn " + r.Command.Name()
}

// SpawnThenWait spawns a command and waits for its output.
type SpawnThenWait struct {
	guard   coroutine.Guard
	cmd     Command
	spawned bool
}

// NewSpawnThenWait creates the coroutine for cmd.
func NewSpawnThenWait(cmd Command) *SpawnThenWait {
	return &SpawnThenWait{cmd: cmd}
}

// Resume implements coroutine.Coroutine.
func (s *SpawnThenWait) Resume(input any) coroutine.Step[*Output] {
	if err := s.guard.Enter(); err != nil {
		return coroutine.Failed[*Output](err)
	}
	defer s.guard.Leave()

	if !s.spawned {
		if input != nil {
			s.guard.Finish()
			return coroutine.Failed[*Output](&coroutine.UnexpectedInputError{Want: "nil", Got: input})
		}
		if err := s.cmd.Validate(); err != nil {
			s.guard.Finish()
			return coroutine.Failed[*Output](err)
		}
		s.spawned = true
		return coroutine.NeedsIO[*Output](&SpawnRequest{Command: s.cmd})
	}

	s.guard.Finish()
	out, ok := input.(*Output)
	if !ok || out == nil {
		return coroutine.Failed[*Output](&coroutine.UnexpectedInputError{Want: "*process.Output", Got: input})
	}
	return coroutine.Done(out)
}
