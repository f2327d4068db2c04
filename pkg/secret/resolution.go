package secret

import (
	"bytes"
	"fmt"

	"github.com/systmms/secstream/pkg/capability"
	"github.com/systmms/secstream/pkg/coroutine"
	"github.com/systmms/secstream/pkg/keyring"
	"github.com/systmms/secstream/pkg/process"
)

// Resolution is the single-use coroutine resolving one Secret. It yields
// *process.SpawnRequest for Command secrets and *keyring.ReadRequest for
// Keyring secrets; Raw secrets finish on the first Resume.
type Resolution struct {
	guard  coroutine.Guard
	secret Secret

	spawn coroutine.Coroutine[*process.Output]
	read  coroutine.Coroutine[[]byte]
}

// Resolve returns a fresh Resolution for s.
func (s Secret) Resolve() *Resolution {
	return &Resolution{secret: s}
}

// Resume implements coroutine.Coroutine.
func (r *Resolution) Resume(input any) coroutine.Step[*Value] {
	if err := r.guard.Enter(); err != nil {
		return coroutine.Failed[*Value](err)
	}
	defer r.guard.Leave()

	step := r.resume(input)
	if step.State != coroutine.StateNeedsIO {
		r.guard.Finish()
	}
	return step
}

func (r *Resolution) resume(input any) coroutine.Step[*Value] {
	switch v := r.secret.Variant().(type) {
	case Raw:
		if input != nil {
			return coroutine.Failed[*Value](&coroutine.UnexpectedInputError{Want: "nil", Got: input})
		}
		return coroutine.Done(NewValue(rawBytes(v)))

	case Command:
		if r.spawn == nil {
			if err := capability.Require(capability.Command); err != nil {
				return coroutine.Failed[*Value](err)
			}
			r.spawn = process.NewSpawnThenWait(v.Cmd)
		}
		step := r.spawn.Resume(input)
		switch step.State {
		case coroutine.StateNeedsIO:
			return coroutine.NeedsIO[*Value](step.Request)
		case coroutine.StateFailed:
			return coroutine.Failed[*Value](r.secret.withContext(step.Err))
		}
		value, err := fromOutput(v.Cmd, step.Value)
		if err != nil {
			return coroutine.Failed[*Value](r.secret.withContext(err))
		}
		return coroutine.Done(value)

	case Keyring:
		if r.read == nil {
			if err := capability.Require(capability.Keyring); err != nil {
				return coroutine.Failed[*Value](err)
			}
			r.read = keyring.ReadSecret(v.Entry)
		}
		step := r.read.Resume(input)
		switch step.State {
		case coroutine.StateNeedsIO:
			return coroutine.NeedsIO[*Value](step.Request)
		case coroutine.StateFailed:
			return coroutine.Failed[*Value](r.secret.withContext(step.Err))
		}
		return coroutine.Done(NewValue(step.Value))
	}

	return coroutine.Failed[*Value](fmt.Errorf("unknown secret variant %T", r.secret.Variant()))
}

// fromOutput turns a finished command into a credential: the first line of
// stdout on success, a *CommandFailedError otherwise. out is wiped.
func fromOutput(cmd process.Command, out *process.Output) (*Value, error) {
	defer out.Wipe()

	if !out.Success() {
		msg := bytes.TrimSpace(out.Stderr)
		if len(msg) == 0 {
			msg = bytes.TrimSpace(out.Stdout)
		}
		return nil, &CommandFailedError{
			Program:  cmd.Name(),
			ExitCode: out.ExitCode,
			Message:  string(msg),
		}
	}

	return NewValue(FirstLine(out.Stdout)), nil
}

// FirstLine returns a copy of b up to the first line terminator, with a
// trailing "\r" removed. Empty input gives an empty line.
func FirstLine(b []byte) []byte {
	line, _, _ := bytes.Cut(b, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return append([]byte(nil), line...)
}
