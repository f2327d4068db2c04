package secret

import (
	"errors"
	"fmt"

	"github.com/systmms/secstream/pkg/keyring"
)

// Secret resolution sentinel errors
var (
	ErrCommandFailed     = errors.New("command failed")
	ErrStoreLookupFailed = errors.New("credential store lookup failed")
)

// CommandFailedError reports a secret command that exited non-zero.
// Message is the command's stderr, or its stdout when stderr was empty.
type CommandFailedError struct {
	Program  string
	ExitCode int
	Message  string
}

func (e *CommandFailedError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Program, e.ExitCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *CommandFailedError) Is(target error) bool {
	return target == ErrCommandFailed
}

// StoreLookupError reports a failed credential store lookup. Err is the
// underlying cause, usually a *coroutine.IOError wrapping a *keyring.Error.
type StoreLookupError struct {
	Entry keyring.Entry
	Err   error
}

func (e *StoreLookupError) Error() string {
	return fmt.Sprintf("lookup %s: %v", e.Entry, e.Err)
}

func (e *StoreLookupError) Unwrap() error {
	return e.Err
}

func (e *StoreLookupError) Is(target error) bool {
	return target == ErrStoreLookupFailed
}
