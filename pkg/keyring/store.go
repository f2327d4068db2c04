package keyring

import (
	"errors"
	"fmt"
	"strings"
)

// Store is the credential-store collaborator.
type Store interface {
	Get(e Entry) ([]byte, error)
	Set(e Entry, secret []byte) error
	Delete(e Entry) error
}

// Keyring sentinel errors
var (
	ErrNotFound     = errors.New("keyring entry not found")
	ErrAccessDenied = errors.New("keyring access denied")
	ErrUnsupported  = errors.New("keyring not supported on this platform")
)

// Error wraps store errors with the operation and entry.
type Error struct {
	Op      string
	Service string
	Account string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("keyring %s %s/%s: %v", e.Op, e.Service, e.Account, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op string, e Entry, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Service: e.Service, Account: e.Account, Err: err}
}

// isAccessDenied matches the messages the platform backends use when the
// user refuses or the store is locked.
func isAccessDenied(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "access denied") ||
		strings.Contains(msg, "user denied") ||
		strings.Contains(msg, "accessdenied") ||
		strings.Contains(msg, "canceled") ||
		strings.Contains(msg, "locked")
}
