package stream

import (
	"errors"
	"fmt"
)

// Target and connection sentinel errors
var (
	ErrMissingHost            = errors.New("target has no host")
	ErrUnresolvablePort       = errors.New("cannot determine target port")
	ErrUnsupportedScheme      = errors.New("unsupported target scheme")
	ErrSecureTargetWithoutTLS = errors.New("secure target requires a TLS provider")
)

// IOError wraps a failure of the underlying connection. Op is one of
// "dial", "handshake", "read", "write" or "close".
type IOError struct {
	Op       string
	Provider TLS
	Err      error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
