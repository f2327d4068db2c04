// Package secret resolves credentials from one of a closed set of sources:
// a literal value, the first line printed by a command, or an entry in the
// platform credential store.
//
// Resolution is written against the Suspension Protocol (pkg/coroutine):
// Secret.Resolve returns a coroutine that asks for process or keyring I/O
// instead of performing it, so any coroutine.Runtime can drive it. Get
// drives it with the blocking runtime.
//
//	s, err := secret.NewCommand(process.Program("pass", "show", "github"))
//	if err != nil {
//	    return err // capability "command" not in this build
//	}
//	v, err := s.Get(ctx)
//	if err != nil {
//	    return err
//	}
//	defer v.Destroy()
package secret

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/systmms/secstream/internal/secure"
	"github.com/systmms/secstream/pkg/blocking"
	"github.com/systmms/secstream/pkg/capability"
	"github.com/systmms/secstream/pkg/coroutine"
	"github.com/systmms/secstream/pkg/keyring"
	"github.com/systmms/secstream/pkg/process"
)

// Kind names a variant on the wire and in metrics.
type Kind string

const (
	KindRaw     Kind = "raw"
	KindCommand Kind = "command"
	KindKeyring Kind = "keyring"
)

// Variant is one credential source. The set is closed: Raw, Command and
// Keyring are the only implementations.
type Variant interface {
	Kind() Kind
	sealed()
}

// Raw is a literal credential.
type Raw struct {
	buf *secure.Buffer
}

// Command is a process whose first line of stdout is the credential.
type Command struct {
	Cmd process.Command
}

// Keyring is an entry in the platform credential store.
type Keyring struct {
	Entry keyring.Entry
}

func (Raw) Kind() Kind     { return KindRaw }
func (Command) Kind() Kind { return KindCommand }
func (Keyring) Kind() Kind { return KindKeyring }

func (Raw) sealed()     {}
func (Command) sealed() {}
func (Keyring) sealed() {}

// Secret is an immutable credential source. The zero Secret is an empty
// Raw secret.
type Secret struct {
	v Variant
}

// NewRaw returns a literal secret. It never fails.
func NewRaw(value string) Secret {
	return Secret{v: Raw{buf: secure.NewBufferFromString(value)}}
}

// NewRawBytes returns a literal secret sealing b. b is wiped.
func NewRawBytes(b []byte) Secret {
	return Secret{v: Raw{buf: secure.NewBuffer(b)}}
}

// NewCommand returns a command secret, or a capability error when command
// execution is not part of this build.
func NewCommand(cmd process.Command) (Secret, error) {
	if err := capability.Require(capability.Command); err != nil {
		return Secret{}, err
	}
	if err := cmd.Validate(); err != nil {
		return Secret{}, err
	}
	return Secret{v: Command{Cmd: cmd}}, nil
}

// NewKeyring returns a credential store secret, or a capability error when
// keyring support is not part of this build.
func NewKeyring(e keyring.Entry) (Secret, error) {
	if err := capability.Require(capability.Keyring); err != nil {
		return Secret{}, err
	}
	if err := e.Validate(); err != nil {
		return Secret{}, err
	}
	return Secret{v: Keyring{Entry: e}}, nil
}

// Variant returns the active variant.
func (s Secret) Variant() Variant {
	if s.v == nil {
		return Raw{}
	}
	return s.v
}

// Kind returns the active variant's kind.
func (s Secret) Kind() Kind {
	return s.Variant().Kind()
}

// Equal reports whether s and o are the same variant with the same
// payload. Raw payloads are compared in constant time.
func (s Secret) Equal(o Secret) bool {
	switch a := s.Variant().(type) {
	case Raw:
		b, ok := o.Variant().(Raw)
		if !ok {
			return false
		}
		x, y := rawBytes(a), rawBytes(b)
		defer clear(x)
		defer clear(y)
		return subtle.ConstantTimeCompare(x, y) == 1
	case Command:
		b, ok := o.Variant().(Command)
		return ok && commandsEqual(a.Cmd, b.Cmd)
	case Keyring:
		b, ok := o.Variant().(Keyring)
		return ok && a.Entry == b.Entry
	}
	return false
}

func commandsEqual(a, b process.Command) bool {
	return a.Shell == b.Shell &&
		a.Program == b.Program &&
		a.Dir == b.Dir &&
		slices.Equal(a.Args, b.Args) &&
		maps.Equal(a.Env, b.Env)
}

func rawBytes(r Raw) []byte {
	if r.buf == nil {
		return nil
	}
	b, err := r.buf.Copy()
	if err != nil {
		return nil
	}
	return b
}

func (s Secret) String() string {
	switch v := s.Variant().(type) {
	case Raw:
		return "raw(" + redacted + ")"
	case Command:
		return "command(" + v.Cmd.Name() + ")"
	case Keyring:
		return "keyring(" + v.Entry.String() + ")"
	}
	return "secret(?)"
}

func (s Secret) GoString() string {
	return "secret.Secret{" + s.String() + "}"
}

// Format prints the redacted String form for every verb.
func (s Secret) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		fmt.Fprint(f, s.GoString())
		return
	}
	fmt.Fprint(f, s.String())
}

// Get resolves s with the blocking runtime.
func (s Secret) Get(ctx context.Context) (*Value, error) {
	return s.GetWith(ctx, blocking.New())
}

// GetWith resolves s, executing I/O with rt.
//
// Process and keyring failures reported by rt come back as
// *coroutine.IOError; keyring ones are additionally wrapped in a
// *StoreLookupError. Every error carries the operation as context.
func (s Secret) GetWith(ctx context.Context, rt coroutine.Runtime) (*Value, error) {
	v, err := coroutine.Drive[*Value](ctx, s.Resolve(), rt)
	if err == nil {
		return v, nil
	}

	var ioErr *coroutine.IOError
	if errors.As(err, &ioErr) {
		if k, isKeyring := s.Variant().(Keyring); isKeyring {
			err = &StoreLookupError{Entry: k.Entry, Err: ioErr}
		}
		return nil, s.withContext(err)
	}
	return nil, err
}

// withContext prefixes err with the operation s was performing.
func (s Secret) withContext(err error) error {
	switch s.Variant().(type) {
	case Command:
		return fmt.Errorf("read secret via command: %w", err)
	case Keyring:
		return fmt.Errorf("read secret from keyring: %w", err)
	}
	return err
}
