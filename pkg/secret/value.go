package secret

import (
	"crypto/subtle"
	"fmt"

	"github.com/systmms/secstream/internal/secure"
)

const redacted = "[REDACTED]"

// Value is a resolved plaintext credential held in a memguard enclave.
//
// Printing, logging or marshalling a Value never shows the plaintext. Use
// Reveal, Bytes or Expose to read it deliberately, and Destroy once done.
type Value struct {
	buf *secure.Buffer
}

// NewValue seals b into a Value. b is wiped.
func NewValue(b []byte) *Value {
	return &Value{buf: secure.NewBuffer(b)}
}

// NewValueString seals a copy of s.
func NewValueString(s string) *Value {
	return NewValue([]byte(s))
}

// Reveal returns the plaintext as a string. It returns "" once the value
// has been destroyed.
func (v *Value) Reveal() string {
	b := v.Bytes()
	return string(b)
}

// Bytes returns a copy of the plaintext. The caller owns the copy and
// should clear it after use.
func (v *Value) Bytes() []byte {
	if v == nil || v.buf == nil {
		return nil
	}
	b, err := v.buf.Copy()
	if err != nil {
		return nil
	}
	return b
}

// Expose hands the plaintext to fn without copying it out of locked
// memory. fn must not retain the slice.
func (v *Value) Expose(fn func([]byte) error) error {
	if v == nil || v.buf == nil {
		return fn(nil)
	}
	return v.buf.With(fn)
}

// Len returns the plaintext length in bytes.
func (v *Value) Len() int {
	if v == nil || v.buf == nil {
		return 0
	}
	return v.buf.Len()
}

// IsEmpty reports a zero-length credential.
func (v *Value) IsEmpty() bool {
	return v.Len() == 0
}

// Equal compares the plaintext with b in constant time.
func (v *Value) Equal(b []byte) bool {
	var eq bool
	_ = v.Expose(func(p []byte) error {
		eq = subtle.ConstantTimeCompare(p, b) == 1
		return nil
	})
	return eq
}

// Destroy wipes the plaintext. It is safe to call more than once.
func (v *Value) Destroy() {
	if v == nil || v.buf == nil {
		return
	}
	v.buf.Destroy()
}

func (v *Value) String() string { return redacted }

func (v *Value) GoString() string { return "secret.Value{" + redacted + "}" }

// Format redacts every verb, including %x and %q.
func (v *Value) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		fmt.Fprint(f, v.GoString())
		return
	}
	fmt.Fprint(f, redacted)
}

func (v *Value) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

func (v *Value) MarshalYAML() (any, error) {
	return redacted, nil
}

func (v *Value) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}
