package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned when opening a destroyed Buffer.
var ErrDestroyed = errors.New("secure buffer destroyed")

// Buffer is memory-safe storage for one secret.
//
// memguard cannot seal an empty value, so empty secrets are tracked
// without an enclave and open as empty locked buffers.
type Buffer struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	size      int
	destroyed bool
}

// NewBuffer seals data into an enclave. data is wiped by memguard once it
// has been copied.
func NewBuffer(data []byte) *Buffer {
	b := &Buffer{size: len(data)}
	if len(data) > 0 {
		b.enclave = memguard.NewEnclave(data)
	}
	return b
}

// NewBufferFromString seals a copy of s.
func NewBufferFromString(s string) *Buffer {
	return NewBuffer([]byte(s))
}

// Len returns the plaintext length.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Open decrypts into a locked buffer. The caller must Destroy it.
func (b *Buffer) Open() (*memguard.LockedBuffer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed {
		return nil, ErrDestroyed
	}
	if b.enclave == nil {
		return memguard.NewBuffer(0), nil
	}
	return b.enclave.Open()
}

// With opens the buffer, hands the plaintext to fn and wipes it again.
// fn must not retain the slice.
func (b *Buffer) With(fn func([]byte) error) error {
	locked, err := b.Open()
	if err != nil {
		return err
	}
	defer locked.Destroy()
	return fn(locked.Bytes())
}

// Copy returns the plaintext in ordinary memory.
func (b *Buffer) Copy() ([]byte, error) {
	var out []byte
	err := b.With(func(p []byte) error {
		out = make([]byte, len(p))
		copy(out, p)
		return nil
	})
	return out, err
}

// Destroy drops the enclave. It is idempotent; later Opens fail with
// ErrDestroyed.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.enclave = nil
	b.size = 0
	b.destroyed = true
}

// Destroyed reports whether Destroy has been called.
func (b *Buffer) Destroyed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.destroyed
}
