//go:build secstream_nokeyring

package keyring

import (
	"fmt"

	"github.com/systmms/secstream/pkg/capability"
)

// unsupportedStore stands in when the keyring capability is compiled out.
type unsupportedStore struct{}

// Platform returns a store whose every operation fails.
func Platform() Store {
	return unsupportedStore{}
}

func (unsupportedStore) Get(e Entry) ([]byte, error) {
	return nil, wrap("get", e, unavailable())
}

func (unsupportedStore) Set(e Entry, _ []byte) error {
	return wrap("set", e, unavailable())
}

func (unsupportedStore) Delete(e Entry) error {
	return wrap("delete", e, unavailable())
}

func unavailable() error {
	return fmt.Errorf("%w: %w", ErrUnsupported, capability.Require(capability.Keyring))
}
