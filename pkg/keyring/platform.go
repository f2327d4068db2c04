//go:build !secstream_nokeyring

package keyring

import (
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"
)

// platformStore is backed by github.com/zalando/go-keyring.
type platformStore struct{}

// Platform returns the store for the current operating system.
func Platform() Store {
	return platformStore{}
}

func (platformStore) Get(e Entry) ([]byte, error) {
	secret, err := gokeyring.Get(e.Service, e.Account)
	if err != nil {
		return nil, wrap("get", e, classify(err))
	}
	return []byte(secret), nil
}

func (platformStore) Set(e Entry, secret []byte) error {
	return wrap("set", e, classify(gokeyring.Set(e.Service, e.Account, string(secret))))
}

func (platformStore) Delete(e Entry) error {
	return wrap("delete", e, classify(gokeyring.Delete(e.Service, e.Account)))
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gokeyring.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, gokeyring.ErrUnsupportedPlatform):
		return ErrUnsupported
	case errors.Is(err, gokeyring.ErrSetDataTooBig):
		return fmt.Errorf("secret too large for platform store: %w", err)
	case isAccessDenied(err):
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	return err
}
