package fakes

import (
	"sync"

	"github.com/systmms/secstream/pkg/keyring"
)

// FakeKeyringStore is a test double for keyring.Store
type FakeKeyringStore struct {
	mu sync.Mutex

	// Secrets is a map of service -> account -> value
	Secrets map[string]map[string][]byte

	// Err is returned by every operation if set
	Err error

	// Calls counts operations by name ("get", "set", "delete")
	Calls map[string]int
}

// NewFakeKeyringStore creates an empty fake store
func NewFakeKeyringStore() *FakeKeyringStore {
	return &FakeKeyringStore{
		Secrets: make(map[string]map[string][]byte),
		Calls:   make(map[string]int),
	}
}

// SetSecret adds a secret to the fake store
func (f *FakeKeyringStore) SetSecret(service, account string, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(service, account, value)
}

func (f *FakeKeyringStore) put(service, account string, value []byte) {
	if f.Secrets == nil {
		f.Secrets = make(map[string]map[string][]byte)
	}
	if f.Secrets[service] == nil {
		f.Secrets[service] = make(map[string][]byte)
	}
	f.Secrets[service][account] = append([]byte(nil), value...)
}

func (f *FakeKeyringStore) record(op string) {
	if f.Calls == nil {
		f.Calls = make(map[string]int)
	}
	f.Calls[op]++
}

// Get retrieves a secret from the fake store
func (f *FakeKeyringStore) Get(e keyring.Entry) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get")

	if f.Err != nil {
		return nil, &keyring.Error{Op: "get", Service: e.Service, Account: e.Account, Err: f.Err}
	}
	if value, ok := f.Secrets[e.Service][e.Account]; ok {
		return append([]byte(nil), value...), nil
	}
	return nil, &keyring.Error{Op: "get", Service: e.Service, Account: e.Account, Err: keyring.ErrNotFound}
}

// Set stores a secret in the fake store
func (f *FakeKeyringStore) Set(e keyring.Entry, secret []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("set")

	if f.Err != nil {
		return &keyring.Error{Op: "set", Service: e.Service, Account: e.Account, Err: f.Err}
	}
	f.put(e.Service, e.Account, secret)
	return nil
}

// Delete removes a secret from the fake store
func (f *FakeKeyringStore) Delete(e keyring.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete")

	if f.Err != nil {
		return &keyring.Error{Op: "delete", Service: e.Service, Account: e.Account, Err: f.Err}
	}
	if _, ok := f.Secrets[e.Service][e.Account]; !ok {
		return &keyring.Error{Op: "delete", Service: e.Service, Account: e.Account, Err: keyring.ErrNotFound}
	}
	delete(f.Secrets[e.Service], e.Account)
	return nil
}

// Ensure FakeKeyringStore implements keyring.Store
var _ keyring.Store = (*FakeKeyringStore)(nil)
