package keyring

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/secstream/pkg/coroutine"
)

type mapStore struct {
	data map[Entry][]byte
	err  error
}

func (m *mapStore) Get(e Entry) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.data[e]
	if !ok {
		return nil, wrap("get", e, ErrNotFound)
	}
	return v, nil
}

func (m *mapStore) Set(e Entry, secret []byte) error {
	if m.err != nil {
		return m.err
	}
	m.data[e] = secret
	return nil
}

func (m *mapStore) Delete(e Entry) error {
	if _, ok := m.data[e]; !ok {
		return wrap("delete", e, ErrNotFound)
	}
	delete(m.data, e)
	return nil
}

func storeRuntime(s Store) coroutine.Runtime {
	return coroutine.RuntimeFunc(func(_ context.Context, req coroutine.Request) (any, error) {
		return Execute(s, req)
	})
}

var alice = Entry{Service: "github", Account: "alice"}

func TestReadWriteDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &mapStore{data: map[Entry][]byte{}}
	rt := storeRuntime(store)

	_, err := coroutine.Drive(ctx, WriteSecret(alice, []byte("hunter2")), rt)
	require.NoError(t, err)

	got, err := coroutine.Drive(ctx, ReadSecret(alice), rt)
	require.NoError(t, err)
	assert.Equal(t, []byte("hunter2"), got)

	_, err = coroutine.Drive(ctx, DeleteSecret(alice), rt)
	require.NoError(t, err)

	_, err = coroutine.Drive(ctx, ReadSecret(alice), rt)
	assert.ErrorIs(t, err, ErrNotFound)
	var ioErr *coroutine.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "keyring.read", ioErr.Request.Kind())
	var kerr *Error
	require.True(t, errors.As(err, &kerr))
	assert.Equal(t, "get", kerr.Op)
}

func TestReadSecretSteps(t *testing.T) {
	t.Parallel()

	co := ReadSecret(alice)
	step := co.Resume(nil)
	require.Equal(t, coroutine.StateNeedsIO, step.State)
	assert.Equal(t, &ReadRequest{Entry: alice}, step.Request)

	step = co.Resume(42)
	require.Equal(t, coroutine.StateFailed, step.State)
	var unexpected *coroutine.UnexpectedInputError
	require.True(t, errors.As(step.Err, &unexpected))
	assert.Equal(t, "[]uint8", unexpected.Want)

	step = co.Resume([]byte("late"))
	assert.ErrorIs(t, step.Err, coroutine.ErrConsumed)
}

func TestReadSecretInvalidEntry(t *testing.T) {
	t.Parallel()

	step := ReadSecret(Entry{Service: "github"}).Resume(nil)
	require.Equal(t, coroutine.StateFailed, step.State)
	assert.Contains(t, step.Err.Error(), "account cannot be empty")
}

func TestWriteRequestIsRedacted(t *testing.T) {
	t.Parallel()

	req := &WriteRequest{Entry: alice, Secret: []byte("hunter2")}
	for _, format := range []string{"%v", "%+v", "%#v", "%s"} {
		out := fmt.Sprintf(format, req)
		assert.NotContains(t, out, "hunter2", format)
		assert.Contains(t, out, "github/alice", format)
	}
	assert.NotContains(t, fmt.Sprintf("%v", *req), "hunter2")
}

func TestExecuteUnknownRequest(t *testing.T) {
	t.Parallel()

	_, err := Execute(&mapStore{}, unknownRequest{})
	assert.ErrorContains(t, err, "unsupported request")
}

type unknownRequest struct{}

func (unknownRequest) Kind() string { return "other" }

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := wrap("get", alice, ErrAccessDenied)
	assert.Equal(t, "keyring get github/alice: keyring access denied", err.Error())
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.NoError(t, wrap("get", alice, nil))
}

func TestIsAccessDenied(t *testing.T) {
	t.Parallel()

	assert.True(t, isAccessDenied(errors.New("User denied access")))
	assert.True(t, isAccessDenied(errors.New("operation canceled")))
	assert.False(t, isAccessDenied(errors.New("secret not found")))
}
