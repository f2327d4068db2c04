package keyring

import (
	"fmt"

	"github.com/systmms/secstream/pkg/coroutine"
)

// ReadRequest asks the runtime for the secret stored at Entry. The
// runtime answers with []byte.
type ReadRequest struct {
	Entry Entry
}

// Kind implements coroutine.Request.
func (*ReadRequest) Kind() string { return "keyring.read" }

func (r *ReadRequest) String() string { return "read " + r.Entry.String() }

// WriteRequest asks the runtime to store Secret at Entry. The runtime
// answers with struct{}.
type WriteRequest struct {
	Entry  Entry
	Secret []byte
}

// Kind implements coroutine.Request.
func (*WriteRequest) Kind() string { return "keyring.write" }

func (r WriteRequest) String() string { return "write " + r.Entry.String() }

// GoString keeps %#v from printing Secret.
func (r WriteRequest) GoString() string {
	return fmt.Sprintf("&keyring.WriteRequest{Entry:%q, Secret:[REDACTED]}", r.Entry.String())
}

// Format keeps every verb from printing Secret.
func (r WriteRequest) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		fmt.Fprint(f, r.GoString())
		return
	}
	fmt.Fprint(f, r.String())
}

// DeleteRequest asks the runtime to remove Entry. The runtime answers with
// struct{}.
type DeleteRequest struct {
	Entry Entry
}

// Kind implements coroutine.Request.
func (*DeleteRequest) Kind() string { return "keyring.delete" }

func (r *DeleteRequest) String() string { return "delete " + r.Entry.String() }

// Execute performs req against store. It is the blocking implementation
// runtimes use for keyring requests.
func Execute(store Store, req coroutine.Request) (any, error) {
	switch r := req.(type) {
	case *ReadRequest:
		return store.Get(r.Entry)
	case *WriteRequest:
		return struct{}{}, store.Set(r.Entry, r.Secret)
	case *DeleteRequest:
		return struct{}{}, store.Delete(r.Entry)
	default:
		return nil, fmt.Errorf("keyring: unsupported request %q", req.Kind())
	}
}
