// Package stream opens byte streams to network targets, encrypted with
// one of a closed set of TLS providers chosen per connection.
//
// Which providers exist depends on build tags (see package capability).
// A secure target is never silently downgraded to plaintext.
package stream

import (
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"
)

// Stream is a connected plain or TLS stream. It implements net.Conn.
// A Stream is not reconnected; dial again for a new attempt.
type Stream struct {
	kind   TLS
	conn   net.Conn
	state  *ConnState
	closed atomic.Bool
}

var _ net.Conn = (*Stream)(nil)

func newStream(kind TLS, conn net.Conn, state *ConnState) *Stream {
	return &Stream{kind: kind, conn: conn, state: state}
}

// Kind returns the provider, or TLSNone for plain streams.
func (s *Stream) Kind() TLS {
	return s.kind
}

// Secure reports whether the stream is encrypted.
func (s *Stream) Secure() bool {
	return s.kind != TLSNone
}

// ConnectionState returns the negotiated session. ok is false for plain
// streams.
func (s *Stream) ConnectionState() (state ConnState, ok bool) {
	if s.state == nil {
		return ConnState{}, false
	}
	return *s.state, true
}

// Closed reports whether Close has been called.
func (s *Stream) Closed() bool {
	return s.closed.Load()
}

func (s *Stream) wrap(op string, err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}
	return &IOError{Op: op, Provider: s.kind, Err: err}
}

func (s *Stream) Read(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, s.wrap("read", net.ErrClosed)
	}
	n, err := s.conn.Read(p)
	return n, s.wrap("read", err)
}

func (s *Stream) Write(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, s.wrap("write", net.ErrClosed)
	}
	n, err := s.conn.Write(p)
	return n, s.wrap("write", err)
}

// Flush exists for symmetry with buffered transports. Writes are not
// buffered, so it only reports whether the stream is still open.
func (s *Stream) Flush() error {
	if s.closed.Load() {
		return s.wrap("flush", net.ErrClosed)
	}
	return nil
}

// Close closes the stream. Closing twice is a no-op.
func (s *Stream) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.wrap("close", s.conn.Close())
}

func (s *Stream) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *Stream) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func (s *Stream) SetDeadline(t time.Time) error {
	return s.conn.SetDeadline(t)
}

func (s *Stream) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

func (s *Stream) SetWriteDeadline(t time.Time) error {
	return s.conn.SetWriteDeadline(t)
}
