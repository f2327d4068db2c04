package stream

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/secstream/internal/metrics"
)

func newTLSServer(t *testing.T) (*httptest.Server, *x509.CertPool) {
	t.Helper()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "hello over tls")
	}))
	t.Cleanup(srv.Close)

	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())
	return srv, pool
}

// newEchoServer accepts connections and echoes what it reads.
func newEchoServer(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer func() { _ = conn.Close() }()
				_, _ = io.Copy(conn, conn)
			}()
		}
	}()
	return ln
}

func getRoot(t *testing.T, s *Stream) string {
	t.Helper()
	_, err := fmt.Fprint(s, "GET / HTTP/1.1\r\nHost: localhost\r\nConnection: close\r\n\r\n")
	require.NoError(t, err)
	require.NoError(t, s.Flush())

	resp, err := http.ReadResponse(bufio.NewReader(s), nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	return string(body)
}

func TestDialPlainEcho(t *testing.T) {
	t.Parallel()
	ln := newEchoServer(t)

	s, err := Connect(context.Background(), ln.Addr().String(), TLSNone)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.Equal(t, TLSNone, s.Kind())
	assert.False(t, s.Secure())
	_, ok := s.ConnectionState()
	assert.False(t, ok)
	assert.Equal(t, ln.Addr().String(), s.RemoteAddr().String())

	_, err = s.Write([]byte("ping"))
	require.NoError(t, err)
	require.NoError(t, s.SetDeadline(time.Now().Add(5*time.Second)))

	buf := make([]byte, 4)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))
}

func TestInsecureTargetIgnoresSelection(t *testing.T) {
	t.Parallel()
	ln := newEchoServer(t)

	for _, sel := range append([]TLS{TLSNone}, Providers...) {
		target := "http://" + ln.Addr().String() + "/"
		s, err := Connect(context.Background(), target, sel)
		require.NoError(t, err, sel.String())
		assert.Equal(t, TLSNone, s.Kind(), sel.String())
		require.NoError(t, s.Close())
	}
}

func TestSecureTargetWithoutTLSOpensNoSocket(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	d := &Dialer{}
	_, err = d.Dial(context.Background(), Target{Scheme: "https", Host: "127.0.0.1", Port: port, Secure: true}, TLSNone)
	require.ErrorIs(t, err, ErrSecureTargetWithoutTLS)

	require.NoError(t, ln.(*net.TCPListener).SetDeadline(time.Now().Add(100*time.Millisecond)))
	_, err = ln.Accept()
	var netErr net.Error
	require.True(t, errors.As(err, &netErr), "expected accept timeout, got %v", err)
	assert.True(t, netErr.Timeout())
}

func TestConnectParsesTarget(t *testing.T) {
	t.Parallel()

	_, err := Connect(context.Background(), "gopher://example.com", TLSNone)
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = Connect(context.Background(), "https://example.com", TLSNone)
	assert.ErrorIs(t, err, ErrSecureTargetWithoutTLS)
}

func TestDialHostValidates(t *testing.T) {
	t.Parallel()
	d := &Dialer{}

	_, err := d.DialHost(context.Background(), "", 443, TLSNone)
	assert.ErrorIs(t, err, ErrMissingHost)

	_, err = d.DialHost(context.Background(), "example.com", 0, TLSNone)
	assert.ErrorIs(t, err, ErrUnresolvablePort)
}

func TestDialTLSProviders(t *testing.T) {
	t.Parallel()
	srv, pool := newTLSServer(t)
	target, err := ParseTarget(srv.URL)
	require.NoError(t, err)
	require.True(t, target.Secure)

	for _, sel := range Providers {
		t.Run(sel.String(), func(t *testing.T) {
			t.Parallel()
			if !sel.Available() {
				t.Skipf("%s not compiled in", sel)
			}

			d := &Dialer{Timeout: 10 * time.Second, RootCAs: pool, Fingerprint: "golang"}
			s, err := d.Dial(context.Background(), target, sel)
			require.NoError(t, err)
			defer func() { _ = s.Close() }()

			assert.Equal(t, sel, s.Kind())
			assert.True(t, s.Secure())

			state, ok := s.ConnectionState()
			require.True(t, ok)
			assert.GreaterOrEqual(t, state.Version, uint16(tls.VersionTLS12))
			assert.NotEmpty(t, state.PeerCertificates)

			assert.Equal(t, "hello over tls", getRoot(t, s))
		})
	}
}

func newHTTP2Server(t *testing.T) (Target, *x509.CertPool) {
	t.Helper()
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, r.Proto)
	}))
	srv.EnableHTTP2 = true
	srv.StartTLS()
	t.Cleanup(srv.Close)

	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())
	target, err := ParseTarget(srv.URL)
	require.NoError(t, err)
	return target, pool
}

func TestDialTLSProviders_NoALPNByDefault(t *testing.T) {
	t.Parallel()
	target, pool := newHTTP2Server(t)

	for _, sel := range Providers {
		t.Run(sel.String(), func(t *testing.T) {
			t.Parallel()
			if !sel.Available() {
				t.Skipf("%s not compiled in", sel)
			}

			d := &Dialer{Timeout: 10 * time.Second, RootCAs: pool}
			s, err := d.Dial(context.Background(), target, sel)
			require.NoError(t, err)
			defer func() { _ = s.Close() }()

			state, ok := s.ConnectionState()
			require.True(t, ok)
			assert.Empty(t, state.NegotiatedProtocol)
			assert.Equal(t, "HTTP/1.1", getRoot(t, s))
		})
	}
}

func TestDialTLSProviders_NextProtos(t *testing.T) {
	t.Parallel()
	target, pool := newHTTP2Server(t)

	for _, sel := range Providers {
		t.Run(sel.String(), func(t *testing.T) {
			t.Parallel()
			if !sel.Available() {
				t.Skipf("%s not compiled in", sel)
			}

			d := &Dialer{Timeout: 10 * time.Second, RootCAs: pool, NextProtos: []string{"http/1.1"}}
			s, err := d.Dial(context.Background(), target, sel)
			require.NoError(t, err)
			defer func() { _ = s.Close() }()

			state, ok := s.ConnectionState()
			require.True(t, ok)
			assert.Equal(t, "http/1.1", state.NegotiatedProtocol)
			assert.Equal(t, "HTTP/1.1", getRoot(t, s))
		})
	}
}

func TestDialUTLSFingerprints_NoALPN(t *testing.T) {
	t.Parallel()
	if !TLSUTLS.Available() {
		t.Skip("utls not compiled in")
	}
	target, pool := newHTTP2Server(t)

	for _, fp := range Fingerprints() {
		t.Run(fp, func(t *testing.T) {
			t.Parallel()
			d := &Dialer{Timeout: 10 * time.Second, RootCAs: pool, Fingerprint: fp}
			s, err := d.Dial(context.Background(), target, TLSUTLS)
			require.NoError(t, err)
			defer func() { _ = s.Close() }()

			state, ok := s.ConnectionState()
			require.True(t, ok)
			assert.Empty(t, state.NegotiatedProtocol)
			assert.Equal(t, "HTTP/1.1", getRoot(t, s))
		})
	}
}

func TestDialHostTLS(t *testing.T) {
	t.Parallel()
	if !TLSCrypto.Available() {
		t.Skip("crypto-tls not compiled in")
	}
	srv, pool := newTLSServer(t)
	addr := srv.Listener.Addr().(*net.TCPAddr)

	d := &Dialer{RootCAs: pool}
	s, err := d.DialHost(context.Background(), "127.0.0.1", uint16(addr.Port), TLSCrypto)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.Equal(t, "hello over tls", getRoot(t, s))
}

func TestDialTLSUntrustedCertificate(t *testing.T) {
	t.Parallel()
	sel := DefaultTLS()
	if sel == TLSNone {
		t.Skip("no TLS provider compiled in")
	}
	srv, _ := newTLSServer(t)
	target, err := ParseTarget(srv.URL)
	require.NoError(t, err)

	_, err = (&Dialer{Timeout: 10 * time.Second}).Dial(context.Background(), target, sel)
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "handshake", ioErr.Op)
	assert.Equal(t, sel, ioErr.Provider)
}

func TestDialRefused(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = Connect(context.Background(), addr, TLSNone)
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "dial", ioErr.Op)
	assert.Equal(t, TLSNone, ioErr.Provider)
}

func TestInstallIsIdempotent(t *testing.T) {
	t.Parallel()

	require.NoError(t, Install(TLSNone))
	for _, sel := range Providers {
		if !sel.Available() {
			continue
		}
		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = Install(sel)
			}(i)
		}
		wg.Wait()
		for _, err := range errs {
			assert.NoError(t, err, sel.String())
		}
		assert.NoError(t, Install(sel), sel.String())
	}
}

func TestStreamAfterClose(t *testing.T) {
	t.Parallel()
	ln := newEchoServer(t)

	s, err := Connect(context.Background(), ln.Addr().String(), TLSNone)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.True(t, s.Closed())
	assert.NoError(t, s.Close())

	_, readErr := s.Read(make([]byte, 1))
	_, writeErr := s.Write([]byte("x"))
	flushErr := s.Flush()

	for op, err := range map[string]error{"read": readErr, "write": writeErr, "flush": flushErr} {
		assert.ErrorIs(t, err, net.ErrClosed, op)
		var ioErr *IOError
		require.True(t, errors.As(err, &ioErr), op)
		assert.Equal(t, op, ioErr.Op)
		assert.Equal(t, TLSNone, ioErr.Provider)
	}
}

func TestStreamEOFIsNotWrapped(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		_, _ = conn.Write([]byte("bye"))
		_ = conn.Close()
	}()

	s, err := Connect(context.Background(), ln.Addr().String(), TLSNone)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	data, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "bye", string(data))

	_, err = s.Read(make([]byte, 1))
	assert.Equal(t, io.EOF, err)
}

func TestDialRecordsMetrics(t *testing.T) {
	t.Parallel()
	ln := newEchoServer(t)
	m := metrics.New()

	target, err := ParseTarget(ln.Addr().String())
	require.NoError(t, err)
	s, err := (&Dialer{Metrics: m}).Dial(context.Background(), target, TLSNone)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = (&Dialer{Metrics: m}).Dial(context.Background(), Target{Host: "127.0.0.1", Port: 1, Secure: true}, TLSNone)
	require.Error(t, err)

	n, err := testutil.GatherAndCount(m.Registry(), "secstream_stream_connects_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
