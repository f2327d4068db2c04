package stream

import (
	"context"
	"crypto/x509"
	"fmt"
	"net"
	"time"

	"github.com/systmms/secstream/internal/logging"
	"github.com/systmms/secstream/internal/metrics"
)

// Dialer opens plain and TLS streams. The zero value is usable.
type Dialer struct {
	// Timeout bounds the TCP connect and TLS handshake together. Zero
	// means no limit beyond the context.
	Timeout time.Duration
	// RootCAs replaces the platform trust store when set.
	RootCAs *x509.CertPool
	// Fingerprint names the ClientHello presented by utls; see
	// Fingerprints. Empty selects chrome.
	Fingerprint string
	// NextProtos is the ALPN list offered by every provider. Empty offers
	// no ALPN, so the stream carries whatever the caller writes.
	NextProtos []string
	Logger     *logging.Logger
	Metrics     *metrics.Metrics
}

// DefaultDialer is used by Connect.
var DefaultDialer = &Dialer{Timeout: 30 * time.Second}

// Connect parses target and dials it with DefaultDialer.
func Connect(ctx context.Context, target string, sel TLS) (*Stream, error) {
	t, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}
	return DefaultDialer.Dial(ctx, t, sel)
}

// DialHost connects to host:port, encrypting with sel unless it is
// TLSNone.
func (d *Dialer) DialHost(ctx context.Context, host string, port uint16, sel TLS) (*Stream, error) {
	if host == "" {
		return nil, ErrMissingHost
	}
	if port == 0 {
		return nil, fmt.Errorf("%w: port 0", ErrUnresolvablePort)
	}
	return d.Dial(ctx, Target{Host: host, Port: port, Secure: sel != TLSNone}, sel)
}

// Dial connects to target. Targets that are not secure get a plain stream
// whatever sel is. Secure targets are never downgraded: TLSNone fails with
// ErrSecureTargetWithoutTLS before any socket is opened.
func (d *Dialer) Dial(ctx context.Context, target Target, sel TLS) (s *Stream, err error) {
	kind := TLSNone
	if target.Secure {
		kind = sel
	}
	defer func() {
		d.Metrics.RecordConnect(kind.String(), err)
	}()

	if !target.Secure {
		return d.dialPlain(ctx, target)
	}
	if sel == TLSNone {
		return nil, fmt.Errorf("%w: %s", ErrSecureTargetWithoutTLS, target)
	}
	return d.dialTLS(ctx, target, sel)
}

func (d *Dialer) logger() *logging.Logger {
	if d.Logger == nil {
		return logging.Nop()
	}
	return d.Logger
}

func (d *Dialer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.Timeout > 0 {
		return context.WithTimeout(ctx, d.Timeout)
	}
	return context.WithCancel(ctx)
}

func (d *Dialer) dialTCP(ctx context.Context, target Target, sel TLS) (net.Conn, error) {
	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "tcp", target.Address())
	if err != nil {
		return nil, &IOError{Op: "dial", Provider: sel, Err: err}
	}
	return conn, nil
}

func (d *Dialer) dialPlain(ctx context.Context, target Target) (*Stream, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	d.logger().Debug("Connecting to %s without TLS", target.Address())
	conn, err := d.dialTCP(ctx, target, TLSNone)
	if err != nil {
		return nil, err
	}
	return newStream(TLSNone, conn, nil), nil
}

func (d *Dialer) dialTLS(ctx context.Context, target Target, sel TLS) (*Stream, error) {
	roots, err := install(sel)
	if err != nil {
		return nil, err
	}
	if d.RootCAs != nil {
		roots = d.RootCAs
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	d.logger().Debug("Connecting to %s with %s", target.Address(), sel)
	raw, err := d.dialTCP(ctx, target, sel)
	if err != nil {
		return nil, err
	}

	sess, err := handshake(ctx, sel, raw, handshakeOptions{
		host:        target.Host,
		roots:       roots,
		fingerprint: d.Fingerprint,
		nextProtos:  d.NextProtos,
	})
	if err != nil {
		_ = raw.Close()
		return nil, &IOError{Op: "handshake", Provider: sel, Err: err}
	}

	state := sess.state()
	d.logger().Trace("Negotiated %s %s with %s", state.VersionName(), state.CipherSuiteName(), target.Host)
	return newStream(sel, sess, &state), nil
}
