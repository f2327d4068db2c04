package stream

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"sync"
)

// ConnState summarizes a negotiated TLS session independently of the
// provider that produced it.
type ConnState struct {
	Version            uint16
	CipherSuite        uint16
	ServerName         string
	NegotiatedProtocol string
	PeerCertificates   []*x509.Certificate
	// FIPS reports that the Go FIPS 140-3 module was active for the
	// session. Only fips-tls sets it.
	FIPS bool
}

// VersionName returns the protocol version, e.g. "TLS 1.3".
func (s ConnState) VersionName() string {
	return tls.VersionName(s.Version)
}

// CipherSuiteName returns the IANA name of the negotiated suite.
func (s ConnState) CipherSuiteName() string {
	return tls.CipherSuiteName(s.CipherSuite)
}

// session is an established TLS connection of any provider.
type session interface {
	net.Conn
	state() ConnState
}

// stdSession adapts a crypto/tls connection, shared by crypto-tls and
// fips-tls.
type stdSession struct {
	*tls.Conn
	fips bool
}

func (s stdSession) state() ConnState {
	cs := s.ConnectionState()
	return ConnState{
		Version:            cs.Version,
		CipherSuite:        cs.CipherSuite,
		ServerName:         cs.ServerName,
		NegotiatedProtocol: cs.NegotiatedProtocol,
		PeerCertificates:   cs.PeerCertificates,
		FIPS:               s.fips,
	}
}

func stdHandshake(ctx context.Context, raw net.Conn, cfg *tls.Config, fips bool) (session, error) {
	conn := tls.Client(raw, cfg)
	if err := conn.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	return stdSession{Conn: conn, fips: fips}, nil
}

// handshakeOptions carries per-dial settings into a provider.
type handshakeOptions struct {
	host        string
	roots       *x509.CertPool
	fingerprint string
	nextProtos  []string
}

// handshake dispatches to the selected provider. Every provider is listed
// here; providers missing from the build return a capability error.
func handshake(ctx context.Context, sel TLS, raw net.Conn, opts handshakeOptions) (session, error) {
	switch sel {
	case TLSCrypto:
		return cryptoHandshake(ctx, raw, opts)
	case TLSFIPS:
		return fipsHandshake(ctx, raw, opts)
	case TLSUTLS:
		return utlsHandshake(ctx, raw, opts)
	case TLSNone:
		return nil, ErrSecureTargetWithoutTLS
	}
	return nil, fmt.Errorf("unknown TLS provider %s", sel)
}

type backend struct {
	once  sync.Once
	roots *x509.CertPool
	err   error
}

var backends = map[TLS]*backend{
	TLSCrypto: {},
	TLSFIPS:   {},
	TLSUTLS:   {},
}

// Install loads the default backend of a provider: the platform trust
// store it verifies against. It runs once per provider and later calls,
// concurrent ones included, return the first result. Installing TLSNone
// is a no-op.
func Install(sel TLS) error {
	_, err := install(sel)
	return err
}

func install(sel TLS) (*x509.CertPool, error) {
	if sel == TLSNone {
		return nil, nil
	}
	if err := sel.check(); err != nil {
		return nil, err
	}
	b := backends[sel]
	b.once.Do(func() {
		b.roots, b.err = x509.SystemCertPool()
		if b.err != nil {
			b.err = fmt.Errorf("failed to load system roots for %s: %w", sel, b.err)
		}
	})
	return b.roots, b.err
}
