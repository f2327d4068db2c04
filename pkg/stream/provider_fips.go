//go:build !secstream_nofips

package stream

import (
	"context"
	"crypto/fips140"
	"crypto/tls"
	"net"
)

// fipsCipherSuites are the TLS 1.2 suites approved under FIPS 140-3.
// TLS 1.3 suites are not configurable and are restricted by the Go FIPS
// module itself when it is enabled.
var fipsCipherSuites = []uint16{
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
}

var fipsCurves = []tls.CurveID{tls.CurveP256, tls.CurveP384}

func fipsConfig(opts handshakeOptions) *tls.Config {
	return &tls.Config{
		ServerName:       opts.host,
		RootCAs:          opts.roots,
		MinVersion:       tls.VersionTLS12,
		MaxVersion:       tls.VersionTLS13,
		CipherSuites:     fipsCipherSuites,
		CurvePreferences: fipsCurves,
		NextProtos:       opts.nextProtos,
	}
}

func fipsHandshake(ctx context.Context, raw net.Conn, opts handshakeOptions) (session, error) {
	return stdHandshake(ctx, raw, fipsConfig(opts), fips140.Enabled())
}
