//go:build !secstream_nocryptotls

package stream

import (
	"context"
	"crypto/tls"
	"net"
)

func cryptoHandshake(ctx context.Context, raw net.Conn, opts handshakeOptions) (session, error) {
	return stdHandshake(ctx, raw, &tls.Config{
		ServerName: opts.host,
		RootCAs:    opts.roots,
		MinVersion: tls.VersionTLS12,
		NextProtos: opts.nextProtos,
	}, false)
}
