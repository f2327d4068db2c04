//go:build secstream_noutls

package stream

import (
	"context"
	"net"

	"github.com/systmms/secstream/pkg/capability"
)

// Fingerprints returns nil when utls is not compiled in.
func Fingerprints() []string {
	return nil
}

func utlsHandshake(context.Context, net.Conn, handshakeOptions) (session, error) {
	return nil, capability.Require(capability.UTLS)
}
