//go:build secstream_nocryptotls

package stream

import (
	"context"
	"net"

	"github.com/systmms/secstream/pkg/capability"
)

func cryptoHandshake(context.Context, net.Conn, handshakeOptions) (session, error) {
	return nil, capability.Require(capability.CryptoTLS)
}
