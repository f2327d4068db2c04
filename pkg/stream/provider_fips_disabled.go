//go:build secstream_nofips

package stream

import (
	"context"
	"net"

	"github.com/systmms/secstream/pkg/capability"
)

func fipsHandshake(context.Context, net.Conn, handshakeOptions) (session, error) {
	return nil, capability.Require(capability.FIPSTLS)
}
