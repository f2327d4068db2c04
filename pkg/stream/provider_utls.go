//go:build !secstream_noutls

package stream

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"

	utls "github.com/refraction-networking/utls"
)

var fingerprints = map[string]utls.ClientHelloID{
	"chrome":     utls.HelloChrome_Auto,
	"firefox":    utls.HelloFirefox_Auto,
	"safari":     utls.HelloSafari_Auto,
	"edge":       utls.HelloEdge_Auto,
	"ios":        utls.HelloIOS_Auto,
	"golang":     utls.HelloGolang,
	"randomized": utls.HelloRandomized,
}

// Fingerprints lists the ClientHello fingerprints accepted by
// Dialer.Fingerprint.
func Fingerprints() []string {
	names := make([]string, 0, len(fingerprints))
	for name := range fingerprints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func clientHelloID(name string) (utls.ClientHelloID, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return utls.HelloChrome_Auto, nil
	}
	id, ok := fingerprints[name]
	if !ok {
		return utls.ClientHelloID{}, fmt.Errorf("unknown utls fingerprint %q, expected one of %s", name, strings.Join(Fingerprints(), ", "))
	}
	return id, nil
}

type utlsSession struct {
	*utls.UConn
}

func (s utlsSession) state() ConnState {
	cs := s.ConnectionState()
	return ConnState{
		Version:            cs.Version,
		CipherSuite:        cs.CipherSuite,
		ServerName:         cs.ServerName,
		NegotiatedProtocol: cs.NegotiatedProtocol,
		PeerCertificates:   cs.PeerCertificates,
	}
}

// withALPN rewrites the ALPN offer of a browser ClientHello. Browsers
// offer h2; an empty protos drops ALPN and ALPS so that no application
// protocol is negotiated, as with the crypto/tls providers.
func withALPN(exts []utls.TLSExtension, protos []string) []utls.TLSExtension {
	out := make([]utls.TLSExtension, 0, len(exts))
	for _, ext := range exts {
		switch e := ext.(type) {
		case *utls.ALPNExtension:
			if len(protos) == 0 {
				continue
			}
			e.AlpnProtocols = protos
		case *utls.ApplicationSettingsExtension:
			if len(protos) == 0 {
				continue
			}
		}
		out = append(out, ext)
	}
	return out
}

func newUClient(raw net.Conn, cfg *utls.Config, id utls.ClientHelloID) (*utls.UConn, error) {
	switch id {
	case utls.HelloGolang:
		// Built from cfg, NextProtos included.
		return utls.UClient(raw, cfg, id), nil
	case utls.HelloRandomized:
		if len(cfg.NextProtos) == 0 {
			return utls.UClient(raw, cfg, utls.HelloRandomizedNoALPN), nil
		}
		return utls.UClient(raw, cfg, utls.HelloRandomizedALPN), nil
	}

	spec, err := utls.UTLSIdToSpec(id)
	if err != nil {
		return nil, fmt.Errorf("build %s ClientHello: %w", id.Str(), err)
	}
	spec.Extensions = withALPN(spec.Extensions, cfg.NextProtos)
	conn := utls.UClient(raw, cfg, utls.HelloCustom)
	if err := conn.ApplyPreset(&spec); err != nil {
		return nil, fmt.Errorf("apply %s ClientHello: %w", id.Str(), err)
	}
	return conn, nil
}

func utlsHandshake(ctx context.Context, raw net.Conn, opts handshakeOptions) (session, error) {
	id, err := clientHelloID(opts.fingerprint)
	if err != nil {
		return nil, err
	}
	conn, err := newUClient(raw, &utls.Config{
		ServerName: opts.host,
		RootCAs:    opts.roots,
		MinVersion: utls.VersionTLS12,
		NextProtos: opts.nextProtos,
	}, id)
	if err != nil {
		return nil, err
	}
	if err := conn.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	return utlsSession{UConn: conn}, nil
}
