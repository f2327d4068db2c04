package stream

import (
	"fmt"
	"strings"

	"github.com/systmms/secstream/pkg/capability"
)

// TLS selects how a secure connection is encrypted. The set is closed.
type TLS uint8

const (
	// TLSNone disables encryption. Secure targets refuse it.
	TLSNone TLS = iota
	// TLSCrypto is crypto/tls verifying against the platform roots.
	TLSCrypto
	// TLSFIPS is crypto/tls restricted to FIPS 140-3 approved versions,
	// cipher suites and curves.
	TLSFIPS
	// TLSUTLS is refraction-networking/utls presenting a browser
	// ClientHello fingerprint.
	TLSUTLS
)

var tlsNames = map[TLS]string{
	TLSNone:   "none",
	TLSCrypto: "crypto-tls",
	TLSFIPS:   "fips-tls",
	TLSUTLS:   "utls",
}

// Providers lists every TLS provider in default priority order.
var Providers = []TLS{TLSCrypto, TLSFIPS, TLSUTLS}

func (t TLS) String() string {
	if name, ok := tlsNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tls(%d)", uint8(t))
}

// Capability returns the capability backing t. TLSNone needs none and
// returns "".
func (t TLS) Capability() capability.Name {
	switch t {
	case TLSCrypto:
		return capability.CryptoTLS
	case TLSFIPS:
		return capability.FIPSTLS
	case TLSUTLS:
		return capability.UTLS
	}
	return ""
}

// Available reports whether t can be used in this build.
func (t TLS) Available() bool {
	return t.check() == nil
}

func (t TLS) check() error {
	if t == TLSNone {
		return nil
	}
	if _, ok := tlsNames[t]; !ok {
		return fmt.Errorf("unknown TLS provider %s", t)
	}
	return capability.Require(t.Capability())
}

// DefaultTLS returns the first available provider in Providers order, or
// TLSNone when the build has none.
func DefaultTLS() TLS {
	for _, t := range Providers {
		if t.Available() {
			return t
		}
	}
	return TLSNone
}

// ParseTLS parses a provider name. "plain" is accepted for "none" and the
// empty string selects DefaultTLS. Providers missing from the build fail
// with a capability error.
func ParseTLS(s string) (TLS, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return DefaultTLS(), nil
	case "plain":
		return TLSNone, nil
	}
	for t, n := range tlsNames {
		if n == name {
			if err := t.check(); err != nil {
				return TLSNone, err
			}
			return t, nil
		}
	}
	return TLSNone, fmt.Errorf("unknown TLS provider %q, expected one of none, crypto-tls, fips-tls, utls", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t TLS) MarshalText() ([]byte, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; it is used by the
// JSON, YAML and TOML decoders alike.
func (t *TLS) UnmarshalText(text []byte) error {
	parsed, err := ParseTLS(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
