package stream

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Target is a parsed connection target.
type Target struct {
	Scheme string
	Host   string
	Port   uint16
	// Secure marks targets that must be encrypted.
	Secure bool
}

type schemeInfo struct {
	port   uint16
	secure bool
}

// schemes maps each supported scheme to its default port (0 when the port
// must be explicit) and whether it is secure.
var schemes = map[string]schemeInfo{
	"http":  {port: 80},
	"ws":    {port: 80},
	"https": {port: 443, secure: true},
	"wss":   {port: 443, secure: true},
	"tcp":   {},
	"tls":   {secure: true},
}

// ParseTarget parses a URL such as "https://example.com" or
// "tls://mail.example.com:993". A bare "host:port" is a plain tcp target.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "://") {
		s = "tcp://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return Target{}, fmt.Errorf("invalid target %q: %w", s, err)
	}

	scheme := strings.ToLower(u.Scheme)
	info, ok := schemes[scheme]
	if !ok {
		return Target{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return Target{}, fmt.Errorf("%w in %q", ErrMissingHost, s)
	}

	port := info.port
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil || n == 0 {
			return Target{}, fmt.Errorf("%w: invalid port %q", ErrUnresolvablePort, p)
		}
		port = uint16(n)
	}
	if port == 0 {
		return Target{}, fmt.Errorf("%w: scheme %q has no default port", ErrUnresolvablePort, scheme)
	}

	return Target{Scheme: scheme, Host: host, Port: port, Secure: info.secure}, nil
}

// Address returns host:port suitable for net.Dial.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port)))
}

func (t Target) String() string {
	if t.Scheme == "" {
		return t.Address()
	}
	return t.Scheme + "://" + t.Address()
}
