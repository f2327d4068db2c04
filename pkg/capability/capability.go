// Package capability records which optional backends are compiled into the
// current build.
//
// Every backend is present by default and can be removed with a build tag:
//
//	command     secstream_nocommand
//	keyring     secstream_nokeyring
//	crypto-tls  secstream_nocryptotls
//	fips-tls    secstream_nofips
//	utls        secstream_noutls
//
// Flags are registered from init functions of tag-gated files and are
// never modified afterwards, so a flag holds the same value for the whole
// lifetime of the process.
package capability

import (
	"errors"
	"fmt"
	"sort"
)

// Name identifies an optional backend.
type Name string

const (
	Command   Name = "command"
	Keyring   Name = "keyring"
	CryptoTLS Name = "crypto-tls"
	FIPSTLS   Name = "fips-tls"
	UTLS      Name = "utls"
)

// known lists every capability with the build tag that removes it.
var known = map[Name]string{
	Command:   "secstream_nocommand",
	Keyring:   "secstream_nokeyring",
	CryptoTLS: "secstream_nocryptotls",
	FIPSTLS:   "secstream_nofips",
	UTLS:      "secstream_noutls",
}

// enabled is only written by init functions.
var enabled = map[Name]bool{}

func register(n Name) {
	enabled[n] = true
}

// ErrUnavailable matches every *UnavailableError via errors.Is.
var ErrUnavailable = errors.New("capability unavailable")

// UnavailableError reports a backend that is not compiled into this build.
type UnavailableError struct {
	Name Name
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("feature %q is not enabled in this build", string(e.Name))
}

// Is reports whether target is ErrUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// BuildTag returns the build tag that removes this capability.
func (e *UnavailableError) BuildTag() string {
	return known[e.Name]
}

// Enabled reports whether the named backend is compiled in.
func Enabled(n Name) bool {
	return enabled[n]
}

// Require returns an *UnavailableError if the named backend is absent.
func Require(n Name) error {
	if !enabled[n] {
		return &UnavailableError{Name: n}
	}
	return nil
}

// Status describes one capability of the running build.
type Status struct {
	Name     Name   `json:"name"`
	Enabled  bool   `json:"enabled"`
	BuildTag string `json:"build_tag"`
}

// List returns the status of every known capability, sorted by name.
func List() []Status {
	out := make([]Status, 0, len(known))
	for n, tag := range known {
		out = append(out, Status{Name: n, Enabled: enabled[n], BuildTag: tag})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
