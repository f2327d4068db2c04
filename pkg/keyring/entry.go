// Package keyring reads and writes credentials in the platform credential
// store (macOS Keychain, Secret Service on Linux, Windows Credential
// Manager) through the Suspension Protocol.
package keyring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry names a credential by service and account.
type Entry struct {
	Service string
	Account string
}

// ParseEntry parses the "service/account" form. The account may itself
// contain slashes.
func ParseEntry(ref string) (Entry, error) {
	parts := strings.SplitN(ref, "/", 2)
	if len(parts) != 2 {
		return Entry{}, fmt.Errorf("keyring entry must be service/account format, got: %s", ref)
	}
	e := Entry{Service: strings.TrimSpace(parts[0]), Account: strings.TrimSpace(parts[1])}
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Validate checks that both halves are present.
func (e Entry) Validate() error {
	if e.Service == "" {
		return fmt.Errorf("keyring entry service cannot be empty")
	}
	if e.Account == "" {
		return fmt.Errorf("keyring entry account cannot be empty")
	}
	return nil
}

func (e Entry) String() string {
	return e.Service + "/" + e.Account
}

type entrySpec struct {
	Service string `json:"service"`
	Account string `json:"account"`
}

// UnmarshalJSON accepts "service/account" or {"service": ..., "account": ...}.
func (e *Entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var ref string
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}
		parsed, err := ParseEntry(ref)
		if err != nil {
			return err
		}
		*e = parsed
		return nil
	}

	var spec entrySpec
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spec); err != nil {
		return fmt.Errorf("invalid keyring entry: %w", err)
	}
	parsed := Entry(spec)
	if err := parsed.Validate(); err != nil {
		return err
	}
	*e = parsed
	return nil
}

// MarshalJSON writes the mapping form.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entrySpec(e))
}

// UnmarshalYAML accepts the same shapes as UnmarshalJSON.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	parsed, err := FromAny(v)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// MarshalYAML writes the mapping form.
func (e Entry) MarshalYAML() (any, error) {
	return e.ToAny(), nil
}

// ToAny returns the generic mapping form of e.
func (e Entry) ToAny() any {
	return map[string]any{"service": e.Service, "account": e.Account}
}

// FromAny decodes a generic value produced by a YAML, TOML or JSON decoder.
func FromAny(v any) (Entry, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid keyring entry: %w", err)
	}
	var e Entry
	if err := e.UnmarshalJSON(data); err != nil {
		return Entry{}, err
	}
	return e, nil
}
