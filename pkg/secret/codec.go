package secret

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/systmms/secstream/pkg/capability"
	"github.com/systmms/secstream/pkg/keyring"
	"github.com/systmms/secstream/pkg/process"
)

// The wire form is a mapping with exactly one key naming the variant:
//
//	raw: hunter2
//	command: pass show github
//	keyring: github/alice
//
// Decoding a variant whose capability is compiled out fails with the
// capability error.

// ToAny returns the generic wire value of s. Raw secrets are written in
// plaintext.
func (s Secret) ToAny() any {
	switch v := s.Variant().(type) {
	case Raw:
		b := rawBytes(v)
		defer clear(b)
		return map[string]any{string(KindRaw): string(b)}
	case Command:
		return map[string]any{string(KindCommand): v.Cmd.ToAny()}
	case Keyring:
		return map[string]any{string(KindKeyring): v.Entry.ToAny()}
	}
	return nil
}

// FromAny decodes a generic value produced by a YAML, TOML or JSON decoder.
func FromAny(v any) (Secret, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Secret{}, fmt.Errorf("secret must be a mapping with one of the keys raw, command or keyring, got %T", v)
	}
	if len(m) != 1 {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return Secret{}, fmt.Errorf("secret must have exactly one of the keys raw, command or keyring, got [%s]", strings.Join(keys, ", "))
	}

	var (
		key     string
		payload any
	)
	for k, p := range m {
		key, payload = k, p
	}

	switch Kind(key) {
	case KindRaw:
		str, ok := payload.(string)
		if !ok {
			return Secret{}, fmt.Errorf("raw secret must be a string, got %T", payload)
		}
		return NewRaw(str), nil

	case KindCommand:
		if err := capability.Require(capability.Command); err != nil {
			return Secret{}, err
		}
		cmd, err := process.FromAny(payload)
		if err != nil {
			return Secret{}, err
		}
		return NewCommand(cmd)

	case KindKeyring:
		if err := capability.Require(capability.Keyring); err != nil {
			return Secret{}, err
		}
		entry, err := keyring.FromAny(payload)
		if err != nil {
			return Secret{}, err
		}
		return NewKeyring(entry)

	default:
		return Secret{}, fmt.Errorf("unknown secret kind %q, expected raw, command or keyring", key)
	}
}

// MarshalJSON implements json.Marshaler.
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToAny())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Secret) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	decoded, err := FromAny(v)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Secret) MarshalYAML() (any, error) {
	return s.ToAny(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Secret) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	decoded, err := FromAny(v)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}
