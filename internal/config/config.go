package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	dserrors "github.com/systmms/secstream/internal/errors"
	"github.com/systmms/secstream/internal/logging"
	"github.com/systmms/secstream/pkg/secret"
	"github.com/systmms/secstream/pkg/stream"
)

// DefaultTimeout applies to accounts without timeout_ms.
const DefaultTimeout = 30 * time.Second

// Config holds the runtime configuration
type Config struct {
	// Path is the main configuration file. Empty means the first existing
	// file of DefaultPaths.
	Path string
	// Overlays are merged over Path in order. Unreadable overlays are
	// skipped.
	Overlays   []string
	Logger     *logging.Logger
	Definition *Definition
}

// Definition is the decoded configuration document
type Definition struct {
	Accounts map[string]Account `json:"accounts"`
}

// Account describes one remote service: where it lives, how to reach it
// and where its credential comes from
type Account struct {
	Default     bool           `json:"default,omitempty"`
	URL         string         `json:"url,omitempty"`
	Secret      *secret.Secret `json:"secret,omitempty"`
	TLS         *stream.TLS    `json:"tls,omitempty"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	TimeoutMs   int            `json:"timeout_ms,omitempty"`
}

// Timeout returns the account timeout, DefaultTimeout when unset.
func (a Account) Timeout() time.Duration {
	if a.TimeoutMs <= 0 {
		return DefaultTimeout
	}
	return time.Duration(a.TimeoutMs) * time.Millisecond
}

// TLSSelection returns the configured provider or stream.DefaultTLS.
func (a Account) TLSSelection() stream.TLS {
	if a.TLS == nil {
		return stream.DefaultTLS()
	}
	return *a.TLS
}

func (c *Config) logger() *logging.Logger {
	if c.Logger == nil {
		return logging.Nop()
	}
	return c.Logger
}

// Load reads, merges, validates and decodes the configuration files
func (c *Config) Load() error {
	if c.Path == "" {
		path, err := FindDefault()
		if err != nil {
			return err
		}
		c.Path = path
	}

	c.logger().Debug("Loading configuration from %s", c.Path)
	doc, err := readDocument(c.Path)
	if err != nil {
		return err
	}

	for _, overlay := range c.Overlays {
		data, err := os.ReadFile(overlay)
		if err != nil {
			c.logger().Debug("Skipping unreadable configuration overlay %s: %v", overlay, err)
			continue
		}
		sub, err := parseDocument(overlay, data)
		if err != nil {
			return err
		}
		c.logger().Debug("Merging configuration overlay %s", overlay)
		merge(doc, sub)
	}

	if err := validate(doc); err != nil {
		return err
	}

	def, err := decode(doc)
	if err != nil {
		return err
	}

	c.Definition = def
	return nil
}

// readDocument parses one file into a generic document. The format follows
// the extension: .yaml/.yml, .json, anything else is TOML.
func readDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dserrors.ConfigError{
				Field:      "path",
				Value:      path,
				Message:    "configuration file not found",
				Suggestion: "Create the file or pass --config with an existing path",
				Err:        err,
			}
		}
		return nil, dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}
	return parseDocument(path, data)
}

func parseDocument(path string, data []byte) (map[string]any, error) {
	var err error
	doc := map[string]any{}
	switch formatOf(path) {
	case "yaml":
		err = yaml.Unmarshal(data, &doc)
	case "json":
		err = json.Unmarshal(data, &doc)
	default:
		err = toml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, dserrors.ConfigError{
			Value:      path,
			Message:    fmt.Sprintf("invalid %s syntax in configuration file", strings.ToUpper(formatOf(path))),
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters",
			Err:        err,
		}
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	}
	return "toml"
}

// merge copies src into dst. Nested mappings are merged key by key; any
// other value in src replaces the one in dst.
func merge(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			merge(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
}

// decode turns a validated document into a Definition. Secrets and TLS
// selections are decoded here, so an absent capability fails loading.
func decode(doc map[string]any) (*Definition, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}

	var raw struct {
		Accounts map[string]json.RawMessage `json:"accounts"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	def := &Definition{Accounts: make(map[string]Account, len(raw.Accounts))}
	for name, body := range raw.Accounts {
		var account Account
		if err := json.Unmarshal(body, &account); err != nil {
			return nil, dserrors.ConfigError{
				Field:   "accounts." + name,
				Message: err.Error(),
				Err:     err,
			}
		}
		def.Accounts[name] = account
	}
	return def, nil
}

// AccountNames returns the configured account names, sorted.
func (c *Config) AccountNames() []string {
	if c.Definition == nil {
		return nil
	}
	names := make([]string, 0, len(c.Definition.Accounts))
	for name := range c.Definition.Accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAccount returns the named account. "" and "default" select the
// account marked default, or the only account when there is exactly one.
func (c *Config) GetAccount(name string) (string, Account, error) {
	if c.Definition == nil {
		return "", Account{}, dserrors.UserError{
			Message:    "Configuration not loaded",
			Suggestion: "This is an internal error. Please report it",
		}
	}

	if name == "" || name == "default" {
		return c.defaultAccount()
	}

	account, ok := c.Definition.Accounts[name]
	if !ok {
		suggestion := "Add the account to the 'accounts' section of your configuration"
		if available := c.AccountNames(); len(available) > 0 {
			suggestion = fmt.Sprintf("Available accounts: %s", strings.Join(available, ", "))
		}
		return "", Account{}, dserrors.ConfigError{
			Field:      "account",
			Value:      name,
			Message:    "account not found",
			Suggestion: suggestion,
		}
	}
	return name, account, nil
}

func (c *Config) defaultAccount() (string, Account, error) {
	var defaults []string
	for _, name := range c.AccountNames() {
		if c.Definition.Accounts[name].Default {
			defaults = append(defaults, name)
		}
	}

	switch {
	case len(defaults) == 1:
		return defaults[0], c.Definition.Accounts[defaults[0]], nil
	case len(defaults) > 1:
		return "", Account{}, dserrors.ConfigError{
			Field:      "default",
			Value:      strings.Join(defaults, ", "),
			Message:    "more than one account is marked default",
			Suggestion: "Keep 'default = true' on a single account",
		}
	case len(c.Definition.Accounts) == 1:
		name := c.AccountNames()[0]
		return name, c.Definition.Accounts[name], nil
	}

	return "", Account{}, dserrors.ConfigError{
		Field:      "default",
		Message:    "no default account",
		Suggestion: "Mark one account with 'default = true' or pass --account",
	}
}
