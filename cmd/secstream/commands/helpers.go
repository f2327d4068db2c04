package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/systmms/secstream/internal/config"
	dserrors "github.com/systmms/secstream/internal/errors"
	"github.com/systmms/secstream/internal/logging"
	"github.com/systmms/secstream/internal/metrics"
	"github.com/systmms/secstream/pkg/blocking"
	"github.com/systmms/secstream/pkg/coroutine"
	"github.com/systmms/secstream/pkg/exec"
	"github.com/systmms/secstream/pkg/keyring"
)

// Options carries global flag values and injectable backends shared by
// every command
type Options struct {
	Account     string
	JSON        bool
	Level       zerolog.Level
	MetricsFile string

	Metrics *metrics.Metrics
	// Executor and Keyring default to the real backends when nil.
	Executor exec.Executor
	Keyring  keyring.Store
}

func (o *Options) logger(cfg *config.Config) *logging.Logger {
	if cfg.Logger == nil {
		return logging.Nop()
	}
	return cfg.Logger
}

// runtime builds the I/O runtime used to drive secret resolutions.
func (o *Options) runtime(cfg *config.Config, timeout time.Duration) coroutine.Runtime {
	rt := blocking.New()
	if o.Executor != nil {
		rt.Exec = o.Executor
	}
	if o.Keyring != nil {
		rt.Keyring = o.Keyring
	}
	rt.Logger = o.logger(cfg)
	rt.Timeout = timeout
	return blocking.Instrument(rt, o.Metrics)
}

// accountName picks the positional account argument over --account.
func (o *Options) accountName(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return o.Account
}

// loadAccount loads the configuration and looks up one account.
func loadAccount(cfg *config.Config, name string) (string, config.Account, error) {
	if cfg.Definition == nil {
		if err := cfg.Load(); err != nil {
			return "", config.Account{}, err
		}
	}
	return cfg.GetAccount(name)
}

func requireSecret(name string, account config.Account) error {
	if account.Secret != nil {
		return nil
	}
	return dserrors.ConfigError{
		Field:      "accounts." + name + ".secret",
		Message:    "account has no secret",
		Suggestion: "Add a secret with one of the keys raw, command or keyring",
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
