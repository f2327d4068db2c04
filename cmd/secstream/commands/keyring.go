package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/systmms/secstream/internal/config"
	dserrors "github.com/systmms/secstream/internal/errors"
	"github.com/systmms/secstream/pkg/capability"
	"github.com/systmms/secstream/pkg/coroutine"
	"github.com/systmms/secstream/pkg/keyring"
	"github.com/systmms/secstream/pkg/secret"
)

func NewKeyringCommand(cfg *config.Config, opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyring",
		Short: "Manage secrets in the platform keyring",
		Long: `Store and remove secrets in the platform credential store: the macOS
Keychain, the Secret Service on Linux or the Windows Credential Manager.

Entries are addressed as SERVICE/ACCOUNT, the same form used by keyring
secrets in the configuration.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return capability.Require(capability.Keyring)
		},
	}

	cmd.AddCommand(
		newKeyringSetCommand(cfg, opts),
		newKeyringDeleteCommand(cfg, opts),
	)

	return cmd
}

// readSecretInput prompts without echo on a terminal, otherwise reads the
// first line of in.
func readSecretInput(cmd *cobra.Command, entry keyring.Entry) ([]byte, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Secret for %s: ", entry)
		value, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return nil, fmt.Errorf("failed to read secret: %w", err)
		}
		return value, nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from stdin: %w", err)
	}
	line := secret.FirstLine(data)
	clear(data)
	return line, nil
}

func newKeyringSetCommand(cfg *config.Config, opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "set SERVICE/ACCOUNT",
		Short: "Store a secret in the keyring",
		Long: `Store a secret in the keyring. The secret is prompted for without echo, or
read from the first line of stdin when stdin is not a terminal.

Examples:
  secstream keyring set secstream/work
  pass show work | secstream keyring set secstream/work`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := keyring.ParseEntry(args[0])
			if err != nil {
				return err
			}

			value, err := readSecretInput(cmd, entry)
			if err != nil {
				return err
			}
			defer clear(value)
			if len(value) == 0 {
				return dserrors.UserError{
					Message:    "refusing to store an empty secret",
					Suggestion: "Type the secret at the prompt or pipe it on stdin",
				}
			}

			rt := opts.runtime(cfg, config.DefaultTimeout)
			if _, err := coroutine.Drive(cmd.Context(), keyring.WriteSecret(entry, value), rt); err != nil {
				return fmt.Errorf("store %s: %w", entry, explain("keyring", "store", err))
			}

			opts.logger(cfg).Info("Stored secret for %s", entry)
			return nil
		},
	}
}

func newKeyringDeleteCommand(cfg *config.Config, opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "delete SERVICE/ACCOUNT",
		Aliases: []string{"rm"},
		Short:   "Remove a secret from the keyring",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := keyring.ParseEntry(args[0])
			if err != nil {
				return err
			}

			rt := opts.runtime(cfg, config.DefaultTimeout)
			if _, err := coroutine.Drive(cmd.Context(), keyring.DeleteSecret(entry), rt); err != nil {
				return fmt.Errorf("delete %s: %w", entry, explain("keyring", "delete", err))
			}

			opts.logger(cfg).Info("Deleted secret for %s", entry)
			return nil
		},
	}
}
