package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/systmms/secstream/internal/config"
)

func NewGetCommand(cfg *config.Config, opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [ACCOUNT]",
		Short: "Print the secret of an account",
		Long: `Resolve the secret of an account and print it to stdout.

Raw secrets are printed as configured. Command secrets run the command and
print the first line of its output. Keyring secrets are read from the
platform credential store.

Examples:
  # Print the default account secret
  secstream get

  # Use in scripts
  export TOKEN=$(secstream get work)

  # Include the account and secret kind
  secstream get work --json`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeAccounts(cfg),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, account, err := loadAccount(cfg, opts.accountName(args))
			if err != nil {
				return err
			}
			if err := requireSecret(name, account); err != nil {
				return err
			}

			logger := opts.logger(cfg)
			logger.Debug("Resolving %s secret of account %s", account.Secret.Kind(), name)

			start := time.Now()
			value, err := account.Secret.GetWith(cmd.Context(), opts.runtime(cfg, account.Timeout()))
			opts.Metrics.RecordResolution(string(account.Secret.Kind()), err, time.Since(start))
			if err != nil {
				return fmt.Errorf("resolve account %q: %w", name, explain(string(account.Secret.Kind()), "resolve", err))
			}
			defer value.Destroy()

			out := cmd.OutOrStdout()
			if opts.JSON {
				return printJSON(out, map[string]string{
					"account": name,
					"kind":    string(account.Secret.Kind()),
					"value":   value.Reveal(),
				})
			}
			_, err = fmt.Fprint(out, value.Reveal())
			return err
		},
	}

	return cmd
}
