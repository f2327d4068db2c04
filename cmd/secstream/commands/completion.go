package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/secstream/internal/config"
)

func NewCompletionCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Write a completion script for the given shell to stdout. Account names
are completed from the configuration file.

  bash        source <(secstream completion bash)
  zsh         secstream completion zsh > "${fpath[1]}/_secstream"
  fish        secstream completion fish > ~/.config/fish/completions/secstream.fish
  powershell  secstream completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true)
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

// completeAccounts completes account names from the configuration.
func completeAccounts(cfg *config.Config) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		if cfg.Definition == nil {
			if err := cfg.Load(); err != nil {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
		}
		return cfg.AccountNames(), cobra.ShellCompDirectiveNoFileComp
	}
}
