package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/secstream/internal/config"
	"github.com/systmms/secstream/internal/logging"
	"github.com/systmms/secstream/internal/metrics"
)

// NewRootCommand builds the secstream command tree. Global flags are
// applied to cfg and opts before any subcommand runs.
func NewRootCommand(cfg *config.Config, opts *Options, version string) *cobra.Command {
	var (
		configFile string
		overlays   []string
		noColor    bool
		quiet      bool
		debug      bool
		trace      bool
	)

	rootCmd := &cobra.Command{
		Use:   "secstream",
		Short: "Resolve account secrets and open secure streams",
		Long: `secstream resolves account credentials from raw values, external
commands or the platform keyring, and opens plain or TLS streams to the
account's server with a selectable TLS provider.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.Level = logging.LevelFromFlags(quiet, debug, trace)
			cfg.Logger = logging.New(logging.Options{
				Level:   opts.Level,
				NoColor: noColor,
				JSON:    opts.JSON,
				Out:     cmd.ErrOrStderr(),
			})
			cfg.Path = configFile
			cfg.Overlays = overlays
			if opts.MetricsFile != "" && opts.Metrics == nil {
				opts.Metrics = metrics.New()
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Config file path (default: first of "+config.ProjectName+" default paths)")
	flags.StringSliceVar(&overlays, "config-overlay", nil, "Extra config files merged over --config")
	flags.StringVarP(&opts.Account, "account", "a", "", "Account name (default: the default account)")
	flags.BoolVar(&opts.JSON, "json", false, "Output in JSON format")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Only log errors")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&trace, "trace", false, "Enable trace logging")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(
		NewGetCommand(cfg, opts),
		NewCheckCommand(cfg, opts),
		NewConnectCommand(cfg, opts),
		NewCapabilitiesCommand(cfg, opts),
		NewKeyringCommand(cfg, opts),
		NewCompletionCommand(cfg),
	)

	return rootCmd
}
