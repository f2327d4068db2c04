package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/secstream/internal/config"
	"github.com/systmms/secstream/pkg/capability"
	"github.com/systmms/secstream/pkg/stream"
)

func NewCapabilitiesCommand(cfg *config.Config, opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "List the backends compiled into this build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := capability.List()
			defaultTLS := stream.DefaultTLS().String()
			out := cmd.OutOrStdout()

			if opts.JSON {
				return printJSON(out, map[string]any{
					"capabilities": statuses,
					"default_tls":  defaultTLS,
				})
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "CAPABILITY\tENABLED\tBUILD TAG")
			for _, s := range statuses {
				enabled := "no"
				if s.Enabled {
					enabled = "yes"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, enabled, s.BuildTag)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			_, err := fmt.Fprintf(out, "\nDefault TLS provider: %s\n", defaultTLS)
			return err
		},
	}
}
