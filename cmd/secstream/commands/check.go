package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/systmms/secstream/internal/config"
	dserrors "github.com/systmms/secstream/internal/errors"
	"github.com/systmms/secstream/pkg/blocking"
)

// checkResult is the outcome of resolving one account. It never holds
// plaintext.
type checkResult struct {
	Account    string `json:"account"`
	Kind       string `json:"kind,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	Retryable  bool   `json:"retryable,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

const (
	statusOK      = "ok"
	statusError   = "error"
	statusSkipped = "skipped"
)

func NewCheckCommand(cfg *config.Config, opts *Options) *cobra.Command {
	var concurrency int64

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Resolve every account secret without printing it",
		Long: `Resolve the secret of every configured account concurrently and report
whether it succeeded. Secrets are destroyed as soon as they are resolved
and never printed.

Examples:
  secstream check
  secstream check --concurrency 1 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Definition == nil {
				if err := cfg.Load(); err != nil {
					return err
				}
			}
			logger := opts.logger(cfg)

			names := cfg.AccountNames()
			results := make([]checkResult, len(names))

			// One limiter for every account; each account bounds its own
			// resolution with its timeout.
			rt := blocking.Limit(opts.runtime(cfg, 0), concurrency)
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, name := range names {
				_, account, err := cfg.GetAccount(name)
				if err != nil {
					return err
				}
				if account.Secret == nil {
					results[i] = checkResult{Account: name, Status: statusSkipped}
					continue
				}

				g.Go(func() error {
					id := uuid.NewString()
					kind := string(account.Secret.Kind())
					log := logger.With("resolution", id)
					log.Debug("Checking %s secret of account %s", kind, name)

					ctx, cancel := context.WithTimeout(ctx, account.Timeout())
					defer cancel()

					start := time.Now()
					value, err := account.Secret.GetWith(ctx, rt)
					opts.Metrics.RecordResolution(kind, err, time.Since(start))

					res := checkResult{Account: name, Kind: kind, Status: statusOK, Resolution: id}
					if err != nil {
						log.Debug("Account %s failed: %v", name, err)
						res.Status = statusError
						res.Error = err.Error()
						res.Retryable = dserrors.IsRetryable(err)
					} else {
						value.Destroy()
					}
					results[i] = res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range results {
				if r.Status == statusError {
					failed++
				}
			}

			if opts.JSON {
				if err := printJSON(out, results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					line := fmt.Sprintf("%s: %s", r.Account, r.Status)
					if r.Error != "" {
						line += ": " + r.Error
					}
					if r.Retryable {
						line += " (retryable)"
					}
					if _, err := fmt.Fprintln(out, line); err != nil {
						return err
					}
				}
			}

			if failed > 0 {
				return dserrors.UserError{
					Message:    fmt.Sprintf("%d of %d accounts failed", failed, len(names)),
					Suggestion: "Run 'secstream get <account>' for the full error of one account",
				}
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&concurrency, "concurrency", 4, "Maximum number of secret lookups in flight (0 = unlimited)")

	return cmd
}
