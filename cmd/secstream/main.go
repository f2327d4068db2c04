package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/systmms/secstream/cmd/secstream/commands"
	"github.com/systmms/secstream/internal/config"
	dserrors "github.com/systmms/secstream/internal/errors"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Wipe every enclave on exit and on interrupt.
	memguard.CatchInterrupt()
	defer memguard.Purge()

	cobra.EnableTraverseRunHooks = true

	cfg := &config.Config{}
	opts := &commands.Options{Level: zerolog.InfoLevel}
	rootCmd := commands.NewRootCommand(cfg, opts, fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date))

	err := rootCmd.Execute()
	if werr := opts.Metrics.WriteTextfile(opts.MetricsFile); werr != nil && err == nil {
		err = werr
	}
	if err != nil {
		_ = dserrors.NewReport(dserrors.SimplifyError(err), opts.Level).Print(os.Stderr, opts.JSON)
		return 1
	}
	return 0
}
