package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/systmms/secstream/internal/config"
	"github.com/systmms/secstream/internal/logging"
	"github.com/systmms/secstream/tests/fakes"
)

func writeConfig(t *testing.T, content string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return &config.Config{Path: path, Logger: logging.Nop()}
}

func newTestOptions() (*Options, *fakes.FakeExecutor, *fakes.FakeKeyringStore) {
	executor := fakes.NewFakeExecutor()
	executor.StrictMode = true
	store := fakes.NewFakeKeyringStore()
	return &Options{Level: zerolog.TraceLevel, Executor: executor, Keyring: store}, executor, store
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
