//go:build !secstream_nocommand

package commands

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/systmms/secstream/internal/errors"
	"github.com/systmms/secstream/internal/metrics"
	"github.com/systmms/secstream/pkg/secret"
)

const commandConfig = `
[accounts.work]
default = true
secret.command = "op read op://vault/work"

[accounts.broken]
secret.command = { program = "pass", args = ["show", "broken"] }
`

func TestGetCommand_CommandSecret(t *testing.T) {
	t.Parallel()
	opts, executor, _ := newTestOptions()
	executor.AddOutput("op read op://vault/work", "tok-123\nsecond line\n")

	out, err := runCommand(t, NewGetCommand(writeConfig(t, commandConfig), opts))
	require.NoError(t, err)
	assert.Equal(t, "tok-123", out)
	assert.Equal(t, 1, executor.CallCount())
}

func TestGetCommand_CommandFailure(t *testing.T) {
	t.Parallel()
	opts, executor, _ := newTestOptions()
	executor.AddFailure("pass show broken", 1, "denied\n")

	_, err := runCommand(t, NewGetCommand(writeConfig(t, commandConfig), opts), "broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, secret.ErrCommandFailed)
	assert.Contains(t, err.Error(), `resolve account "broken"`)

	report := dserrors.NewReport(err, zerolog.InfoLevel)
	assert.Contains(t, report.Sources(), "command backend error during resolve")
	assert.Contains(t, report.String(), "pass exited with status 1: denied")
	assert.Contains(t, report.Suggestions(), "Run pass by hand to see its full output")
}

func TestGetCommand_RecordsMetrics(t *testing.T) {
	t.Parallel()
	opts, executor, _ := newTestOptions()
	opts.Metrics = metrics.New()
	executor.AddOutput("op read op://vault/work", "tok\n")

	_, err := runCommand(t, NewGetCommand(writeConfig(t, commandConfig), opts))
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(opts.Metrics.Registry(), "secstream_secret_resolutions_total", "secstream_io_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCheckCommand_ReportsFailures(t *testing.T) {
	t.Parallel()
	opts, executor, _ := newTestOptions()
	executor.AddOutput("op read op://vault/work", "tok\n")
	executor.AddFailure("pass show broken", 2, "no such entry")

	out, err := runCommand(t, NewCheckCommand(writeConfig(t, commandConfig), opts))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 accounts failed")
	assert.Contains(t, out, "work: ok\n")
	assert.Contains(t, out, "broken: error: ")
	assert.Contains(t, out, "no such entry")
	assert.NotContains(t, out, "tok")
}
