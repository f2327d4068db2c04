//go:build secstream_nocommand

package secret

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/secstream/pkg/capability"
	"github.com/systmms/secstream/pkg/process"
)

func TestCommandUnavailable(t *testing.T) {
	t.Parallel()

	_, err := NewCommand(process.Shell("echo hi"))
	require.ErrorIs(t, err, capability.ErrUnavailable)
	assert.EqualError(t, err, `feature "command" is not enabled in this build`)

	var s Secret
	err = json.Unmarshal([]byte(`{"command":"echo hi"}`), &s)
	require.ErrorIs(t, err, capability.ErrUnavailable)
	assert.Contains(t, err.Error(), "not enabled")

	// A Command variant that slipped past construction still fails at
	// resolution time instead of spawning anything.
	forged := Secret{v: Command{Cmd: process.Shell("echo hi")}}
	_, err = forged.Get(context.Background())
	assert.ErrorIs(t, err, capability.ErrUnavailable)
}
