package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawConfig = `
[accounts.work]
default = true
url = "https://mail.example.com"
secret.raw = "hunter2"

[accounts.home]
url = "tcp://localhost:1143"
secret.raw = "swordfish"

[accounts.public]
url = "http://example.com"
`

func TestGetCommand_DefaultAccount(t *testing.T) {
	t.Parallel()
	opts, executor, _ := newTestOptions()

	out, err := runCommand(t, NewGetCommand(writeConfig(t, rawConfig), opts))
	require.NoError(t, err)
	assert.Equal(t, "hunter2", out)
	assert.Zero(t, executor.CallCount(), "raw secrets perform no I/O")
}

func TestGetCommand_NamedAccount(t *testing.T) {
	t.Parallel()

	t.Run("positional", func(t *testing.T) {
		t.Parallel()
		opts, _, _ := newTestOptions()
		out, err := runCommand(t, NewGetCommand(writeConfig(t, rawConfig), opts), "home")
		require.NoError(t, err)
		assert.Equal(t, "swordfish", out)
	})

	t.Run("account flag", func(t *testing.T) {
		t.Parallel()
		opts, _, _ := newTestOptions()
		opts.Account = "home"
		out, err := runCommand(t, NewGetCommand(writeConfig(t, rawConfig), opts))
		require.NoError(t, err)
		assert.Equal(t, "swordfish", out)
	})
}

func TestGetCommand_JSONOutput(t *testing.T) {
	t.Parallel()
	opts, _, _ := newTestOptions()
	opts.JSON = true

	out, err := runCommand(t, NewGetCommand(writeConfig(t, rawConfig), opts), "work")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]string{"account": "work", "kind": "raw", "value": "hunter2"}, got)
}

func TestGetCommand_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown account", args: []string{"nope"}, wantErr: "account not found"},
		{name: "account without secret", args: []string{"public"}, wantErr: "account has no secret"},
		{name: "too many args", args: []string{"work", "home"}, wantErr: "accepts at most 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts, _, _ := newTestOptions()
			_, err := runCommand(t, NewGetCommand(writeConfig(t, rawConfig), opts), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheckCommand_RawAccounts(t *testing.T) {
	t.Parallel()
	opts, _, _ := newTestOptions()

	out, err := runCommand(t, NewCheckCommand(writeConfig(t, rawConfig), opts))
	require.NoError(t, err)
	assert.Equal(t, "home: ok\npublic: skipped\nwork: ok\n", out)
	assert.NotContains(t, out, "hunter2")
}

func TestCheckCommand_JSON(t *testing.T) {
	t.Parallel()
	opts, _, _ := newTestOptions()
	opts.JSON = true

	out, err := runCommand(t, NewCheckCommand(writeConfig(t, rawConfig), opts), "--concurrency", "1")
	require.NoError(t, err)

	var got []checkResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "home", got[0].Account)
	assert.Equal(t, statusOK, got[0].Status)
	assert.NotEmpty(t, got[0].Resolution)
	assert.Equal(t, statusSkipped, got[1].Status)
	assert.NotContains(t, out, "swordfish")
}
