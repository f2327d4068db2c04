package process

import (
	"encoding/json"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCommandValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cmd     Command
		wantErr string
	}{
		{name: "shell line", cmd: Shell("echo hi | tr a-z A-Z")},
		{name: "program", cmd: Program("pass", "show", "github")},
		{name: "empty", cmd: Command{}, wantErr: "command is empty"},
		{name: "both forms", cmd: Command{Shell: "true", Program: "true"}, wantErr: "both shell and program"},
		{name: "shell with args", cmd: Command{Shell: "echo", Args: []string{"x"}}, wantErr: "cannot be combined"},
		{name: "unbalanced quote", cmd: Shell(`echo "oops`), wantErr: "invalid shell command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cmd.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCommandString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "echo hi", Shell("echo hi").String())
	assert.Equal(t, "pass show github", Program("pass", "show", "github").String())
	assert.Equal(t, "whoami", Program("whoami").String())
	assert.Equal(t, "sh", Shell("true").Name())
	assert.Equal(t, "pass", Program("pass").Name())
}

func TestCommandEnviron(t *testing.T) {
	t.Parallel()

	c := Command{Program: "env", Env: map[string]string{"B": "2", "A": "1"}}
	assert.Equal(t, []string{"A=1", "B=2"}, c.Environ())
	assert.Nil(t, Program("env").Environ())
}

func TestCommandDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Command
		wantErr bool
	}{
		{name: "string form", input: `"echo s3cret"`, want: Shell("echo s3cret")},
		{
			name:  "program mapping",
			input: `{"program":"pass","args":["show","gh"],"dir":"/tmp","env":{"K":"v"}}`,
			want:  Command{Program: "pass", Args: []string{"show", "gh"}, Dir: "/tmp", Env: map[string]string{"K": "v"}},
		},
		{name: "shell mapping", input: `{"shell":"cat token"}`, want: Shell("cat token")},
		{name: "unknown key", input: `{"program":"x","bogus":1}`, wantErr: true},
		{name: "empty mapping", input: `{}`, wantErr: true},
		{name: "number", input: `42`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got Command
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandEncodeShape(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Shell("echo hi"))
	require.NoError(t, err)
	assert.JSONEq(t, `"echo hi"`, string(data))

	data, err = json.Marshal(Command{Shell: "echo hi", Dir: "/srv"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"shell":"echo hi","dir":"/srv"}`, string(data))

	data, err = json.Marshal(Program("pass", "show"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"program":"pass","args":["show"]}`, string(data))
}

func TestCommandYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	src := "program: security\nargs: [find-generic-password, -w]\nenv:\n  LANG: C\n"
	var c Command
	require.NoError(t, yaml.Unmarshal([]byte(src), &c))
	assert.Equal(t, "security", c.Program)
	assert.Equal(t, []string{"find-generic-password", "-w"}, c.Args)
	assert.Equal(t, map[string]string{"LANG": "C"}, c.Env)

	out, err := yaml.Marshal(c)
	require.NoError(t, err)

	var back Command
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, c, back)
}

func TestCommandFromTOML(t *testing.T) {
	t.Parallel()

	var doc map[string]any
	require.NoError(t, toml.Unmarshal([]byte("cmd = { program = \"op\", args = [\"read\", \"op://x/y\"] }\n"), &doc))

	c, err := FromAny(doc["cmd"])
	require.NoError(t, err)
	assert.Equal(t, Program("op", "read", "op://x/y"), c)
}
