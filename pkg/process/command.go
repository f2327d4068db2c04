// Package process describes external commands and the coroutine that
// spawns one and waits for its output.
//
// The package never starts a process itself: SpawnThenWait yields a
// SpawnRequest and the runtime driving it decides how to execute it (see
// pkg/exec and pkg/blocking).
package process

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	"mvdan.cc/sh/v3/syntax"
)

// Command describes an external process.
//
// Exactly one of Shell and Program is set. A Shell command is a POSIX shell
// line (pipes, quoting and expansions allowed); a Program command is run
// directly with Args. Env entries are added on top of the inherited
// environment.
type Command struct {
	Shell   string
	Program string
	Args    []string
	Env     map[string]string
	Dir     string
}

// ErrEmptyCommand is returned for a command with neither Shell nor Program.
var ErrEmptyCommand = errors.New("command is empty")

// Shell returns a Command running line through the shell interpreter.
func Shell(line string) Command {
	return Command{Shell: line}
}

// Program returns a Command running name with args directly.
func Program(name string, args ...string) Command {
	return Command{Program: name, Args: args}
}

// Validate checks that exactly one form is set and that a shell line
// parses.
func (c Command) Validate() error {
	switch {
	case c.Shell == "" && c.Program == "":
		return ErrEmptyCommand
	case c.Shell != "" && c.Program != "":
		return errors.New("command cannot set both shell and program")
	case c.Shell != "" && len(c.Args) > 0:
		return errors.New("command args cannot be combined with a shell line")
	}

	if c.Shell != "" {
		if _, err := ParseShell(c.Shell); err != nil {
			return err
		}
	}
	return nil
}

// ParseShell parses a shell line with the POSIX/bash parser.
func ParseShell(line string) (*syntax.File, error) {
	f, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		return nil, fmt.Errorf("invalid shell command: %w", err)
	}
	return f, nil
}

// Name returns the program name, or "sh" for shell lines.
func (c Command) Name() string {
	if c.Program != "" {
		return c.Program
	}
	return "sh"
}

// String renders the command line for logs and error messages.
func (c Command) String() string {
	if c.Shell != "" {
		return c.Shell
	}
	if len(c.Args) == 0 {
		return c.Program
	}
	return c.Program + " " + strings.Join(c.Args, " ")
}

// Environ returns Env as sorted KEY=VALUE pairs.
func (c Command) Environ() []string {
	if len(c.Env) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.Env))
	for k, v := range c.Env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// commandSpec is the mapping form on the wire.
type commandSpec struct {
	Shell   string            `json:"shell,omitempty" yaml:"shell,omitempty"`
	Program string            `json:"program,omitempty" yaml:"program,omitempty"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Dir     string            `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// UnmarshalJSON accepts either a shell line string or a mapping with
// shell/program/args/env/dir keys.
func (c *Command) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var decoded Command
	if len(data) > 0 && data[0] == '"' {
		var line string
		if err := json.Unmarshal(data, &line); err != nil {
			return err
		}
		decoded = Shell(line)
	} else {
		var spec commandSpec
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&spec); err != nil {
			return fmt.Errorf("invalid command: %w", err)
		}
		decoded = Command(spec)
	}

	if err := decoded.Validate(); err != nil {
		return err
	}
	*c = decoded
	return nil
}

// MarshalJSON writes a bare string for plain shell lines and a mapping
// otherwise.
func (c Command) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.ToAny())
}

// UnmarshalYAML decodes the same shapes as UnmarshalJSON.
func (c *Command) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	decoded, err := FromAny(v)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (c Command) MarshalYAML() (any, error) {
	return c.ToAny(), nil
}

// ToAny returns the generic wire value (string or map) of c.
func (c Command) ToAny() any {
	if c.Shell != "" && len(c.Env) == 0 && c.Dir == "" {
		return c.Shell
	}

	m := map[string]any{}
	if c.Shell != "" {
		m["shell"] = c.Shell
	}
	if c.Program != "" {
		m["program"] = c.Program
	}
	if len(c.Args) > 0 {
		args := make([]any, len(c.Args))
		for i, a := range c.Args {
			args[i] = a
		}
		m["args"] = args
	}
	if len(c.Env) > 0 {
		env := make(map[string]any, len(c.Env))
		for k, v := range c.Env {
			env[k] = v
		}
		m["env"] = env
	}
	if c.Dir != "" {
		m["dir"] = c.Dir
	}
	return m
}

// FromAny decodes a generic value produced by a YAML, TOML or JSON decoder.
func FromAny(v any) (Command, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Command{}, fmt.Errorf("invalid command: %w", err)
	}
	var c Command
	if err := c.UnmarshalJSON(data); err != nil {
		return Command{}, err
	}
	return c, nil
}
