package config

import (
	"os"
	"path/filepath"

	dserrors "github.com/systmms/secstream/internal/errors"
)

// ProjectName names the configuration directory and rc file.
const ProjectName = "secstream"

// DefaultPaths lists the locations searched when no path is given, in
// order:
//
//	<user config dir>/secstream/config.{toml,yaml,yml,json}
//	$HOME/.config/secstream/config.toml
//	$HOME/.secstreamrc
func DefaultPaths() []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		for _, name := range []string{"config.toml", "config.yaml", "config.yml", "config.json"} {
			paths = append(paths, filepath.Join(dir, ProjectName, name))
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", ProjectName, "config.toml"),
			filepath.Join(home, "."+ProjectName+"rc"),
		)
	}
	return paths
}

// FindDefault returns the first existing file of DefaultPaths.
func FindDefault() (string, error) {
	paths := DefaultPaths()
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}

	suggestion := "Pass --config or create a configuration file"
	if len(paths) > 0 {
		suggestion = "Create " + paths[0] + " or pass --config"
	}
	return "", dserrors.ConfigError{
		Field:      "path",
		Message:    "no configuration file found",
		Suggestion: suggestion,
	}
}
