package errors

import (
	"errors"
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
	Err        error
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// CommandError represents a command execution error
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
	Err        error
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e CommandError) Unwrap() error {
	return e.Err
}

// BackendError enhances errors of a secret backend ("command", "keyring")
// or TLS provider with context
func BackendError(backend string, operation string, err error) error {
	return UserError{
		Message:    fmt.Sprintf("%s backend error during %s", backend, operation),
		Suggestion: getBackendSuggestion(backend, err),
		Err:        err,
	}
}

// getBackendSuggestion returns helpful suggestions based on backend and error
func getBackendSuggestion(backend string, err error) string {
	errStr := err.Error()

	switch backend {
	case "command":
		if strings.Contains(errStr, "executable file not found") || strings.Contains(errStr, "command not found") {
			return "Install the program or use its full path in the secret command"
		}
		if strings.Contains(errStr, "not signed in") || strings.Contains(errStr, "not logged in") {
			return "Sign in to the password manager CLI before running secstream"
		}
		if strings.Contains(errStr, "vault is locked") {
			return "Unlock the vault and export its session variable"
		}

	case "keyring":
		if strings.Contains(errStr, "not found") {
			return "Store the secret first with 'secstream keyring set <service>/<account>'"
		}
		if strings.Contains(errStr, "access denied") {
			return "Allow secstream to access the entry in your keychain settings"
		}
		if strings.Contains(errStr, "not supported") || strings.Contains(errStr, "unsupported") {
			return "No keyring daemon was found. On Linux start gnome-keyring or KWallet"
		}

	case "crypto-tls", "fips-tls", "utls":
		if strings.Contains(errStr, "certificate signed by unknown authority") {
			return "Install the server's CA into the system trust store"
		}
		if strings.Contains(errStr, "certificate is valid for") {
			return "Connect using the hostname listed in the server certificate"
		}
	}

	// Generic suggestions
	if strings.Contains(errStr, "timeout") {
		return "The operation timed out. Check your network connection and try again"
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") {
		return "Unable to connect. Check your network and account url"
	}

	return ""
}

// WrapCommandNotFound wraps command not found errors with helpful suggestions
func WrapCommandNotFound(command string, err error) error {
	suggestions := map[string]string{
		"op":          "Install 1Password CLI: https://developer.1password.com/docs/cli/get-started/",
		"bw":          "Install Bitwarden CLI: https://bitwarden.com/help/cli/",
		"pass":        "Install pass from https://www.passwordstore.org/",
		"gopass":      "Install gopass from https://www.gopass.pw/",
		"vault":       "Install Vault from https://developer.hashicorp.com/vault/install",
		"gpg":         "Install GnuPG from https://gnupg.org/",
		"secret-tool": "Install libsecret-tools with your package manager",
		"security":    "The security tool ships with macOS",
	}

	suggestion := suggestions[command]
	if suggestion == "" {
		suggestion = fmt.Sprintf("Make sure '%s' is installed and in your PATH", command)
	}

	msg := "command not found"
	if err != nil {
		msg = err.Error()
	}
	return CommandError{
		Command:    command,
		Message:    msg,
		Suggestion: suggestion,
		Err:        err,
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	retryablePatterns := []string{
		"timeout",
		"temporary failure",
		"connection reset",
		"broken pipe",
		"rate limit",
		"too many requests",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(strings.ToLower(errStr), pattern) {
			return true
		}
	}

	return false
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Unwrap to get the root cause
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	// Already a user-friendly error
	if _, ok := err.(UserError); ok {
		return err
	}
	if _, ok := err.(ConfigError); ok {
		return err
	}
	if _, ok := err.(CommandError); ok {
		return err
	}

	// Simplify common technical errors
	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "toml:") {
		return ConfigError{
			Message:    "Invalid TOML format",
			Suggestion: "Check that strings are quoted and tables are declared once",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "json:") {
		return ConfigError{
			Message:    "Invalid JSON format",
			Suggestion: "Validate your JSON at https://jsonlint.com/",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	// Return original error if we can't simplify it
	return err
}
