package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/systmms/secstream/pkg/capability"
	"github.com/systmms/secstream/pkg/keyring"
	"github.com/systmms/secstream/pkg/secret"
	"github.com/systmms/secstream/pkg/stream"
)

// Report renders a failed command for the terminal: the top-level message,
// the chain of causes, and suggestions for what to try next.
type Report struct {
	Err error
	// Level is the log level in effect; it decides whether to suggest
	// --debug and --trace.
	Level zerolog.Level
}

// NewReport builds a report for err.
func NewReport(err error, level zerolog.Level) Report {
	return Report{Err: err, Level: level}
}

// chain splits err into one message per layer. Go errors repeat their
// cause at the end of their message, so each layer is trimmed of it.
func chain(err error) []string {
	var msgs []string
	for err != nil {
		next := errors.Unwrap(err)
		msg := headline(err.Error())
		if next != nil {
			cause := headline(next.Error())
			if msg == cause {
				err = next
				continue
			}
			msg = strings.TrimSuffix(msg, ": "+cause)
		}
		msgs = append(msgs, strings.TrimSpace(msg))
		err = next
	}
	return msgs
}

// headline drops the suggestion lines; suggestions are reported separately.
func headline(msg string) string {
	msg, _, _ = strings.Cut(msg, "\n  💡")
	return msg
}

// Message returns the outermost error message.
func (r Report) Message() string {
	if msgs := chain(r.Err); len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Sources returns the causes below the outermost error, outermost first.
func (r Report) Sources() []string {
	msgs := chain(r.Err)
	if len(msgs) < 2 {
		return nil
	}
	return msgs[1:]
}

// Suggestions returns hints derived from the error chain and log level.
func (r Report) Suggestions() []string {
	var out []string
	add := func(s string) {
		if s == "" {
			return
		}
		for _, existing := range out {
			if existing == s {
				return
			}
		}
		out = append(out, s)
	}

	var capErr *capability.UnavailableError
	if errors.As(r.Err, &capErr) && capErr.BuildTag() != "" {
		add(fmt.Sprintf("Rebuild secstream without the %s build tag", capErr.BuildTag()))
	}

	var kerr *keyring.Error
	if errors.As(r.Err, &kerr) && errors.Is(kerr, keyring.ErrNotFound) {
		add(fmt.Sprintf("Store the secret with 'secstream keyring set %s/%s'", kerr.Service, kerr.Account))
	}

	var cmdErr *secret.CommandFailedError
	if errors.As(r.Err, &cmdErr) {
		add(fmt.Sprintf("Run %s by hand to see its full output", cmdErr.Program))
	}

	if errors.Is(r.Err, stream.ErrSecureTargetWithoutTLS) {
		add("Set tls to one of the providers listed by 'secstream capabilities'")
	}

	var userErr UserError
	if errors.As(r.Err, &userErr) {
		add(userErr.Suggestion)
	}
	var cfgErr ConfigError
	if errors.As(r.Err, &cfgErr) {
		add(cfgErr.Suggestion)
	}
	var commandErr CommandError
	if errors.As(r.Err, &commandErr) {
		add(commandErr.Suggestion)
	}

	if r.Level > zerolog.DebugLevel {
		add("Run with --debug to enable debug logs")
	}
	if r.Level > zerolog.TraceLevel {
		add("Run with --trace to enable verbose logs")
	}
	return out
}

func (r Report) String() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(r.Message())

	if sources := r.Sources(); len(sources) > 0 {
		b.WriteString("\n\nCaused by:")
		for _, s := range sources {
			b.WriteString("\n - ")
			b.WriteString(s)
		}
	}

	if suggestions := r.Suggestions(); len(suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, s := range suggestions {
			b.WriteString("\n - ")
			b.WriteString(s)
		}
	}
	return b.String()
}

type reportJSON struct {
	Error       string   `json:"error"`
	Sources     []string `json:"sources"`
	Suggestions []string `json:"suggestions"`
}

// MarshalJSON renders the report as {"error", "sources", "suggestions"}.
func (r Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		Error:       r.Message(),
		Sources:     r.Sources(),
		Suggestions: r.Suggestions(),
	}
	if out.Sources == nil {
		out.Sources = []string{}
	}
	if out.Suggestions == nil {
		out.Suggestions = []string{}
	}
	return json.Marshal(out)
}

// Print writes the report to w, as JSON when asJSON is set.
func (r Report) Print(w io.Writer, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	_, err := fmt.Fprintln(w, r.String())
	return err
}
