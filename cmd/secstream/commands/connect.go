package commands

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/secstream/internal/config"
	dserrors "github.com/systmms/secstream/internal/errors"
	"github.com/systmms/secstream/pkg/stream"
)

type connectResult struct {
	Target      string `json:"target"`
	Kind        string `json:"kind"`
	Secure      bool   `json:"secure"`
	RemoteAddr  string `json:"remote_addr"`
	Version     string `json:"version,omitempty"`
	CipherSuite string `json:"cipher_suite,omitempty"`
	ALPN        string `json:"alpn,omitempty"`
}

// looksLikeTarget tells a URL or host:port apart from an account name.
func looksLikeTarget(s string) bool {
	return strings.Contains(s, "://") || strings.Contains(s, ":")
}

func loadRoots(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, dserrors.UserError{
			Message:    fmt.Sprintf("no certificates found in %s", path),
			Suggestion: "Pass a PEM encoded CA certificate",
		}
	}
	return pool, nil
}

func NewConnectCommand(cfg *config.Config, opts *Options) *cobra.Command {
	var (
		tlsName     string
		fingerprint string
		caFile      string
		alpn        []string
	)

	cmd := &cobra.Command{
		Use:   "connect [ACCOUNT|URL]",
		Short: "Open a stream to an account or URL and report how it is secured",
		Long: `Connect to the url of an account, or to a URL given directly, and print
the stream kind that was negotiated.

http and ws targets are always plain. https, wss and tls targets require a
TLS provider and are never downgraded to plaintext.

Examples:
  secstream connect work
  secstream connect https://example.com --tls utls --fingerprint firefox
  secstream connect tls://imap.example.com:993 --json`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeAccounts(cfg),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := opts.accountName(args)

			dialer := &stream.Dialer{
				Timeout:     config.DefaultTimeout,
				Fingerprint: fingerprint,
				NextProtos:  alpn,
				Logger:      opts.logger(cfg),
				Metrics:     opts.Metrics,
			}

			var (
				rawTarget string
				sel       = stream.DefaultTLS()
			)
			if looksLikeTarget(arg) {
				rawTarget = arg
			} else {
				name, account, err := loadAccount(cfg, arg)
				if err != nil {
					return err
				}
				if account.URL == "" {
					return dserrors.ConfigError{
						Field:      "accounts." + name + ".url",
						Message:    "account has no url",
						Suggestion: "Add a url such as https://example.com or tls://host:993",
					}
				}
				rawTarget = account.URL
				sel = account.TLSSelection()
				dialer.Timeout = account.Timeout()
				if dialer.Fingerprint == "" {
					dialer.Fingerprint = account.Fingerprint
				}
			}

			if cmd.Flags().Changed("tls") {
				parsed, err := stream.ParseTLS(tlsName)
				if err != nil {
					return err
				}
				sel = parsed
			}
			if caFile != "" {
				roots, err := loadRoots(caFile)
				if err != nil {
					return err
				}
				dialer.RootCAs = roots
			}

			target, err := stream.ParseTarget(rawTarget)
			if err != nil {
				return err
			}

			s, err := dialer.Dial(cmd.Context(), target, sel)
			if err != nil {
				var ioErr *stream.IOError
				if errors.As(err, &ioErr) {
					err = explain(sel.String(), ioErr.Op, err)
				}
				return fmt.Errorf("connect to %s: %w", target, err)
			}
			defer func() { _ = s.Close() }()

			res := connectResult{
				Target:     target.String(),
				Kind:       s.Kind().String(),
				Secure:     s.Secure(),
				RemoteAddr: s.RemoteAddr().String(),
			}
			if state, ok := s.ConnectionState(); ok {
				res.Version = state.VersionName()
				res.CipherSuite = state.CipherSuiteName()
				res.ALPN = state.NegotiatedProtocol
			}

			out := cmd.OutOrStdout()
			if opts.JSON {
				return printJSON(out, res)
			}
			if !res.Secure {
				_, err = fmt.Fprintf(out, "Connected to %s (%s, plain)\n", res.Target, res.RemoteAddr)
				return err
			}
			_, err = fmt.Fprintf(out, "Connected to %s (%s, %s, %s %s)\n", res.Target, res.RemoteAddr, res.Kind, res.Version, res.CipherSuite)
			return err
		},
	}

	cmd.Flags().StringVar(&tlsName, "tls", "", "TLS provider: none, crypto-tls, fips-tls or utls")
	cmd.Flags().StringVar(&fingerprint, "fingerprint", "", "utls ClientHello fingerprint")
	cmd.Flags().StringSliceVar(&alpn, "alpn", nil, "Application protocols to offer with ALPN, e.g. h2,http/1.1 (default: none)")
	cmd.Flags().StringVar(&caFile, "ca-file", "", "PEM file of CA certificates to trust instead of the system roots")

	return cmd
}
