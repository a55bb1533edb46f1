// protectctl exercises the backend API from the command line: device
// registration, settings and stats loads, metric posting and isolation
// notices. It keeps its state (tokens, consent, cached responses) in a
// local SQLite store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	protect "github.com/NES-Digital-Service/protect-scotland"
	"github.com/NES-Digital-Service/protect-scotland/attest"
	"github.com/NES-Digital-Service/protect-scotland/internal/config"
	"github.com/NES-Digital-Service/protect-scotland/storage"
)

var debug bool

const opTimeout = 60 * time.Second

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "protectctl",
		Short: "Command-line client for the contact-tracing backend API",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})

			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				_ = os.Setenv("PROTECT_DEBUG", "true")
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newForgetCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newMetricCmd())
	rootCmd.AddCommand(newConsentCmd())
	rootCmd.AddCommand(newNoticeCmd())

	return rootCmd
}

// newClient wires configuration, the SQLite store and the attestation
// provider into a ready client.
func newClient() (*protect.Client, *storage.SQLite, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}

	path := cfg.StorePath
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, nil, err
		}
		path = filepath.Join(dir, "protect-scotland", "state.db")
	}
	store, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}

	opts := []protect.Option{
		protect.WithAppVersion(cfg.BuildVersion),
		protect.WithPlatform(cfg.Platform),
	}
	if len(cfg.PinnedCertFingerprints) > 0 {
		opts = append(opts, protect.WithPinnedCertificates(cfg.PinnedCertFingerprints))
	}
	if !cfg.IsProduction() && cfg.TestToken != "" {
		opts = append(opts, protect.WithAttestationProvider(attest.StaticTokenProvider{Token: cfg.TestToken}))
	}

	c, err := protect.New(cfg.APIURL, store, opts...)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return c, store, nil
}

func withClient(run func(ctx context.Context, c *protect.Client, store *storage.SQLite) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, store, err := newClient()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
		defer cancel()
		return run(ctx, c, store)
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register this device and store its credentials",
		RunE: withClient(func(ctx context.Context, c *protect.Client, _ *storage.SQLite) error {
			reg, err := c.Register(ctx)
			if err != nil {
				if protect.IsInvalidTimestamp(err) {
					return fmt.Errorf("registration rejected: device clock appears to be wrong: %w", err)
				}
				return err
			}
			log.Info().Msg("device registered")
			return printJSON(reg)
		}),
	}
}

func newForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget",
		Short: "Delete this device's registration and local credentials",
		RunE: withClient(func(ctx context.Context, c *protect.Client, _ *storage.SQLite) error {
			if !c.Forget(ctx) {
				return fmt.Errorf("forget failed")
			}
			log.Info().Msg("device forgotten")
			return nil
		}),
	}
}

func newSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Load remote settings (merged over defaults, cache-backed)",
		RunE: withClient(func(ctx context.Context, c *protect.Client, _ *storage.SQLite) error {
			s, err := c.SettingsWithCache(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("remote settings unavailable, using fallback")
			}
			return printJSON(s)
		}),
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Load install statistics (cache-backed)",
		RunE: withClient(func(ctx context.Context, c *protect.Client, _ *storage.SQLite) error {
			res := c.StatsWithCache(ctx)
			if res.Data == nil {
				return fmt.Errorf("no stats available: %w", res.Err)
			}
			if res.Err != nil {
				log.Warn().Err(res.Err).Msg("serving cached stats")
			}
			return printJSON(res.Data)
		}),
	}
}

func newMetricCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metric <event>",
		Short: "Post an analytics event (requires stored consent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, store, err := newClient()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()

			if !c.SaveMetric(ctx, protect.MetricEvent(args[0])) {
				return fmt.Errorf("metric not sent (missing consent or backend failure)")
			}
			log.Info().Str("event", args[0]).Msg("metric sent")
			return nil
		},
	}
}

func newConsentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consent <true|false>",
		Short: "Record analytics consent locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] != "true" && args[0] != "false" {
				return fmt.Errorf("consent must be true or false")
			}
			_, store, err := newClient()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()
			if err := store.Set(ctx, storage.KeyAnalyticsConsent, args[0]); err != nil {
				return err
			}
			log.Info().Str("consent", args[0]).Msg("analytics consent recorded")
			return nil
		},
	}
}

func newNoticeCmd() *cobra.Command {
	noticeCmd := &cobra.Command{
		Use:   "notice",
		Short: "Create and validate isolation notices",
	}

	noticeCmd.AddCommand(&cobra.Command{
		Use:   "create <end-date>",
		Short: "Create an isolation notice for the given end date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, store, err := newClient()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()

			key, err := c.CreateNotice(ctx, args[0])
			if err != nil {
				return err
			}
			if err := store.Set(ctx, storage.KeyNoticeCertKey, key); err != nil {
				log.Warn().Err(err).Msg("failed to persist notice key")
			}
			return printJSON(map[string]string{"key": key})
		},
	})

	noticeCmd.AddCommand(&cobra.Command{
		Use:   "validate [key]",
		Short: "Validate a notice key (defaults to the stored one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, store, err := newClient()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()

			key := ""
			if len(args) == 1 {
				key = args[0]
			} else {
				key, err = store.Get(ctx, storage.KeyNoticeCertKey)
				if err != nil {
					return fmt.Errorf("no notice key stored; pass one explicitly")
				}
			}

			valid, err := c.ValidateNoticeKey(ctx, key)
			if err != nil {
				return err
			}
			return printJSON(map[string]bool{"valid": valid})
		},
	})

	return noticeCmd
}
