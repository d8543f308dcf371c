package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoldverg/canopy/backend"
	"github.com/jgoldverg/canopy/backend/metrics"
	"github.com/jgoldverg/canopy/backend/sftpchan"
	"github.com/jgoldverg/canopy/internal"
)

type ctxKey string

const appCtxKey ctxKey = "appData"

func NewRootCommand() *cobra.Command {
	var appConfigPath string

	rootCmd := &cobra.Command{
		Use:   "canopy",
		Short: "canopy performs recursive tree operations and file transfers over SFTP",
		Long: `canopy layers tree-level operations on top of plain SFTP: recursive
directory creation, filtered recursive listing, recursive deletion, and
chunked upload/download. The server only ever sees single-level calls.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := internal.LoadAppConfig(appConfigPath)
			if err != nil {
				return fmt.Errorf("failed to load app config: %w", err)
			}

			if err := internal.ConfigureLogger(cfg.LogLevel); err != nil {
				internal.Warn("invalid log level in app config, defaulting to info", internal.Fields{
					internal.FieldError: err.Error(),
				})
			}

			ctx := context.WithValue(cmd.Context(), appCtxKey, cfg)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&appConfigPath, "app-config", "", "Path to app config file (TOML)")

	rootCmd.AddCommand(TreeCommand())
	rootCmd.AddCommand(TransferCommand())
	rootCmd.AddCommand(CredentialCommand())
	rootCmd.AddCommand(PlanCommand())
	rootCmd.AddCommand(ConfigCommand())

	return rootCmd
}

// GetAppConfig pulls the loaded config out of the command context.
func GetAppConfig(cmd *cobra.Command) *internal.AppConfig {
	if v := cmd.Context().Value(appCtxKey); v != nil {
		if data, ok := v.(*internal.AppConfig); ok {
			return data
		}
	}
	return nil
}

// remoteSession is the per-invocation wiring every remote command shares: a
// dialed SFTP session, the instrumented channel on top of it, and the
// collector behind the end-of-run summary.
type remoteSession struct {
	session   *sftpchan.Session
	channel   backend.Channel
	collector *metrics.Collector
}

func (rs *remoteSession) Close() {
	if err := rs.session.Close(); err != nil {
		internal.Warn("failed to close sftp session", internal.Fields{
			internal.FieldError: err.Error(),
		})
	}
}

func openRemoteSession(cmd *cobra.Command, credentialName string) (*remoteSession, error) {
	if credentialName == "" {
		return nil, fmt.Errorf("must specify a credential with --cred")
	}
	cfg := GetAppConfig(cmd)
	store, err := backend.NewTomlCredentialStorage(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	cred, err := store.GetCredentialByName(credentialName)
	if err != nil {
		return nil, fmt.Errorf("credential %q: %w", credentialName, err)
	}

	session, err := sftpchan.Dial(cred, cfg.KnownHostsFile)
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector()
	return &remoteSession{
		session:   session,
		channel:   metrics.InstrumentChannel(session.Channel(), collector),
		collector: collector,
	}, nil
}

// opTimeout converts the configured per-call timeout.
func opTimeout(cfg *internal.AppConfig) time.Duration {
	if cfg == nil || cfg.OpTimeoutMs <= 0 {
		return backend.DefaultTimeout
	}
	return time.Duration(cfg.OpTimeoutMs) * time.Millisecond
}
