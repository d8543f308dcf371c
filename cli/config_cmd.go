package cli

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jgoldverg/canopy/internal"
)

func ConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or update canopy configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(configShowCommand())
	cmd.AddCommand(configSetCommand())
	return cmd
}

func configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetAppConfig(cmd)
			if cfg == nil {
				return fmt.Errorf("config unavailable")
			}
			pterm.DefaultSection.Println("canopy configuration")
			pterm.DefaultBasicText.Println("  credentials_file:", cfg.CredentialsFile)
			pterm.DefaultBasicText.Println("  known_hosts_file:", cfg.KnownHostsFile)
			pterm.DefaultBasicText.Println("  log_level:", cfg.LogLevel)
			pterm.DefaultBasicText.Println("  chunk_size:", cfg.ChunkSize)
			pterm.DefaultBasicText.Println("  op_timeout_ms:", cfg.OpTimeoutMs)
			return nil
		},
	}
}

func configSetCommand() *cobra.Command {
	var credentialsFile string
	var knownHostsFile string
	var logLevel string
	var chunkSize int
	var opTimeoutMs int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the app configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetAppConfig(cmd)
			if cfg == nil {
				return fmt.Errorf("config unavailable")
			}

			flags := cmd.Flags()
			if flags.Changed("credentials-file") {
				cfg.CredentialsFile = strings.TrimSpace(credentialsFile)
			}
			if flags.Changed("known-hosts-file") {
				cfg.KnownHostsFile = strings.TrimSpace(knownHostsFile)
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("chunk-size") {
				if chunkSize <= 0 {
					return fmt.Errorf("chunk size must be > 0")
				}
				cfg.ChunkSize = chunkSize
			}
			if flags.Changed("op-timeout-ms") {
				if opTimeoutMs <= 0 {
					return fmt.Errorf("op timeout must be > 0")
				}
				cfg.OpTimeoutMs = opTimeoutMs
			}

			path := ""
			if f := cmd.Flag("app-config"); f != nil {
				path = f.Value.String()
			}
			saved, err := cfg.Save(path)
			if err != nil {
				return fmt.Errorf("saving app config: %w", err)
			}
			internal.Info("configuration updated", internal.Fields{
				internal.ConfigPath: saved,
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&credentialsFile, "credentials-file", "", "Credential store path")
	cmd.Flags().StringVar(&knownHostsFile, "known-hosts-file", "", "Known hosts file for host key verification")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (info, debug, ...)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Default transfer chunk size in bytes")
	cmd.Flags().IntVar(&opTimeoutMs, "op-timeout-ms", 0, "Per-call timeout in milliseconds")
	return cmd
}
