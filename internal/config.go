package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig drives the canopy CLI. Durations are milliseconds so the TOML
// stays plain integers.
type AppConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	KnownHostsFile  string `mapstructure:"known_hosts_file"`
	LogLevel        string `mapstructure:"log_level"`
	ChunkSize       int    `mapstructure:"chunk_size"`
	OpTimeoutMs     int    `mapstructure:"op_timeout_ms"`
}

func LoadAppConfig(configPath string) (*AppConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	v, err := initViper(configPath, filepath.Join(home, ".canopy"), "cli_config", "toml", "CANOPY_CLI_CONFIG")
	if err != nil {
		return nil, err
	}

	v.SetDefault("credentials_file", filepath.Join(home, ".canopy", "credentials_store.toml"))
	v.SetDefault("known_hosts_file", filepath.Join(home, ".ssh", "known_hosts"))
	v.SetDefault("log_level", "info")
	v.SetDefault("chunk_size", 32768)
	v.SetDefault("op_timeout_ms", 5000)

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CredentialsFile = expandPath(cfg.CredentialsFile)
	cfg.KnownHostsFile = expandPath(cfg.KnownHostsFile)

	// Create-on-first-run ONLY: if viper read no file, write defaults to the
	// chosen path unless something already sits there.
	if v.ConfigFileUsed() == "" {
		writePath := configPath
		if writePath == "" {
			writePath = filepath.Join(home, ".canopy", "cli_config.toml")
		}
		if _, statErr := os.Stat(writePath); errors.Is(statErr, os.ErrNotExist) {
			if _, err := cfg.Save(writePath); err != nil {
				return nil, fmt.Errorf("persist default app config: %w", err)
			}
			Info("client config written", Fields{
				ConfigPath: writePath,
			})
		}
	}

	return &cfg, nil
}

func (cfg *AppConfig) Save(path string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if path == "" {
		path = filepath.Join(home, ".canopy", "cli_config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("credentials_file", cfg.CredentialsFile)
	v.Set("known_hosts_file", cfg.KnownHostsFile)
	v.Set("log_level", cfg.LogLevel)
	v.Set("chunk_size", cfg.ChunkSize)
	v.Set("op_timeout_ms", cfg.OpTimeoutMs)

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write app config: %w", err)
	}
	_ = os.Chmod(path, 0o600)
	return path, nil
}

func initViper(configPath, defaultDir, defaultName, defaultType, envPrefix string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType(defaultType)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(defaultDir)
		v.AddConfigPath(".")
		v.SetConfigName(defaultName)
	}

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

func expandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
