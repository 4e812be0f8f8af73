package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mesh-intelligence/forage/internal/paths"
	"github.com/mesh-intelligence/forage/pkg/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeySyncStrategy  = "sync_strategy"
	cfgKeyBatchSize     = "batch_size"
	cfgKeyBatchInterval = "batch_interval"
	cfgKeyLogLevel      = "log_level"

	envPrefix       = "FORAGE"
	defaultLogLevel = "warn"
)

// settings is the fully resolved configuration for one command run.
type settings struct {
	ConfigDir     string        `json:"config_dir"`
	DataDir       string        `json:"data_dir"`
	Backend       string        `json:"backend"`
	SyncStrategy  string        `json:"sync_strategy"`
	BatchSize     int           `json:"batch_size"`
	BatchInterval time.Duration `json:"batch_interval"`
	LogLevel      string        `json:"log_level"`
}

// loadConfig reads config.yaml from configDir. A missing file is not an
// error; defaults apply. sync_strategy, batch_* and log_level can also be
// set through FORAGE_* environment variables.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)
	v.SetDefault(cfgKeyBatchSize, types.DefaultBatchSize)
	v.SetDefault(cfgKeyBatchInterval, types.DefaultBatchInterval)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)

	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{cfgKeySyncStrategy, cfgKeyBatchSize, cfgKeyBatchInterval, cfgKeyLogLevel} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return v, nil
}

// resolveSettings combines flags, config.yaml, environment and platform
// defaults.
func resolveSettings() (settings, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolving config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return settings{}, err
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return settings{}, fmt.Errorf("resolving data dir: %w", err)
	}

	s := settings{
		ConfigDir:     configDir,
		DataDir:       dataDir,
		Backend:       v.GetString(cfgKeyBackend),
		SyncStrategy:  v.GetString(cfgKeySyncStrategy),
		BatchSize:     v.GetInt(cfgKeyBatchSize),
		BatchInterval: v.GetDuration(cfgKeyBatchInterval),
		LogLevel:      v.GetString(cfgKeyLogLevel),
	}
	if flags.logLevel != "" {
		s.LogLevel = flags.logLevel
	}
	return s, nil
}

// storeConfig converts settings into a validated store Config.
func (s settings) storeConfig() (types.Config, error) {
	cfg := types.Config{
		Backend: s.Backend,
		DataDir: s.DataDir,
		SQLiteConfig: &types.SQLiteConfig{
			SyncStrategy:  s.SyncStrategy,
			BatchSize:     s.BatchSize,
			BatchInterval: s.BatchInterval,
		},
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the text logger that writes to w at the configured level.
func (s settings) newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", s.LogLevel, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long:  "Print the configuration forage would use after applying flags,\nconfig.yaml, FORAGE_* environment variables and platform defaults.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings()
			if err != nil {
				return sysError("%w", err)
			}
			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config_dir:     %s\n", s.ConfigDir)
			fmt.Fprintf(out, "data_dir:       %s\n", s.DataDir)
			fmt.Fprintf(out, "backend:        %s\n", s.Backend)
			fmt.Fprintf(out, "sync_strategy:  %s\n", s.SyncStrategy)
			fmt.Fprintf(out, "batch_size:     %d\n", s.BatchSize)
			fmt.Fprintf(out, "batch_interval: %s\n", s.BatchInterval)
			fmt.Fprintf(out, "log_level:      %s\n", s.LogLevel)
			return nil
		},
	}
}
