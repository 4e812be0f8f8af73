package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/forage/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configFile is the structure written to config.yaml.
type configFile struct {
	Backend      string `yaml:"backend"`
	DataDir      string `yaml:"data_dir,omitempty"`
	SyncStrategy string `yaml:"sync_strategy"`
	LogLevel     string `yaml:"log_level"`
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize forage storage",
		Long:  "Create the configuration and data directories, write a default\nconfig.yaml if none exists, then check that the store opens.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings()
	if err != nil {
		return sysError("%w", err)
	}

	if err := os.MkdirAll(s.ConfigDir, 0o755); err != nil {
		return sysError("creating config directory: %w", err)
	}

	// Only a --data-dir flag is recorded; otherwise the resolution chain
	// keeps deciding on every run.
	configPath := filepath.Join(s.ConfigDir, configFileExt)
	created, err := writeConfigIfMissing(configPath, configFile{
		Backend:      types.BackendSQLite,
		DataDir:      flags.dataDir,
		SyncStrategy: types.SyncImmediate,
		LogLevel:     defaultLogLevel,
	})
	if err != nil {
		return sysError("writing config: %w", err)
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	if err := sess.store.Health(cmd.Context()); err != nil {
		sess.close()
		return sysError("checking storage: %w", err)
	}
	if err := sess.close(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if created {
		fmt.Fprintf(out, "Wrote %s\n", configPath)
	}
	fmt.Fprintf(out, "Forage initialized in %s\n", sess.settings.DataDir)
	return nil
}

// writeConfigIfMissing creates path from cfg unless it already exists.
// Reports whether the file was written.
func writeConfigIfMissing(path string, cfg configFile) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# forage configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
