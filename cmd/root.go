package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anshu3933/tlav/internal/app"
	"github.com/anshu3933/tlav/internal/config"
	"github.com/anshu3933/tlav/internal/logging"
	"github.com/anshu3933/tlav/internal/metrics"
	"github.com/anshu3933/tlav/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "tlav",
	Short:         "Track learner mastery from assessment responses",
	Long:          "tlav decomposes assessment questions into knowledge components, traces student mastery from their responses, and reports on it.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TLAV_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./tlav.yaml or $XDG_CONFIG_HOME/tlav/tlav.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(taxonomyCmd)
	rootCmd.AddCommand(assessmentCmd)
	rootCmd.AddCommand(studentCmd)
	rootCmd.AddCommand(respondCmd)
	rootCmd.AddCommand(knowledgeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the config named by --config and applies --db.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Backend == config.BackendSQLite {
		p, err := resolveDBPath(cmd, cfg)
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		cfg.Store.DB = p
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then store.db from config, then TLAV_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.Store.DB != "" {
		return cfg.Store.DB, store.EnsureDir(cfg.Store.DB)
	}
	return store.DefaultDBPath()
}

// openApp loads configuration and wires the services. m may be nil.
func openApp(cmd *cobra.Command, m *metrics.Metrics) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Output: os.Stderr,
	})
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), app.Options{Config: cfg, Logger: log, Metrics: m})
}
