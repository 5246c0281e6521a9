package cmd

import (
	"influencer-platform/backend/pkg/config"
	"influencer-platform/backend/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "influencerd",
	Short:         "Influencer data layer: schema migrations, health checks and ops endpoints",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.New()
		log = newLogger(cfg)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
	RunE: runServe,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(checkCmd)
}

func newLogger(cfg *config.Config) *logger.Logger {
	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"
	logConfig.File = cfg.Logging.File
	logConfig.MaxSizeMB = cfg.Logging.MaxSizeMB
	logConfig.MaxBackups = cfg.Logging.MaxBackups
	logConfig.MaxAgeDays = cfg.Logging.MaxAgeDays

	l := logger.New(logConfig)
	logger.SetGlobal(l)
	return l
}
