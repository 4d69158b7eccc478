package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wayfarer/internal/app"
	"github.com/kailas-cloud/wayfarer/internal/config"
	logpkg "github.com/kailas-cloud/wayfarer/internal/logger"
)

var (
	configPath string
	envName    string
	jsonOutput bool
)

var (
	globalConfig config.Config
	globalLogger *zap.Logger
	globalApp    *app.App
)

var rootCmd = &cobra.Command{
	Use:   "wayfarerctl",
	Short: "Travel knowledge retrieval and trip risk scoring",
	Long: `wayfarerctl builds and queries the travel knowledge index,
scores trip risk and runs the trip planner from the command line.
It can also serve the same tools to AI agents over MCP (stdio).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		globalConfig = cfg

		// Logs go to stderr; stdout carries command output and MCP frames.
		logger, err := logpkg.New("wayfarerctl", loggerEnv(), cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		globalLogger = logger
		return nil
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if globalApp != nil {
			globalApp.Close()
			globalApp = nil
		}
		if globalLogger != nil {
			_ = globalLogger.Sync()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default: config/<env>.yaml)")
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "Environment name: local, dev, prod (default: $ENV or local)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of text")
}

func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load(loggerEnv())
}

func loggerEnv() string {
	if envName != "" {
		return envName
	}
	return config.GetEnv()
}

// openApp wires the services on first use.
func openApp(ctx context.Context) (*app.App, error) {
	if globalApp != nil {
		return globalApp, nil
	}
	a, err := app.Build(ctx, globalConfig, globalLogger)
	if err != nil {
		return nil, err
	}
	globalApp = a
	return a, nil
}
