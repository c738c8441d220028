package main

import (
	"fmt"
	"os"

	"erp-assistant/internal/common/config"
	"erp-assistant/internal/common/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "erp-assistant",
	Short: "Natural-language assistant for the ERP record store",
	Long: `erp-assistant answers questions about employees, orders and the system
catalogue by asking a language model which query operations to run.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: configs/config.yaml)")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// newLogger builds the process logger. Commands that print results on
// stdout log to stderr instead.
func newLogger(cfg *config.Config, forceStderr bool) logger.Logger {
	output := cfg.Logging.Output
	if forceStderr && (output == "" || output == "stdout") {
		output = "stderr"
	}
	return logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, output)
}
