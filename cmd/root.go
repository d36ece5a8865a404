package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/usercue/thematic-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "thematic-cli",
	Short: "Asynchronous thematic analysis over survey data",
	Long:  "Extracts per-question themes from interview workbooks via Claude, then synthesizes a cross-question business summary once every question completes.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
