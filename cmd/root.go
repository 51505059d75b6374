package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/pe-research/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pe-research",
	Short: "AI-powered company analysis for private equity research",
	Long: "Answers natural-language questions about public companies: resolves the company, " +
		"pulls market data and reference-page content, analyzes competitors, and composes a " +
		"PE-oriented research report. Runs with or without an AI credential.",
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
