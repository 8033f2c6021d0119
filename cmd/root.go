package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/siteforge/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "siteforge",
	Short: "Website scraping and business onboarding",
	Long:  "Scrapes business websites and social profiles into structured data, generates site copy, and stores onboarded businesses.",
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
		if s := generationCosts.Summary(); s.Calls > 0 {
			zap.L().Info("generation usage",
				zap.Int("calls", s.Calls),
				zap.Int64("input_tokens", s.Usage.InputTokens),
				zap.Int64("output_tokens", s.Usage.OutputTokens),
				zap.Float64("cost_usd", s.TotalUSD),
			)
		}
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
