package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	onboardURL    string
	onboardFormat string
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Scrape a URL, generate copy, and save the business",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("onboard"); err != nil {
			return err
		}
		if onboardURL == "" {
			return eris.New("onboard: --url is required")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		b, err := newOnboardService(cfg, st).Onboard(ctx, onboardURL)
		if err != nil {
			return err
		}
		return writeOutput(os.Stdout, b, onboardFormat)
	},
}

func init() {
	onboardCmd.Flags().StringVar(&onboardURL, "url", "", "website or social profile URL")
	onboardCmd.Flags().StringVar(&onboardFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(onboardCmd)
}
