package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	scrapeURL    string
	scrapeFormat string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape a website or social profile and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("scrape"); err != nil {
			return err
		}
		if scrapeURL == "" {
			return eris.New("scrape: --url is required")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		d := newScraper(cfg).Scrape(ctx, scrapeURL)
		return writeOutput(os.Stdout, d, scrapeFormat)
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "website or social profile URL")
	scrapeCmd.Flags().StringVar(&scrapeFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(scrapeCmd)
}
