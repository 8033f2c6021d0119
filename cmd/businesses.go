package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/siteforge/internal/model"
)

var businessesCmd = &cobra.Command{
	Use:   "businesses",
	Short: "Inspect onboarded businesses",
}

// -- businesses list --

var businessesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List onboarded businesses, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		bt, _ := cmd.Flags().GetString("type")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		format, _ := cmd.Flags().GetString("format")

		filter := model.BusinessFilter{Limit: limit, Offset: offset}
		if bt != "" {
			filter.BusinessType = model.ParseBusinessType(bt)
		}

		list, err := st.ListBusinesses(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "businesses list")
		}
		if format != "table" {
			return writeOutput(os.Stdout, list, format)
		}
		if len(list) == 0 {
			fmt.Fprintln(os.Stderr, "No businesses found.")
			return nil
		}
		formatBusinessesList(os.Stdout, list)
		return nil
	},
}

// -- businesses get --

var businessesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a business with its scraped data and generated copy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		b, err := st.GetBusiness(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "businesses get")
		}
		format, _ := cmd.Flags().GetString("format")
		return writeOutput(os.Stdout, b, format)
	},
}

func init() {
	businessesListCmd.Flags().String("type", "", "filter by business type")
	businessesListCmd.Flags().Int("limit", 20, "max businesses to show")
	businessesListCmd.Flags().Int("offset", 0, "skip this many businesses")
	businessesListCmd.Flags().String("format", "table", "output format: table, json or yaml")
	businessesGetCmd.Flags().String("format", "json", "output format: json or yaml")

	businessesCmd.AddCommand(businessesListCmd, businessesGetCmd)
	rootCmd.AddCommand(businessesCmd)
}

func formatBusinessesList(out io.Writer, list []model.Business) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tTYPE\tCONFIDENCE\tNEEDS_INPUT\tCREATED")
	for _, b := range list {
		conf := "-"
		if b.ScrapedData != nil {
			conf = string(b.ScrapedData.Confidence)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			b.ID, truncateCell(b.Name, 40), b.BusinessType, conf,
			len(b.NeedsInput), b.CreatedAt.Format(time.DateTime))
	}
	_ = w.Flush()
}

func truncateCell(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
