package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/siteforge/internal/model"
)

var (
	batchFile        string
	batchConcurrency int
	batchRPS         float64
	batchSave        bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Scrape a list of URLs concurrently",
	Long:  "Reads one URL per line (blank lines and # comments ignored) and writes one JSON result per line. With --save, each URL is onboarded and all businesses are saved in one transaction.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if batchConcurrency > 0 {
			cfg.Batch.Concurrency = batchConcurrency
		}
		if cmd.Flags().Changed("rps") {
			cfg.Batch.RPS = batchRPS
		}
		if err := cfg.Validate("batch"); err != nil {
			return err
		}
		if batchSave {
			if err := cfg.Validate("onboard"); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		in := io.Reader(os.Stdin)
		if batchFile != "" && batchFile != "-" {
			f, err := os.Open(batchFile)
			if err != nil {
				return eris.Wrap(err, "batch: open url file")
			}
			defer f.Close() //nolint:errcheck
			in = f
		}
		urls, err := readURLs(in)
		if err != nil {
			return err
		}

		if !batchSave {
			sc := newScraper(cfg)
			results := processBatch(ctx, urls, cfg.Batch.Concurrency, cfg.Batch.RPS, func(ctx context.Context, u string) (any, error) {
				return sc.Scrape(ctx, u), nil
			})
			return writeResults(os.Stdout, results)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		svc := newOnboardService(cfg, st)
		results := processBatch(ctx, urls, cfg.Batch.Concurrency, cfg.Batch.RPS, func(ctx context.Context, u string) (any, error) {
			return svc.Build(ctx, u)
		})
		var built []*model.Business
		for _, r := range results {
			if b, ok := r.Result.(*model.Business); ok && b != nil {
				built = append(built, b)
			}
		}
		n, err := st.SaveBusinesses(ctx, built)
		if err != nil {
			return eris.Wrap(err, "batch: save businesses")
		}
		zap.L().Info("batch: saved businesses", zap.Int64("saved", n))
		return writeResults(os.Stdout, results)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "-", "file with one URL per line (- for stdin)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent scrapes (default from config)")
	batchCmd.Flags().Float64Var(&batchRPS, "rps", 0, "max scrape starts per second, 0 for unlimited (default from config)")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "onboard each URL and save the businesses")
	rootCmd.AddCommand(batchCmd)
}

// readURLs returns the distinct non-comment lines of r in order.
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	seen := map[string]bool{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		urls = append(urls, line)
	}
	return urls, eris.Wrap(sc.Err(), "batch: read urls")
}

type batchResult struct {
	URL    string `json:"url"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type batchFunc func(ctx context.Context, url string) (any, error)

// processBatch runs fn over urls with at most concurrency in flight and at
// most rps starts per second. Results keep input order; URLs never started
// because ctx ended are reported with its error.
func processBatch(ctx context.Context, urls []string, concurrency int, rps float64, fn batchFunc) []batchResult {
	results := make([]batchResult, len(urls))
	if len(urls) == 0 {
		zap.L().Info("batch: no urls to process")
		return results
	}
	if concurrency < 1 {
		concurrency = 1
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	limiter := rate.NewLimiter(limit, 1)

	zap.L().Info("batch: processing",
		zap.Int("urls", len(urls)),
		zap.Int("concurrency", concurrency),
		zap.Float64("rps", rps),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	var succeeded, failed atomic.Int64

	for i, u := range urls {
		results[i].URL = u
		if err := limiter.Wait(gctx); err != nil {
			for j := i; j < len(urls); j++ {
				results[j] = batchResult{URL: urls[j], Error: err.Error()}
			}
			failed.Add(int64(len(urls) - i))
			break
		}
		g.Go(func() error {
			res, err := fn(gctx, u)
			if err != nil {
				failed.Add(1)
				results[i].Error = err.Error()
				zap.L().Warn("batch: url failed", zap.String("url", u), zap.Error(err))
				return nil // one bad URL never aborts the batch
			}
			succeeded.Add(1)
			results[i].Result = res
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("batch: complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return results
}

// writeResults prints one JSON object per line.
func writeResults(w io.Writer, results []batchResult) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "batch: write result")
		}
	}
	return nil
}
