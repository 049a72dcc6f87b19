package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"harvest/config"
	"harvest/internal/adapter/analyzer"
	"harvest/internal/adapter/cache"
	"harvest/internal/adapter/fetch"
	"harvest/internal/adapter/freqfile"
	"harvest/internal/domain"
	"harvest/internal/usecase"
)

var (
	ngramIDs     []string
	ngramOut     string
	ngramOrders  []int
	ngramNoCache bool
	ngramTop     int
)

var ngramCmd = &cobra.Command{
	Use:   "ngram",
	Short: "Count n-gram frequencies over the configured documents",
	Long: `Fetch every configured document, normalize its text (lowercase, letters
only, stopwords removed, Porter stemmed) and write one CSV per document and
n-gram order plus a combined CSV per order.

Examples:
  harvest ngram                          # Default corpus, orders 1-3
  harvest ngram --ids 6334220,6334221    # Selected documents
  harvest ngram --orders 2 --top 20      # Bigrams only, print top 20`,
	Args: cobra.NoArgs,
	RunE: runNgram,
}

func init() {
	ngramCmd.Flags().StringSliceVar(&ngramIDs, "ids", nil, "document ids (default from config)")
	ngramCmd.Flags().StringVarP(&ngramOut, "out", "o", "", "output directory (default from config)")
	ngramCmd.Flags().IntSliceVar(&ngramOrders, "orders", nil, "n-gram orders (default from config)")
	ngramCmd.Flags().BoolVar(&ngramNoCache, "no-cache", false, "do not read or write the persistent document cache")
	ngramCmd.Flags().IntVar(&ngramTop, "top", -1, "print the top N combined n-grams per order (default from config)")
	rootCmd.AddCommand(ngramCmd)
}

func runNgram(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	// Command-line overrides
	if len(ngramIDs) > 0 {
		cfg.Corpus.IDs = ngramIDs
	}
	if ngramOut != "" {
		cfg.Output.Dir = ngramOut
	}
	if len(ngramOrders) > 0 {
		cfg.Analysis.Orders = ngramOrders
	}
	if ngramNoCache {
		cfg.Cache.Enabled = false
	}
	if ngramTop >= 0 {
		cfg.Analysis.TopN = ngramTop
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The writer never creates the output directory
	outDir := config.ResolvePath(GetRootDir(), cfg.Output.Dir)
	if err := config.EnsureDir(outDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	docCache, closeCache, err := openDocumentCache(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	client := fetch.NewClient(cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
	fetcher := cache.NewCachedFetcher(fetch.NewHTTPFetcher(client, cfg.Corpus.BaseURL, cfg.Corpus.Suffix), docCache)

	stopwords := analyzer.BuildStopwords(cfg.Analysis.ExtraStopwords, cfg.Analysis.KeepStopwords)
	tokenizer := analyzer.NewTokenizerWithStopwords(cfg.Analysis.Stemming, stopwords)

	ngramUC := usecase.NewNgramUseCase(fetcher, tokenizer)

	ids := cfg.DocumentIDs()
	fmt.Fprintf(cmd.ErrOrStderr(), "Processing %d documents from %s\n", len(ids), cfg.Corpus.BaseURL)

	bar := newProgressBar(len(ids), "Fetching")
	start := time.Now()
	processed := 0

	result, err := ngramUC.Run(ctx, usecase.NgramRequest{
		IDs:    ids,
		Orders: cfg.Analysis.Orders,
		OutDir: outDir,
	}, func(id string) {
		processed++
		bar.Add(1)
		bar.Describe(etaDescription("Fetching", start, processed, len(ids)))
	})
	if err != nil {
		return fmt.Errorf("n-gram run failed: %w", err)
	}

	var written int64
	for _, path := range result.Files {
		if info, err := os.Stat(path); err == nil {
			written += info.Size()
		}
	}
	hits, misses := fetcher.Stats()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nN-gram counting complete:\n")
	fmt.Fprintf(out, "  Documents:    %d\n", result.Documents)
	fmt.Fprintf(out, "  Tokens:       %d\n", result.Tokens)
	fmt.Fprintf(out, "  Files:        %d (%s)\n", len(result.Files), humanize.Bytes(uint64(written)))
	fmt.Fprintf(out, "  Cache:        %d hits, %d misses\n", hits, misses)
	fmt.Fprintf(out, "  Elapsed:      %s\n", formatDuration(time.Since(start)))
	fmt.Fprintf(out, "\nOutput written to: %s\n", outDir)

	if cfg.Analysis.TopN > 0 {
		for _, n := range cfg.Analysis.Orders {
			printTopGrams(cmd, n, result.Combined[n].Top(cfg.Analysis.TopN))
		}
	}

	return nil
}

func printTopGrams(cmd *cobra.Command, order int, top domain.FrequencyTable) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nTop %s (%s):\n", domain.OrderName(order), freqfile.CombinedName(order))

	t := newTable(out)
	t.AppendHeader(table.Row{"#", "N-gram", "Count"})
	for i, f := range top {
		t.AppendRow(table.Row{i + 1, f.Gram.String(), f.Count})
	}
	t.Render()
}
