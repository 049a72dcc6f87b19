package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"harvest/config"
	"harvest/internal/adapter/analyzer"
	"harvest/internal/adapter/ngram"
	"harvest/internal/adapter/store"
	"harvest/internal/domain"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding harvest.yaml and the document cache")
	runs := flag.Int("runs", 5, "Number of timed passes over the cached documents")
	noStem := flag.Bool("no-stem", false, "Disable stemming")
	flag.Parse()

	if *runs < 1 {
		fmt.Fprintln(os.Stderr, "-runs must be at least 1")
		os.Exit(2)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	dbPath := config.ResolvePath(*dir, cfg.Cache.Path)
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Println("Usage: go run cmd/benchmark/main.go -dir . [-runs 5] [-no-stem]")
		fmt.Println("\nTimes normalization and n-gram counting over documents in the local cache.")
		fmt.Println("Run 'harvest ngram' first to populate the cache.")
		os.Exit(1)
	}

	st, err := store.NewBoltCache(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening cache: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	docs, err := loadDocs(st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading cache: %v\n", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		fmt.Fprintln(os.Stderr, "Cache is empty - run 'harvest ngram' first")
		os.Exit(1)
	}

	stopwords := analyzer.BuildStopwords(cfg.Analysis.ExtraStopwords, cfg.Analysis.KeepStopwords)
	tokenizer := analyzer.NewTokenizerWithStopwords(cfg.Analysis.Stemming && !*noStem, stopwords)

	var textBytes int
	for _, d := range docs {
		textBytes += len(d.Text)
	}

	fmt.Println("N-GRAM PIPELINE BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Documents: %d (%d bytes)\n", len(docs), textBytes)
	fmt.Printf("Orders:    %v\n", cfg.Analysis.Orders)
	fmt.Printf("Stemming:  %v\n", cfg.Analysis.Stemming && !*noStem)
	fmt.Println()

	var tokenizeTotal, countTotal time.Duration
	var tokens, grams int
	for run := 0; run < *runs; run++ {
		tokens, grams = 0, 0
		counters := make(map[int]*ngram.Counter, len(cfg.Analysis.Orders))
		for _, n := range cfg.Analysis.Orders {
			counters[n] = ngram.NewCounter()
		}

		for _, doc := range docs {
			start := time.Now()
			toks := tokenizer.Tokenize(doc.Text)
			tokenizeTotal += time.Since(start)
			tokens += len(toks)

			start = time.Now()
			for _, n := range cfg.Analysis.Orders {
				g, err := ngram.Extract(toks, n)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
				counters[n].Add(g)
				ngram.Count(g)
				grams += len(g)
			}
			countTotal += time.Since(start)
		}

		start := time.Now()
		for _, c := range counters {
			c.Table()
		}
		countTotal += time.Since(start)
	}

	perRun := func(d time.Duration) time.Duration { return d / time.Duration(*runs) }
	fmt.Printf("Runs: %d\n", *runs)
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("  Tokens per run:        %d\n", tokens)
	fmt.Printf("  N-grams per run:       %d\n", grams)
	fmt.Printf("  Normalize per run:     %s\n", perRun(tokenizeTotal))
	fmt.Printf("  Count per run:         %s\n", perRun(countTotal))
	if secs := perRun(tokenizeTotal).Seconds(); secs > 0 {
		fmt.Printf("  Normalize throughput:  %.1f MB/s\n", float64(textBytes)/secs/1e6)
	}
}

func loadDocs(st *store.BoltCache) ([]domain.Document, error) {
	listed, err := st.ListDocs()
	if err != nil {
		return nil, err
	}
	docs := make([]domain.Document, 0, len(listed))
	for _, d := range listed {
		doc, ok, err := st.GetDoc(d.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}
