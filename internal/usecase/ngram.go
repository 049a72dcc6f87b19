package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"harvest/internal/adapter/freqfile"
	"harvest/internal/adapter/ngram"
	"harvest/internal/domain"
	"harvest/internal/port"
)

// NgramUseCase fetches documents and writes their n-gram frequency tables.
type NgramUseCase struct {
	fetcher   port.Fetcher
	tokenizer port.Tokenizer
}

// NewNgramUseCase creates a new n-gram use case.
func NewNgramUseCase(fetcher port.Fetcher, tokenizer port.Tokenizer) *NgramUseCase {
	return &NgramUseCase{
		fetcher:   fetcher,
		tokenizer: tokenizer,
	}
}

// NgramRequest selects the documents, orders and output directory of a run.
type NgramRequest struct {
	IDs    []string
	Orders []int
	OutDir string
}

// NgramResult contains the results of an n-gram run.
type NgramResult struct {
	Documents int
	Tokens    int
	Files     []string
	Combined  map[int]domain.FrequencyTable
}

// ProgressFunc is called once per processed item.
type ProgressFunc func(item string)

// Run processes every document in request order, skipping repeated ids. The
// first fetch or write error aborts the run.
func (u *NgramUseCase) Run(ctx context.Context, req NgramRequest, progress ProgressFunc) (*NgramResult, error) {
	seenOrders := make(map[int]bool, len(req.Orders))
	for _, n := range req.Orders {
		if n < 1 {
			return nil, fmt.Errorf("%w: %d", domain.ErrInvalidOrder, n)
		}
		if seenOrders[n] {
			return nil, fmt.Errorf("%w: %d listed twice", domain.ErrInvalidOrder, n)
		}
		seenOrders[n] = true
	}

	result := &NgramResult{
		Combined: make(map[int]domain.FrequencyTable, len(req.Orders)),
	}

	counters := make(map[int]*ngram.Counter, len(req.Orders))
	for _, n := range req.Orders {
		counters[n] = ngram.NewCounter()
	}

	seenIDs := make(map[string]bool, len(req.IDs))
	for _, id := range req.IDs {
		// A repeated id would be counted twice in the combined tables
		if seenIDs[id] {
			continue
		}
		seenIDs[id] = true

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := u.fetcher.Fetch(ctx, id)
		if err != nil {
			return nil, err
		}

		tokens := u.tokenizer.Tokenize(doc.Text)
		result.Tokens += len(tokens)

		// Per-document tables; grams never span documents
		for _, n := range req.Orders {
			grams, err := ngram.Extract(tokens, n)
			if err != nil {
				return nil, err
			}
			counters[n].Add(grams)

			path, err := freqfile.Write(req.OutDir, freqfile.FileName(n, id), ngram.Count(grams))
			if err != nil {
				return nil, err
			}
			result.Files = append(result.Files, path)
		}

		result.Documents++
		slog.DebugContext(ctx, "processed document", "id", id, "tokens", len(tokens))
		if progress != nil {
			progress(id)
		}
	}

	// Combined tables across all documents
	for _, n := range req.Orders {
		table := counters[n].Table()
		path, err := freqfile.Write(req.OutDir, freqfile.CombinedName(n), table)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, path)
		result.Combined[n] = table

		slog.InfoContext(ctx, "wrote combined table",
			"order", domain.OrderName(n),
			"grams", counters[n].Total(),
			"unique", counters[n].Unique(),
		)
	}

	return result, nil
}
