package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"harvest/internal/domain"
)

// NewClient returns a resty client shared by the document fetcher and the scraper.
func NewClient(timeout time.Duration, userAgent string) *resty.Client {
	client := resty.New().SetTimeout(timeout)
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	return client
}

// Get issues a GET request and returns the body of a successful response.
func Get(ctx context.Context, client *resty.Client, url string) ([]byte, error) {
	res, err := client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, &domain.FetchError{URL: url, StatusCode: res.StatusCode()}
	}
	return res.Body(), nil
}

// HTTPFetcher fetches plain-text documents from <baseURL><id><suffix>.
type HTTPFetcher struct {
	client  *resty.Client
	baseURL string
	suffix  string
}

func NewHTTPFetcher(client *resty.Client, baseURL, suffix string) *HTTPFetcher {
	return &HTTPFetcher{
		client:  client,
		baseURL: baseURL,
		suffix:  suffix,
	}
}

// URL returns the address a document is fetched from.
func (f *HTTPFetcher) URL(id string) string {
	return f.baseURL + id + f.suffix
}

func (f *HTTPFetcher) Fetch(ctx context.Context, id string) (domain.Document, error) {
	url := f.URL(id)

	start := time.Now()
	body, err := Get(ctx, f.client, url)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to fetch document %s: %w", id, err)
	}
	slog.DebugContext(ctx, "fetched document", "id", id, "bytes", len(body), "elapsed", time.Since(start))

	return domain.Document{
		ID:        id,
		URL:       url,
		Text:      string(body),
		FetchedAt: time.Now(),
	}, nil
}
