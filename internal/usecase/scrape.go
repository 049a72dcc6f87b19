package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"harvest/internal/domain"
	"harvest/internal/port"
)

// ScrapeUseCase turns a faculty directory into records.
type ScrapeUseCase struct {
	scraper port.FacultyScraper
	sink    port.FacultySink
}

// NewScrapeUseCase creates a new scrape use case. sink may be nil.
func NewScrapeUseCase(scraper port.FacultyScraper, sink port.FacultySink) *ScrapeUseCase {
	return &ScrapeUseCase{
		scraper: scraper,
		sink:    sink,
	}
}

// ScrapeResult contains the results of a scrape.
type ScrapeResult struct {
	Profiles int
	Records  []domain.Faculty
	Warnings []string
}

// Scrape reads every profile linked from the directory. A profile that
// cannot be read becomes a warning; a directory that cannot be read fails
// the run.
func (u *ScrapeUseCase) Scrape(ctx context.Context, progress ProgressFunc) (*ScrapeResult, error) {
	links, err := u.scraper.ProfileLinks(ctx)
	if err != nil {
		return nil, err
	}

	result := &ScrapeResult{Profiles: len(links)}

	for _, link := range links {
		faculty, err := u.scraper.Profile(ctx, link)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			slog.WarnContext(ctx, "skipping profile", "url", link, "err", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", link, err))
		} else {
			result.Records = append(result.Records, faculty)
		}

		if progress != nil {
			progress(link)
		}
	}

	if u.sink != nil {
		if err := u.sink.Write(ctx, result.Records); err != nil {
			return nil, fmt.Errorf("failed to write records: %w", err)
		}
	}

	return result, nil
}
