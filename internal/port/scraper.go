package port

import (
	"context"

	"harvest/internal/domain"
)

// FacultyScraper reads a faculty directory and its profile pages.
type FacultyScraper interface {
	// ProfileLinks returns absolute profile URLs in directory order.
	ProfileLinks(ctx context.Context) ([]string, error)

	Profile(ctx context.Context, url string) (domain.Faculty, error)
}
