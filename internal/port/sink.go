package port

import (
	"context"

	"harvest/internal/domain"
)

// FacultySink persists scraped faculty records.
type FacultySink interface {
	Write(ctx context.Context, records []domain.Faculty) error

	Close() error
}
