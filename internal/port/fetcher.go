package port

import (
	"context"

	"harvest/internal/domain"
)

// Fetcher retrieves the raw text of a document by identifier.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (domain.Document, error)
}

// DocumentCache stores fetched documents between (or within) runs.
type DocumentCache interface {
	// GetDoc returns the cached document and whether it was present.
	GetDoc(id string) (domain.Document, bool, error)

	PutDoc(doc domain.Document) error
}
