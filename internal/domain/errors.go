package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrFetchFailed       = errors.New("fetch failed")
	ErrInvalidOrder      = errors.New("invalid n-gram order")
	ErrOutputDirMissing  = errors.New("output directory does not exist")
	ErrSelectorNoMatch   = errors.New("selector matched nothing")
	ErrUnknownSite       = errors.New("unknown scrape site")
	ErrMissingCredential = errors.New("missing credential")
)

// FetchError describes a non-successful HTTP response for a document or page.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

func (e *FetchError) Is(target error) bool {
	if target == ErrFetchFailed {
		return true
	}
	return target == ErrDocumentNotFound && e.StatusCode == http.StatusNotFound
}
