package domain

import (
	"fmt"
	"strings"
	"time"
)

type Document struct {
	ID        string
	URL       string
	Text      string
	FetchedAt time.Time
}

// NGram is an ordered tuple of consecutive tokens.
type NGram []string

func (g NGram) String() string {
	return strings.Join(g, " ")
}

type Frequency struct {
	Gram  NGram
	Count int
}

// FrequencyTable is sorted by count descending.
type FrequencyTable []Frequency

// Total returns the sum of all counts.
func (t FrequencyTable) Total() int {
	total := 0
	for _, f := range t {
		total += f.Count
	}
	return total
}

// Top returns at most n leading entries.
func (t FrequencyTable) Top(n int) FrequencyTable {
	if n < 0 || n >= len(t) {
		return t
	}
	return t[:n]
}

// OrderName returns the file-name prefix for an n-gram order.
func OrderName(n int) string {
	switch n {
	case 1:
		return "unigrams"
	case 2:
		return "bigrams"
	case 3:
		return "trigrams"
	default:
		return fmt.Sprintf("%d-grams", n)
	}
}

type Faculty struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	University string `json:"university"`
	Department string `json:"department"`
	GradSchool string `json:"grad_school"`
	GradDegree string `json:"grad_degree"`
	ProfileURL string `json:"profile_url"`
}

type UploadedObject struct {
	Path      string `json:"path"`
	Key       string `json:"key"`
	Size      int64  `json:"size"`
	SignedURL string `json:"signed_url"`
}

type CacheStats struct {
	Documents int
	Bytes     int64
}
