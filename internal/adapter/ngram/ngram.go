package ngram

import (
	"fmt"
	"sort"

	"harvest/internal/domain"
)

// Extract returns the n-grams of tokens in order. A sequence shorter than n
// yields no n-grams.
func Extract(tokens []string, n int) ([]domain.NGram, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidOrder, n)
	}
	if len(tokens) < n {
		return nil, nil
	}

	grams := make([]domain.NGram, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		gram := make(domain.NGram, n)
		copy(gram, tokens[i:i+n])
		grams = append(grams, gram)
	}
	return grams, nil
}

// Count tallies grams and returns them sorted by count descending.
func Count(grams []domain.NGram) domain.FrequencyTable {
	c := NewCounter()
	c.Add(grams)
	return c.Table()
}

// Counter accumulates n-gram counts across several sequences. Ties in the
// resulting table keep first-occurrence order.
type Counter struct {
	index   map[string]int
	entries []domain.Frequency
	total   int
}

// NewCounter creates an empty Counter.
func NewCounter() *Counter {
	return &Counter{
		index: make(map[string]int),
	}
}

// Add counts every gram in grams.
func (c *Counter) Add(grams []domain.NGram) {
	for _, g := range grams {
		key := g.String()
		if i, ok := c.index[key]; ok {
			c.entries[i].Count++
		} else {
			c.index[key] = len(c.entries)
			c.entries = append(c.entries, domain.Frequency{Gram: g, Count: 1})
		}
		c.total++
	}
}

// Total returns the number of grams added so far.
func (c *Counter) Total() int {
	return c.total
}

// Unique returns the number of distinct grams added so far.
func (c *Counter) Unique() int {
	return len(c.entries)
}

// Table returns a sorted copy of the accumulated counts.
func (c *Counter) Table() domain.FrequencyTable {
	table := make(domain.FrequencyTable, len(c.entries))
	copy(table, c.entries)
	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Count > table[j].Count
	})
	return table
}
