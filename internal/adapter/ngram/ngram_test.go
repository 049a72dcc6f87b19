package ngram

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harvest/internal/domain"
)

func TestExtract_Length(t *testing.T) {
	tokens := []string{"a", "b", "c", "d", "e"}

	for n := 1; n <= 3; n++ {
		for l := 0; l <= len(tokens); l++ {
			t.Run(fmt.Sprintf("n=%d/L=%d", n, l), func(t *testing.T) {
				grams, err := Extract(tokens[:l], n)
				require.NoError(t, err)
				assert.Len(t, grams, max(0, l-n+1))
				for _, g := range grams {
					assert.Len(t, g, n)
				}
			})
		}
	}
}

func TestExtract_Windows(t *testing.T) {
	grams, err := Extract([]string{"quick", "quick", "fox"}, 2)
	require.NoError(t, err)

	require.Len(t, grams, 2)
	assert.Equal(t, domain.NGram{"quick", "quick"}, grams[0])
	assert.Equal(t, domain.NGram{"quick", "fox"}, grams[1])
}

func TestExtract_DoesNotAliasInput(t *testing.T) {
	tokens := []string{"a", "b", "c"}
	grams, err := Extract(tokens, 2)
	require.NoError(t, err)

	tokens[0] = "z"
	assert.Equal(t, "a b", grams[0].String())
}

func TestExtract_InvalidOrder(t *testing.T) {
	_, err := Extract([]string{"a"}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidOrder))
}

func TestCount_QuickFox(t *testing.T) {
	tokens := []string{"quick", "quick", "fox"}

	unigrams, err := Extract(tokens, 1)
	require.NoError(t, err)
	uni := Count(unigrams)
	require.Len(t, uni, 2)
	assert.Equal(t, "quick", uni[0].Gram.String())
	assert.Equal(t, 2, uni[0].Count)
	assert.Equal(t, "fox", uni[1].Gram.String())
	assert.Equal(t, 1, uni[1].Count)

	bigrams, err := Extract(tokens, 2)
	require.NoError(t, err)
	bi := Count(bigrams)
	require.Len(t, bi, 2)
	assert.Equal(t, "quick quick", bi[0].Gram.String())
	assert.Equal(t, "quick fox", bi[1].Gram.String())
	assert.Equal(t, 1, bi[0].Count)
	assert.Equal(t, 1, bi[1].Count)
}

func TestCount_SortedDescendingStableTies(t *testing.T) {
	grams, err := Extract([]string{"c", "a", "b", "a", "c", "d", "a"}, 1)
	require.NoError(t, err)

	table := Count(grams)
	got := make([]string, len(table))
	for i, f := range table {
		got[i] = f.Gram.String()
	}
	// a=3, then c=2, then b and d tie at 1 in first-occurrence order
	assert.Equal(t, []string{"a", "c", "b", "d"}, got)
	for i := 1; i < len(table); i++ {
		assert.GreaterOrEqual(t, table[i-1].Count, table[i].Count)
	}
}

func TestCount_SumEqualsGramCount(t *testing.T) {
	tokens := []string{"x", "y", "x", "y", "x", "z", "y", "x"}
	for n := 1; n <= 3; n++ {
		grams, err := Extract(tokens, n)
		require.NoError(t, err)
		assert.Equal(t, len(grams), Count(grams).Total())
	}
}

func TestCount_Empty(t *testing.T) {
	assert.Empty(t, Count(nil))
}

func TestCounter_AcrossDocuments(t *testing.T) {
	c := NewCounter()

	first, _ := Extract([]string{"a", "b"}, 2)
	second, _ := Extract([]string{"b", "a", "b"}, 2)
	c.Add(first)
	c.Add(second)

	assert.Equal(t, 3, c.Total())
	assert.Equal(t, 2, c.Unique())

	table := c.Table()
	require.Len(t, table, 2)
	assert.Equal(t, "a b", table[0].Gram.String())
	assert.Equal(t, 2, table[0].Count)
	assert.Equal(t, "b a", table[1].Gram.String())
}

func TestCounter_TableIsCopy(t *testing.T) {
	c := NewCounter()
	grams, _ := Extract([]string{"a", "b", "b"}, 1)
	c.Add(grams)

	table := c.Table()
	table[0].Count = 100

	assert.Equal(t, 2, c.Table()[0].Count)
}
