package analyzer

import (
	"strings"
)

// Tokenizer lowercases text, splits it into runs of ASCII letters, drops
// stopwords and optionally stems what remains.
type Tokenizer struct {
	stemmer   *PorterStemmer
	stopwords map[string]struct{}
	useStem   bool
}

// NewTokenizer creates a Tokenizer with the default English stopword set.
func NewTokenizer(useStemming bool) *Tokenizer {
	return NewTokenizerWithStopwords(useStemming, EnglishStopwords())
}

// NewTokenizerWithStopwords creates a Tokenizer with an explicit stopword set.
func NewTokenizerWithStopwords(useStemming bool, stopwords []string) *Tokenizer {
	var stemmer *PorterStemmer
	if useStemming {
		stemmer = NewPorterStemmer()
	}
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{
		stemmer:   stemmer,
		stopwords: stops,
		useStem:   useStemming,
	}
}

// Tokenize returns the normalized tokens of text in input order.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitLetters(strings.ToLower(text))
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		if t.IsStopword(word) {
			continue
		}
		if t.useStem && t.stemmer != nil {
			word = t.stemmer.Stem(word)
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// IsStopword reports whether word is in the stopword set.
func (t *Tokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

// AddStopword adds a word to the stopword set.
func (t *Tokenizer) AddStopword(word string) {
	t.stopwords[strings.ToLower(word)] = struct{}{}
}

// RemoveStopword removes a word from the stopword set.
func (t *Tokenizer) RemoveStopword(word string) {
	delete(t.stopwords, strings.ToLower(word))
}

// splitLetters returns the maximal runs of 'a'..'z'. Everything else,
// including digits and non-ASCII letters, separates tokens.
func splitLetters(text string) []string {
	var words []string
	start := -1

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 'a' && c <= 'z' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}

	return words
}
