package port

// Tokenizer turns raw text into an ordered sequence of normalized tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}
