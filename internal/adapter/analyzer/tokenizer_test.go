package analyzer

import (
	"testing"
)

func TestTokenizer_Tokenize_WithStemming(t *testing.T) {
	tok := NewTokenizer(true)

	tokens := tok.Tokenize("running dogs are jumping")
	if len(tokens) != 3 {
		t.Errorf("expected 3 tokens, got %d: %v", len(tokens), tokens)
	}

	want := []string{"run", "dog", "jump"}
	for i, w := range want {
		if i >= len(tokens) || tokens[i] != w {
			t.Errorf("expected %v, got %v", want, tokens)
			break
		}
	}
}

func TestTokenizer_Tokenize_WithoutStemming(t *testing.T) {
	tok := NewTokenizer(false)

	tokens := tok.Tokenize("running dogs are playing")
	if len(tokens) != 3 {
		t.Errorf("expected 3 tokens, got %d: %v", len(tokens), tokens)
	}
	if len(tokens) > 0 && tokens[0] != "running" {
		t.Errorf("expected 'running' to remain unstemmed, got %v", tokens)
	}
}

func TestTokenizer_QuickFoxExample(t *testing.T) {
	tok := NewTokenizerWithStopwords(true, []string{"the"})

	tokens := tok.Tokenize("The quick quick fox.")
	want := []string{"quick", "quick", "fox"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %v, got %v", want, tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d: expected %q, got %q", i, want[i], tokens[i])
		}
	}
}

func TestTokenizer_StopwordRemoval(t *testing.T) {
	tok := NewTokenizer(false)

	tokens := tok.Tokenize("The claims of THE invention, and what it is for")
	for _, token := range tokens {
		if tok.IsStopword(token) {
			t.Errorf("stopword %q should be removed, got %v", token, tokens)
		}
	}
	if len(tokens) != 2 {
		t.Errorf("expected [claims invention], got %v", tokens)
	}
}

func TestTokenizer_OnlyLetters(t *testing.T) {
	tok := NewTokenizer(true)

	tokens := tok.Tokenize("claim 12: a widget-assembly (u.s. pat. no. 6,334,220) café_ñandú x2y")
	for _, token := range tokens {
		for _, r := range token {
			if r < 'a' || r > 'z' {
				t.Errorf("token %q contains non-letter %q", token, r)
			}
		}
		if tok.IsStopword(token) {
			t.Errorf("token %q is a stopword", token)
		}
	}
}

func TestTokenizer_PreservesOrder(t *testing.T) {
	tok := NewTokenizer(false)

	tokens := tok.Tokenize("zebra apple mango apple")
	want := []string{"zebra", "apple", "mango", "apple"}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tokens)
		}
	}
}

func TestTokenizer_AddRemoveStopword(t *testing.T) {
	tok := NewTokenizer(false)

	tok.AddStopword("Widget")
	tok.RemoveStopword("the")

	tokens := tok.Tokenize("the widget")
	if len(tokens) != 1 || tokens[0] != "the" {
		t.Errorf("expected [the], got %v", tokens)
	}
}

func TestTokenizer_EmptyInput(t *testing.T) {
	tok := NewTokenizer(true)

	tokens := tok.Tokenize("")
	if len(tokens) != 0 {
		t.Errorf("expected 0 tokens for empty input, got %d", len(tokens))
	}

	tokens = tok.Tokenize("123 456 ... !!!")
	if len(tokens) != 0 {
		t.Errorf("expected 0 tokens for non-letter input, got %v", tokens)
	}
}

func TestSplitLetters(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"hello world", 2},
		{"hello_world", 2},
		{"hello-world", 2},
		{"func(x, y)", 3},
		{"123numbers456", 1},
		{"naïve", 2},
		{"", 0},
	}

	for _, tt := range tests {
		words := splitLetters(tt.input)
		if len(words) != tt.expected {
			t.Errorf("splitLetters(%q) = %d words, want %d: %v", tt.input, len(words), tt.expected, words)
		}
	}
}

func TestBuildStopwords(t *testing.T) {
	stops := BuildStopwords([]string{"claim"}, []string{"the"})

	has := func(w string) bool {
		for _, s := range stops {
			if s == w {
				return true
			}
		}
		return false
	}
	if !has("claim") {
		t.Error("expected extra stopword to be present")
	}
	if has("the") {
		t.Error("expected kept word to be removed from stopwords")
	}
	if !has("and") {
		t.Error("expected default stopwords to remain")
	}
}
