package search

import (
	"strings"
)

// Tokenize splits already-normalized text on whitespace and drops one-letter
// tokens and English stop words.
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) < 2 {
			continue
		}
		if _, stop := stopWords[field]; stop {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// Analyze returns the terms of text: every token followed by every pair of
// adjacent tokens joined by a space.
func Analyze(text string) []string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
