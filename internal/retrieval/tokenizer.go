// Package retrieval answers read-side questions about a user's log history:
// full-text search, recency windows and the merged context block handed to
// the generation prompt.
package retrieval

import "strings"

// TokenFilter decides which tokens of a raw query contribute to a full-text
// search. Implementations are injected so search and chat context assembly
// can weigh tokens differently.
type TokenFilter interface {
	Keep(token string) bool
}

// MinimalFilter keeps any token longer than three characters.
type MinimalFilter struct{}

func (MinimalFilter) Keep(token string) bool { return len(token) > 3 }

// StopwordFilter keeps tokens longer than two characters that are not common
// filler words. Chat context assembly uses this one so short salient words
// like "gym" or "run" still match.
type StopwordFilter struct{}

func (StopwordFilter) Keep(token string) bool {
	return len(token) > 2 && !stopwords[token]
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "was": true,
	"were": true, "have": true, "has": true, "had": true, "did": true,
	"does": true, "doing": true, "this": true, "that": true, "these": true,
	"those": true, "what": true, "when": true, "where": true, "which": true,
	"who": true, "how": true, "why": true, "about": true, "just": true,
	"really": true, "there": true, "here": true, "you": true, "your": true,
	"are": true, "but": true, "not": true,
}

// Tokens lowercases the query, strips every character that is not a letter
// or digit from each token and applies the filter. The result is safe to
// embed in a to_tsquery expression.
func Tokens(query string, filter TokenFilter) []string {
	var out []string
	for _, raw := range strings.Fields(strings.ToLower(query)) {
		token := sanitize(raw)
		if token != "" && filter.Keep(token) {
			out = append(out, token)
		}
	}
	return out
}

// TSQuery joins the kept tokens into an OR expression for to_tsquery. Empty
// means the query has nothing usable to search for.
func TSQuery(query string, filter TokenFilter) string {
	return strings.Join(Tokens(query, filter), " | ")
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
