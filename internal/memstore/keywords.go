package memstore

import (
	"strings"
	"unicode"
)

// minWordLen is the minimum cleaned-token length kept as a keyword.
const minWordLen = 4

// stopWords are skipped during keyword extraction.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "of": {}, "to": {}, "in": {},
	"and": {}, "for": {}, "that": {}, "this": {}, "with": {}, "are": {},
	"was": {}, "were": {}, "been": {}, "have": {}, "has": {}, "had": {},
	"but": {}, "not": {}, "from": {}, "they": {}, "will": {}, "can": {},
	"would": {}, "could": {},
}

// extractKeywords tokenizes text for indexing: split on whitespace, drop
// characters that are not alphanumeric, dash or underscore, lowercase
// with an ASCII-only case fold, then discard short tokens and stop
// words. Duplicates are preserved; term frequency during search depends
// on them.
func extractKeywords(text string) []string {
	var keywords []string

	for _, word := range strings.Fields(text) {
		var b strings.Builder
		for _, r := range word {
			if r >= 'A' && r <= 'Z' {
				b.WriteRune(r + ('a' - 'A'))
				continue
			}
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
				b.WriteRune(r)
			}
		}
		cleaned := b.String()
		if len(cleaned) < minWordLen {
			continue
		}
		if _, stop := stopWords[cleaned]; stop {
			continue
		}
		keywords = append(keywords, cleaned)
	}

	return keywords
}
