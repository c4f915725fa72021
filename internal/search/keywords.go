package search

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "or": {}, "the": {}, "in": {}, "on": {}, "at": {},
	"of": {}, "for": {}, "to": {}, "with": {}, "who": {}, "has": {}, "have": {},
	"is": {}, "are": {}, "be": {}, "by": {}, "from": {}, "me": {}, "find": {},
	"show": {}, "looking": {}, "need": {}, "want": {}, "someone": {}, "people": {},
	"candidate": {}, "candidates": {}, "years": {}, "year": {}, "experience": {},
}

// Keywords splits free text into lower-cased search terms, dropping stop words
// and duplicates. Symbols that are part of technology names (c++, c#, node.js)
// are kept.
func Keywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#' && r != '.'
	})

	seen := make(map[string]struct{}, len(fields))
	var out []string
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
