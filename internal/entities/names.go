package entities

import (
	"strings"
	"unicode"
)

// headLines is how many leading non-empty lines are considered for a name.
// Resume headers put the candidate name at or near the top.
const headLines = 5

// extractNameCandidates looks for person-name-shaped lines near the top of
// the document: 2-4 capitalized words, no digits, no contact punctuation.
func extractNameCandidates(text string) ([]string, error) {
	var out []string
	seen := 0

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seen++
		if seen > headLines {
			break
		}

		if isNameShaped(line) {
			out = append(out, line)
		}
	}

	return out, nil
}

// isNameShaped reports whether a line looks like a person name
func isNameShaped(line string) bool {
	if len(line) > 60 || strings.ContainsAny(line, "@0123456789:/,;") {
		return false
	}

	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}

	for _, w := range words {
		runes := []rune(w)
		if !unicode.IsUpper(runes[0]) {
			return false
		}
		// All-caps section headings like "WORK EXPERIENCE" are not names
		if len(runes) > 1 && strings.ToUpper(w) == w {
			return false
		}
	}
	return true
}
