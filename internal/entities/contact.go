package entities

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// phonePattern matches international and local formats with common separators.
// Candidates are validated by digit count afterwards to cut false positives
// from dates and ID numbers.
var phonePattern = regexp.MustCompile(`(?:\+?\d{1,3}[ .\-]?)?(?:\(\d{1,4}\)[ .\-]?)?\d{2,4}(?:[ .\-]\d{2,4}){1,4}`)

var digitOnly = regexp.MustCompile(`\d`)

// extractEmails returns every email address in the text, lowercased
func extractEmails(text string) ([]string, error) {
	matches := emailPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.ToLower(strings.Trim(m, ".")))
	}
	return out, nil
}

// extractPhones returns phone number candidates with 7-15 digits
func extractPhones(text string) ([]string, error) {
	matches := phonePattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		digits := len(digitOnly.FindAllString(m, -1))
		if digits < 7 || digits > 15 {
			continue
		}
		if looksLikeDateRange(m) {
			continue
		}
		out = append(out, strings.TrimSpace(m))
	}
	return out, nil
}

// looksLikeDateRange filters "2015 - 2019" style spans that satisfy the
// phone digit count
func looksLikeDateRange(s string) bool {
	parts := regexp.MustCompile(`[ .\-]+`).Split(strings.TrimSpace(s), -1)
	if len(parts) != 2 {
		return false
	}
	for _, p := range parts {
		if len(p) != 4 || !strings.HasPrefix(p, "19") && !strings.HasPrefix(p, "20") {
			return false
		}
	}
	return true
}
