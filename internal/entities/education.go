package entities

import (
	"regexp"
	"strings"
)

// degreePattern matches degree mentions and academic institutions
var degreePattern = regexp.MustCompile(`(?i)\b(b\.?sc|m\.?sc|b\.?a|m\.?a|b\.?s|m\.?s|mba|ph\.?d|bachelor(?:'s)?|master(?:'s)?|doctorate|diploma|university|college|institute of technology)\b`)

// maxRecordLen caps stored education/experience lines so one run-on
// paragraph does not become a single giant entity value
const maxRecordLen = 160

// extractEducation returns lines mentioning degrees or institutions
func extractEducation(text string) ([]string, error) {
	var out []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !degreePattern.MatchString(line) {
			continue
		}
		out = append(out, clip(line))
	}

	return out, nil
}

// clip truncates a record line to maxRecordLen runes
func clip(line string) string {
	runes := []rune(line)
	if len(runes) <= maxRecordLen {
		return line
	}
	return string(runes[:maxRecordLen])
}
