package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var multiSpace = regexp.MustCompile(`[ \t]+`)
var excessBlank = regexp.MustCompile(`\n\n\n+`)

// Normalize collapses whitespace and strips control characters while
// preserving line breaks, since downstream classification and entity
// heuristics use them as section boundaries.
func Normalize(content string) string {
	if content == "" {
		return ""
	}

	// Normalize line endings (CRLF → LF)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := strings.Join(cleaned, "\n")
	result = excessBlank.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine strips control characters and collapses runs of spaces and tabs
func cleanLine(line string) string {
	var sb strings.Builder
	for _, r := range line {
		if unicode.IsControl(r) && r != '\t' {
			continue
		}
		sb.WriteRune(r)
	}
	line = sb.String()

	if strings.TrimSpace(line) == "" {
		return ""
	}

	line = strings.Trim(line, " \t")
	return multiSpace.ReplaceAllString(line, " ")
}
