package entities

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// "5 years experience", "10+ years of experience"
	tenurePattern = regexp.MustCompile(`(?i)\b(\d{1,2})\+?\s+years?(?:\s+of)?\s+experience\b`)

	// "Software Engineer at Acme", "Senior Analyst @ BigCo"
	rolePattern = regexp.MustCompile(`(?i)\b([A-Z][A-Za-z]+(?:\s+[A-Za-z]+){0,3})\s+(?:at|@)\s+([A-Z][\w&.\- ]{1,40})`)

	// "2015 - 2019", "Jan 2015 – Present"
	spanPattern = regexp.MustCompile(`(?i)\b((?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+)?(\d{4})\s*[-–—]\s*((?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+)?(\d{4}|present)`)
)

// extractExperience returns tenure statements, role-at-company mentions and
// employment date spans. A malformed date span yields an error for this
// extractor only; the registry keeps the other extractors' results.
func extractExperience(text string) ([]string, error) {
	var out []string

	for _, m := range tenurePattern.FindAllString(text, -1) {
		out = append(out, strings.TrimSpace(m))
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := rolePattern.FindStringSubmatch(line); m != nil {
			out = append(out, clip(strings.TrimSpace(m[0])))
		}

		if m := spanPattern.FindStringSubmatch(line); m != nil {
			span, err := validateSpan(m[2], m[4])
			if err != nil {
				return nil, err
			}
			out = append(out, span)
		}
	}

	return out, nil
}

// validateSpan sanity-checks an employment date range
func validateSpan(startYear, endRaw string) (string, error) {
	start, err := strconv.Atoi(startYear)
	if err != nil {
		return "", fmt.Errorf("malformed start year %q: %w", startYear, err)
	}

	endRaw = strings.ToLower(endRaw)
	if endRaw == "present" {
		return fmt.Sprintf("%d - present", start), nil
	}

	end, err := strconv.Atoi(endRaw)
	if err != nil {
		return "", fmt.Errorf("malformed end year %q: %w", endRaw, err)
	}
	if end < start {
		return "", fmt.Errorf("employment span ends (%d) before it starts (%d)", end, start)
	}

	return fmt.Sprintf("%d - %d", start, end), nil
}
