// Package classify decides whether extracted text is a resume, a job
// description, or neither, using weighted keyword-hit counting. This is a
// deliberately bounded heuristic, not a trainable model; below the minimum hit
// threshold it answers "unknown" rather than forcing a guess.
package classify

import (
	"strings"

	"github.com/jonathan/docharvest/internal/types"
)

// Version identifies the classifier logic. A version bump (here or in
// TermsVersion) triggers an explicit re-classification pass; stored records
// are appended, never mutated in place.
const Version = "heuristic-v1+" + TermsVersion

// DefaultMinHits is the default minimum weighted hit count below which text
// classifies as unknown. Empirically chosen; configurable, not assumed optimal.
const DefaultMinHits = 5

// Result is the classification outcome for one document
type Result struct {
	Type    types.DocType `json:"type"`
	Score   float64       `json:"score"`
	Version string        `json:"version"`
}

// Classify scores text against the resume and job-description term lists.
// minHits <= 0 uses DefaultMinHits. Ties or dual-signal text are broken by
// hiring/application cues, which favor job_description.
func Classify(text string, minHits int) Result {
	if minHits <= 0 {
		minHits = DefaultMinHits
	}

	lower := strings.ToLower(text)

	resumeScore := scoreTerms(lower, resumeTerms)
	jobScore := scoreTerms(lower, jobTerms)

	result := Result{Type: types.DocTypeUnknown, Version: Version}

	if resumeScore < minHits && jobScore < minHits {
		return result
	}

	switch {
	case jobScore > resumeScore:
		result.Type = types.DocTypeJobDescription
		result.Score = float64(jobScore)
	case resumeScore > jobScore:
		result.Type = types.DocTypeResume
		result.Score = float64(resumeScore)
		// Dual-signal text: strong resume vocabulary but employer phrasing.
		// A posting quoting requirements looks resume-like; hiring cues
		// are the reliable discriminator.
		if hasHiringCue(lower) && jobScore >= minHits {
			result.Type = types.DocTypeJobDescription
			result.Score = float64(jobScore)
		}
	default: // exact tie
		if hasHiringCue(lower) {
			result.Type = types.DocTypeJobDescription
		} else {
			result.Type = types.DocTypeResume
		}
		result.Score = float64(resumeScore)
	}

	return result
}

// scoreTerms sums the weights of every term whose phrase occurs in the text
func scoreTerms(lower string, terms []term) int {
	score := 0
	for _, t := range terms {
		if containsWord(lower, t.phrase) {
			score += t.weight
		}
	}
	return score
}

// containsWord matches a phrase at word boundaries so "remote" does not match
// inside "remotely" scoring twice for substring families.
func containsWord(text, phrase string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], phrase)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(phrase)

		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// hasHiringCue reports whether the text contains employer-addressed phrasing
func hasHiringCue(lower string) bool {
	for _, cue := range hiringCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}
