package classify

import (
	"strings"
	"testing"

	"github.com/jonathan/docharvest/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestClassify_ResumeAboveThreshold(t *testing.T) {
	text := "Responsible for leading the engineering team, 5 years experience, BSc Computer Science"

	result := Classify(text, 5)

	assert.Equal(t, types.DocTypeResume, result.Type)
	assert.GreaterOrEqual(t, result.Score, float64(5))
	assert.Equal(t, Version, result.Version)
}

func TestClassify_JobDescription(t *testing.T) {
	text := "We are hiring a Senior Engineer, apply now, competitive salary"

	result := Classify(text, 5)

	assert.Equal(t, types.DocTypeJobDescription, result.Type)
	assert.GreaterOrEqual(t, result.Score, float64(5))
}

func TestClassify_BelowThresholdIsUnknown(t *testing.T) {
	// Sparse text must classify unknown, never resume or job_description
	texts := []string{
		"",
		"hello there",
		"meeting notes from tuesday about the quarterly budget",
		"education", // single weak hit
	}

	for _, text := range texts {
		result := Classify(text, 5)
		assert.Equal(t, types.DocTypeUnknown, result.Type, "text: %q", text)
	}
}

func TestClassify_HiringCueBreaksDualSignalText(t *testing.T) {
	// A posting that quotes resume-like vocabulary: both lists score, but
	// employer phrasing decides.
	text := `Join our team! We are looking for someone with professional experience,
		a bachelor degree and strong skills. Responsibilities include mentoring.
		The ideal candidate has 5 years of experience. Apply now.
		Work experience with Go required. Education: BSc preferred. Certifications welcome.`

	result := Classify(text, 5)

	assert.Equal(t, types.DocTypeJobDescription, result.Type)
}

func TestClassify_TieWithoutCueFavorsResume(t *testing.T) {
	// Craft a tie: "skills" (resume, 1) + "remote" (job, 1) with threshold 1
	result := Classify("skills remote", 1)

	assert.Equal(t, types.DocTypeResume, result.Type)
}

func TestClassify_ZeroMinHitsUsesDefault(t *testing.T) {
	result := Classify("education", 0)

	// One weak hit is far below DefaultMinHits
	assert.Equal(t, types.DocTypeUnknown, result.Type)
}

func TestContainsWord_RespectsBoundaries(t *testing.T) {
	assert.True(t, containsWord("five years experience here", "years experience"))
	assert.False(t, containsWord("remotely operated vehicle", "remote"))
	assert.True(t, containsWord("fully remote position", "remote"))
	assert.False(t, containsWord("mastersmith", "master"))
}

func TestClassify_LongDocumentStillBounded(t *testing.T) {
	// Repeated hits do not inflate the score: each term counts once
	text := strings.Repeat("we are hiring apply now competitive salary ", 50)

	result := Classify(text, 5)

	assert.Equal(t, types.DocTypeJobDescription, result.Type)
	assert.LessOrEqual(t, result.Score, float64(9+3)) // bounded by list weights
}
