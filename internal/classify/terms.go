package classify

// TermsVersion identifies the curated term lists. Bump it together with
// Version whenever the lists change so stored classifications record exactly
// which vocabulary produced them.
const TermsVersion = "terms-2024-06"

// term is one weighted keyword. Weights reflect how strongly a phrase signals
// its document type: generic words score 1, phrases that rarely appear outside
// their type score 2 or 3.
type term struct {
	phrase string
	weight int
}

// resumeTerms signal first-person career history documents
var resumeTerms = []term{
	{"curriculum vitae", 3},
	{"career objective", 3},
	{"professional summary", 3},
	{"work experience", 2},
	{"employment history", 3},
	{"professional experience", 2},
	{"education", 1},
	{"references available", 3},
	{"bachelor", 2},
	{"master", 1},
	{"bsc", 2},
	{"msc", 2},
	{"gpa", 2},
	{"graduated", 2},
	{"certifications", 2},
	{"skills", 1},
	{"proficient in", 2},
	{"responsible for", 2},
	{"years experience", 2},
	{"years of experience", 2},
	{"achievements", 1},
	{"awards", 1},
	{"languages", 1},
	{"volunteer", 1},
	{"internship", 1},
	{"objective", 1},
}

// jobTerms signal employer-authored postings
var jobTerms = []term{
	{"we are hiring", 3},
	{"we are looking for", 3},
	{"join our team", 3},
	{"apply now", 3},
	{"job description", 3},
	{"competitive salary", 3},
	{"equal opportunity employer", 3},
	{"benefits package", 2},
	{"what you'll do", 3},
	{"what we offer", 3},
	{"requirements", 1},
	{"qualifications", 1},
	{"responsibilities", 1},
	{"the ideal candidate", 3},
	{"the successful candidate", 3},
	{"about the role", 2},
	{"about us", 1},
	{"full-time", 1},
	{"part-time", 1},
	{"remote", 1},
	{"salary range", 2},
	{"how to apply", 3},
	{"send your cv", 2},
	{"submit your resume", 2},
	{"per annum", 2},
}

// hiringCues break resume/job ties. Hiring and application phrasing is
// written by an employer addressing candidates, which resumes never do.
var hiringCues = []string{
	"we are hiring",
	"apply now",
	"apply today",
	"we are looking for",
	"join our team",
	"join us",
	"you will",
	"the ideal candidate",
	"how to apply",
}
