package matching

import (
	"github.com/google/uuid"

	"talent-search/internal/storage"
)

// Result is a ranked, explainable candidate match.
type Result struct {
	CandidateID   uuid.UUID  `json:"candidate_id"`
	CandidateName string     `json:"candidate_name"`
	ResumeID      uuid.UUID  `json:"resume_id"`
	Score         float64    `json:"score"`
	Reasons       []string   `json:"match_reasons"`
	Highlights    Highlights `json:"highlights"`
}

// Highlights is the subset of candidate attributes worth showing next to a result.
type Highlights struct {
	CurrentPosition    string   `json:"current_position,omitempty"`
	CurrentCompany     string   `json:"current_company,omitempty"`
	Location           string   `json:"location,omitempty"`
	ExperienceYears    *float64 `json:"experience_years,omitempty"`
	MatchedSkills      []string `json:"matched_skills,omitempty"`
	MatchedCompanies   []string `json:"matched_companies,omitempty"`
	MatchedDepartments []string `json:"matched_departments,omitempty"`
	MatchedKeywords    []string `json:"matched_keywords,omitempty"`
}

// NewResult builds a query match result for c.
func NewResult(c storage.Candidate, p Profile, m Match) Result {
	r := baseResult(c, p, m.Score, m.Reasons)
	r.Highlights.MatchedSkills = m.MatchedSkills
	r.Highlights.MatchedCompanies = m.MatchedCompanies
	r.Highlights.MatchedDepartments = m.MatchedDepartments
	r.Highlights.MatchedKeywords = m.MatchedKeywords
	return r
}

// NewSimilarResult builds a similarity result for c.
func NewSimilarResult(c storage.Candidate, p Profile, s Similarity) Result {
	r := baseResult(c, p, s.Score, s.Reasons)
	r.Highlights.MatchedSkills = s.SharedSkills
	r.Highlights.MatchedCompanies = s.SharedCompanies
	r.Highlights.MatchedDepartments = s.SharedDepartments
	return r
}

func baseResult(c storage.Candidate, p Profile, score float64, reasons []string) Result {
	r := Result{
		CandidateID:   c.ID,
		CandidateName: c.FullName,
		Score:         score,
		Reasons:       reasons,
		Highlights: Highlights{
			CurrentPosition: c.CurrentPosition,
			CurrentCompany:  c.CurrentCompany,
			Location:        c.Location,
			ExperienceYears: p.ExperienceYears,
		},
	}
	if r.Reasons == nil {
		r.Reasons = []string{}
	}
	if resume, ok := c.PrimaryResume(); ok {
		r.ResumeID = resume.ID
	}
	return r
}
