package matching

import (
	"strings"

	"talent-search/internal/storage"
)

// Criteria is a structured search query. Nil pointers and empty lists mean the
// criterion is absent: it is neither scored nor counted in the maximum score.
type Criteria struct {
	Skills             []string `json:"skills,omitempty"`
	MinExperienceYears *float64 `json:"min_experience_years,omitempty"`
	MaxExperienceYears *float64 `json:"max_experience_years,omitempty"`
	Companies          []string `json:"companies,omitempty"`
	Departments        []string `json:"departments,omitempty"`
	Locations          []string `json:"locations,omitempty"`
	// Keywords are raw query terms, used when a free-text query could not be
	// turned into structured criteria.
	Keywords []string `json:"keywords,omitempty"`
}

// HasScoringTerms reports whether any criterion contributes to the match score.
func (c Criteria) HasScoringTerms() bool {
	return len(dedupe(c.Skills)) > 0 ||
		c.MinExperienceYears != nil ||
		len(dedupe(c.Companies)) > 0 ||
		len(dedupe(c.Departments)) > 0 ||
		len(dedupe(c.Keywords)) > 0
}

// IsEmpty reports whether no criterion at all is set, filters included.
func (c Criteria) IsEmpty() bool {
	return !c.HasScoringTerms() && c.MaxExperienceYears == nil && len(dedupe(c.Locations)) == 0
}

// Profile is the aggregated view of a candidate that scoring works on.
type Profile struct {
	Skills          []string
	ExperienceYears *float64
	Companies       []string
	Departments     []string
	// Text is the lower-cased searchable text used for keyword matching.
	Text string
}

// ProfileOf aggregates a candidate's completed resumes and work history.
func ProfileOf(c storage.Candidate) Profile {
	var skills, companies, departments, text []string

	for _, r := range c.CompletedResumes() {
		skills = append(skills, r.Skills...)
		text = append(text, r.Education...)
		if r.ParsedText != "" {
			text = append(text, r.ParsedText)
		}
	}

	if c.CurrentCompany != "" {
		companies = append(companies, c.CurrentCompany)
	}
	text = append(text, c.CurrentPosition)

	for _, exp := range c.Experiences {
		skills = append(skills, exp.Technologies...)
		companies = append(companies, exp.Company)
		if d := exp.DepartmentName(); d != "" {
			departments = append(departments, d)
		}
		text = append(text, exp.Position)
	}

	p := Profile{
		Skills:      dedupe(skills),
		Companies:   dedupe(companies),
		Departments: dedupe(departments),
	}
	if c.TotalExperienceYears != nil {
		years := nonNegative(*c.TotalExperienceYears)
		p.ExperienceYears = &years
	}

	text = append(text, p.Skills...)
	text = append(text, p.Companies...)
	text = append(text, p.Departments...)
	p.Text = strings.ToLower(strings.Join(text, " "))

	return p
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// dedupe drops blanks and case-insensitive duplicates, keeping the first
// trimmed spelling of each term.
func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := normalize(v)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

func keySet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if key := normalize(v); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// intersect returns the terms of wanted (already de-duplicated) present in have,
// in wanted's order and spelling.
func intersect(wanted []string, have map[string]struct{}) []string {
	var out []string
	for _, w := range wanted {
		if _, ok := have[normalize(w)]; ok {
			out = append(out, w)
		}
	}
	return out
}

func ratio(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
