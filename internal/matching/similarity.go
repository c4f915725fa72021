package matching

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidSimilarityConfig = errors.New("invalid similarity configuration")

// SimilarityConfig weights the candidate-vs-candidate comparison.
type SimilarityConfig struct {
	SkillWeight      float64 `json:"skill_weight"`
	ExperienceWeight float64 `json:"experience_weight"`
	CompanyBonus     float64 `json:"company_bonus"`
	DepartmentBonus  float64 `json:"department_bonus"`
	// Full experience credit within ExperienceTolerance years, decaying
	// linearly to zero at MaxExperienceDiff.
	ExperienceTolerance float64 `json:"experience_tolerance"`
	MaxExperienceDiff   float64 `json:"max_experience_diff"`
}

func DefaultSimilarityConfig() SimilarityConfig {
	return SimilarityConfig{
		SkillWeight:         0.4,
		ExperienceWeight:    0.3,
		CompanyBonus:        0.2,
		DepartmentBonus:     0.1,
		ExperienceTolerance: 2,
		MaxExperienceDiff:   10,
	}
}

func (c SimilarityConfig) Validate() error {
	if c.SkillWeight < 0 || c.ExperienceWeight < 0 || c.CompanyBonus < 0 || c.DepartmentBonus < 0 {
		return fmt.Errorf("%w: negative weight", ErrInvalidSimilarityConfig)
	}
	if c.ExperienceTolerance < 0 || c.MaxExperienceDiff < c.ExperienceTolerance {
		return fmt.Errorf("%w: max experience difference must be at least the tolerance", ErrInvalidSimilarityConfig)
	}
	return nil
}

// Similarity is the outcome of comparing two profiles.
type Similarity struct {
	Score             float64
	SharedSkills      []string
	SharedCompanies   []string
	SharedDepartments []string
	Reasons           []string
}

// Similarity compares a (the reference) with b. The skill term is the fraction
// of a's skills found in b, so it is only symmetric when both skill sets have
// the same size.
func (s Scorer) Similarity(a, b Profile) Similarity {
	cfg := s.similarity
	var (
		sim   Similarity
		score float64
	)

	skills := dedupe(a.Skills)
	sim.SharedSkills = intersect(skills, keySet(b.Skills))
	score += cfg.SkillWeight * ratio(len(sim.SharedSkills), len(skills))
	if len(sim.SharedSkills) > 0 {
		sim.Reasons = append(sim.Reasons, "Shared skills: "+strings.Join(sim.SharedSkills, ", "))
	}

	if a.ExperienceYears != nil && b.ExperienceYears != nil {
		ya, yb := nonNegative(*a.ExperienceYears), nonNegative(*b.ExperienceYears)
		proximity := cfg.experienceProximity(math.Abs(ya - yb))
		score += cfg.ExperienceWeight * proximity
		if proximity > 0 {
			sim.Reasons = append(sim.Reasons, fmt.Sprintf("Similar experience: %s vs %s years",
				formatYears(ya), formatYears(yb)))
		}
	}

	sim.SharedCompanies = intersect(dedupe(a.Companies), keySet(b.Companies))
	sim.SharedDepartments = intersect(dedupe(a.Departments), keySet(b.Departments))

	switch {
	case len(sim.SharedCompanies) > 0:
		score += cfg.CompanyBonus
		sim.Reasons = append(sim.Reasons, "Worked at the same company: "+strings.Join(sim.SharedCompanies, ", "))
	case len(sim.SharedDepartments) > 0:
		score += cfg.DepartmentBonus
		sim.Reasons = append(sim.Reasons, "Same department: "+strings.Join(sim.SharedDepartments, ", "))
	}

	sim.Score = clamp(score)
	return sim
}

func (c SimilarityConfig) experienceProximity(diff float64) float64 {
	if diff <= c.ExperienceTolerance {
		return 1
	}
	span := c.MaxExperienceDiff - c.ExperienceTolerance
	if span <= 0 {
		return 0
	}
	return clamp(1 - (diff-c.ExperienceTolerance)/span)
}
