package matching

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidWeights = errors.New("scoring weights must be non-negative")

// Weights are the per-criterion contributions to the query match score.
type Weights struct {
	Skills      float64 `json:"skill_weight"`
	Experience  float64 `json:"experience_weight"`
	Companies   float64 `json:"company_weight"`
	Departments float64 `json:"department_weight"`
	Keywords    float64 `json:"keyword_weight"`
}

// DefaultWeights is the canonical weight set.
func DefaultWeights() Weights {
	return Weights{
		Skills:      0.40,
		Experience:  0.30,
		Companies:   0.15,
		Departments: 0.15,
		Keywords:    0.40,
	}
}

func (w Weights) Validate() error {
	if w.Skills < 0 || w.Experience < 0 || w.Companies < 0 || w.Departments < 0 || w.Keywords < 0 {
		return ErrInvalidWeights
	}
	return nil
}

// Scorer computes query match and candidate similarity scores. The zero value
// is not usable; build one with NewScorer or DefaultScorer.
type Scorer struct {
	weights    Weights
	similarity SimilarityConfig
}

func NewScorer(weights Weights, similarity SimilarityConfig) (Scorer, error) {
	if err := weights.Validate(); err != nil {
		return Scorer{}, err
	}
	if err := similarity.Validate(); err != nil {
		return Scorer{}, err
	}
	return Scorer{weights: weights, similarity: similarity}, nil
}

func DefaultScorer() Scorer {
	return Scorer{weights: DefaultWeights(), similarity: DefaultSimilarityConfig()}
}

func (s Scorer) Weights() Weights { return s.weights }

// Match is the outcome of scoring one profile against a query.
type Match struct {
	Score              float64
	MatchedSkills      []string
	MatchedCompanies   []string
	MatchedDepartments []string
	MatchedKeywords    []string
	Reasons            []string
}

// Match scores p against c. Every present criterion adds its weight to the
// maximum score and weight × achieved fraction to the score; the result is
// score / maximum, clamped to [0,1].
func (s Scorer) Match(p Profile, c Criteria) Match {
	var (
		m        Match
		score    float64
		maxScore float64
	)
	w := s.weights

	if required := dedupe(c.Skills); len(required) > 0 {
		m.MatchedSkills = intersect(required, keySet(p.Skills))
		score += w.Skills * ratio(len(m.MatchedSkills), len(required))
		maxScore += w.Skills
		if len(m.MatchedSkills) > 0 {
			m.Reasons = append(m.Reasons, fmt.Sprintf("Matched %d/%d required skills: %s",
				len(m.MatchedSkills), len(required), strings.Join(m.MatchedSkills, ", ")))
		}
	}

	if c.MinExperienceYears != nil {
		required := nonNegative(*c.MinExperienceYears)
		have := 0.0
		if p.ExperienceYears != nil {
			have = nonNegative(*p.ExperienceYears)
		}
		fraction := experienceFraction(have, required)
		score += w.Experience * fraction
		maxScore += w.Experience
		switch {
		case fraction >= 1:
			m.Reasons = append(m.Reasons, fmt.Sprintf("Meets experience requirement: %s years (required %s)",
				formatYears(have), formatYears(required)))
		case fraction > 0:
			m.Reasons = append(m.Reasons, fmt.Sprintf("Partial experience: %s of %s required years",
				formatYears(have), formatYears(required)))
		}
	}

	if required := dedupe(c.Companies); len(required) > 0 {
		m.MatchedCompanies = intersect(required, keySet(p.Companies))
		score += w.Companies * ratio(len(m.MatchedCompanies), len(required))
		maxScore += w.Companies
		if len(m.MatchedCompanies) > 0 {
			m.Reasons = append(m.Reasons, "Worked at: "+strings.Join(m.MatchedCompanies, ", "))
		}
	}

	if required := dedupe(c.Departments); len(required) > 0 {
		m.MatchedDepartments = intersect(required, keySet(p.Departments))
		score += w.Departments * ratio(len(m.MatchedDepartments), len(required))
		maxScore += w.Departments
		if len(m.MatchedDepartments) > 0 {
			m.Reasons = append(m.Reasons, "Department experience: "+strings.Join(m.MatchedDepartments, ", "))
		}
	}

	if keywords := dedupe(c.Keywords); len(keywords) > 0 {
		for _, k := range keywords {
			if strings.Contains(p.Text, normalize(k)) {
				m.MatchedKeywords = append(m.MatchedKeywords, k)
			}
		}
		score += w.Keywords * ratio(len(m.MatchedKeywords), len(keywords))
		maxScore += w.Keywords
		if len(m.MatchedKeywords) > 0 {
			m.Reasons = append(m.Reasons, "Mentions: "+strings.Join(m.MatchedKeywords, ", "))
		}
	}

	if maxScore > 0 {
		m.Score = clamp(score / maxScore)
	}
	return m
}

// experienceFraction gives full credit at or above the requirement and linear
// partial credit below it.
func experienceFraction(have, required float64) float64 {
	if required <= 0 || have >= required {
		return 1
	}
	return clamp(have / required)
}

func formatYears(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
