package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity_Composite(t *testing.T) {
	scorer := DefaultScorer()
	a := Profile{
		Skills:          []string{"Go", "Postgres", "Kafka", "Docker"},
		ExperienceYears: years(6),
		Companies:       []string{"Acme"},
		Departments:     []string{"Platform"},
	}
	b := Profile{
		Skills:          []string{"go", "Docker"},
		ExperienceYears: years(7),
		Companies:       []string{"ACME"},
		Departments:     []string{"Platform"},
	}

	sim := scorer.Similarity(a, b)
	// 0.4*0.5 + 0.3*1 + 0.2 (company bonus, department bonus suppressed)
	assert.InDelta(t, 0.7, sim.Score, 1e-9)
	assert.Equal(t, []string{"Go", "Docker"}, sim.SharedSkills)
	assert.Equal(t, []string{"Acme"}, sim.SharedCompanies)
	assert.Equal(t, []string{"Platform"}, sim.SharedDepartments)
	assert.Len(t, sim.Reasons, 3)
}

func TestSimilarity_DepartmentBonusWithoutCompany(t *testing.T) {
	sim := DefaultScorer().Similarity(
		Profile{Companies: []string{"Acme"}, Departments: []string{"Sales"}},
		Profile{Companies: []string{"Globex"}, Departments: []string{"sales"}},
	)
	assert.InDelta(t, 0.1, sim.Score, 1e-9)
	assert.Empty(t, sim.SharedCompanies)
}

func TestSimilarity_ExperienceProximity(t *testing.T) {
	scorer := DefaultScorer()

	tests := []struct {
		name string
		a, b *float64
		want float64
	}{
		{name: "within tolerance", a: years(5), b: years(7), want: 0.3},
		{name: "linear decay", a: years(0), b: years(6), want: 0.3 * 0.5},
		{name: "beyond max difference", a: years(1), b: years(15), want: 0},
		{name: "unknown years", a: nil, b: years(5), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := scorer.Similarity(Profile{ExperienceYears: tt.a}, Profile{ExperienceYears: tt.b})
			assert.InDelta(t, tt.want, sim.Score, 1e-9)
		})
	}
}

func TestSimilarity_SkillTermSymmetry(t *testing.T) {
	scorer := DefaultScorer()

	// Equal-size skill sets: the skill fraction is the same in both directions.
	a := Profile{Skills: []string{"Go", "SQL", "Kafka"}}
	b := Profile{Skills: []string{"Go", "SQL", "Rust"}}
	assert.InDelta(t, scorer.Similarity(a, b).Score, scorer.Similarity(b, a).Score, 1e-9)

	// Different sizes: the fraction is taken over the first profile's skills.
	small := Profile{Skills: []string{"Go"}}
	large := Profile{Skills: []string{"Go", "SQL", "Kafka", "Rust"}}
	assert.InDelta(t, 0.4, scorer.Similarity(small, large).Score, 1e-9)
	assert.InDelta(t, 0.1, scorer.Similarity(large, small).Score, 1e-9)
}

func TestSimilarity_EmptyProfiles(t *testing.T) {
	sim := DefaultScorer().Similarity(Profile{}, Profile{})
	assert.Equal(t, 0.0, sim.Score)
	assert.Empty(t, sim.Reasons)
}

func TestSimilarityConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultSimilarityConfig().Validate())

	cfg := DefaultSimilarityConfig()
	cfg.MaxExperienceDiff = 1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidSimilarityConfig)

	cfg = DefaultSimilarityConfig()
	cfg.CompanyBonus = -0.2
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidSimilarityConfig)
}
