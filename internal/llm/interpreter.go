package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"talent-search/internal/logger"
	"talent-search/internal/matching"
)

var ErrEmptyInterpretation = errors.New("query interpretation produced no criteria")

// Generator produces a model completion for a prompt. Implemented by Service.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Interpretation is the structured reading of a free-text query.
type Interpretation struct {
	Criteria  matching.Criteria `json:"criteria"`
	Summary   string            `json:"interpretation"`
	Reasoning string            `json:"reasoning,omitempty"`
}

// QueryInterpreter turns recruiter queries into matching criteria.
type QueryInterpreter struct {
	generator Generator
	memo      *memo
	logger    *zap.Logger
}

func NewQueryInterpreter(generator Generator, memoTTL time.Duration, log *zap.Logger) *QueryInterpreter {
	qi := &QueryInterpreter{
		generator: generator,
		logger:    logger.OrNop(log).Named("interpreter"),
	}
	if memoTTL > 0 {
		qi.memo = newMemo(memoTTL)
	}
	return qi
}

type interpretedQuery struct {
	Skills         []string `json:"skills"`
	Companies      []string `json:"companies"`
	Departments    []string `json:"departments"`
	Locations      []string `json:"locations"`
	MinExperience  *float64 `json:"min_experience"`
	MaxExperience  *float64 `json:"max_experience"`
	Interpretation string   `json:"interpretation"`
	Reasoning      string   `json:"reasoning"`
}

// Interpret asks the model for structured criteria. It fails with
// ErrEmptyInterpretation when the model understood nothing usable.
func (qi *QueryInterpreter) Interpret(ctx context.Context, query string) (Interpretation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Interpretation{}, ErrEmptyInterpretation
	}

	if qi.memo != nil {
		if in, ok := qi.memo.get(query); ok {
			qi.logger.Debug("interpretation served from memo", zap.String("query", logger.Truncate(query, 80)))
			return in, nil
		}
	}

	response, err := qi.generator.Generate(ctx, buildPrompt(query))
	if err != nil {
		return Interpretation{}, fmt.Errorf("LLM query analysis failed: %w", err)
	}

	var parsed interpretedQuery
	if err := json.Unmarshal([]byte(stripFences(response)), &parsed); err != nil {
		return Interpretation{}, fmt.Errorf("failed to parse LLM response: %w (response: %s)", err, logger.Truncate(response, 200))
	}

	in := Interpretation{
		Criteria: matching.Criteria{
			Skills:             parsed.Skills,
			Companies:          parsed.Companies,
			Departments:        parsed.Departments,
			Locations:          parsed.Locations,
			MinExperienceYears: nonNegative(parsed.MinExperience),
			MaxExperienceYears: nonNegative(parsed.MaxExperience),
		},
		Summary:   strings.TrimSpace(parsed.Interpretation),
		Reasoning: strings.TrimSpace(parsed.Reasoning),
	}
	if in.Criteria.IsEmpty() {
		return Interpretation{}, ErrEmptyInterpretation
	}

	qi.logger.Info("query interpreted",
		zap.String("query", logger.Truncate(query, 80)),
		zap.Strings("skills", in.Criteria.Skills),
		zap.Strings("companies", in.Criteria.Companies),
		zap.Strings("departments", in.Criteria.Departments))

	if qi.memo != nil {
		qi.memo.set(query, in)
	}
	return in, nil
}

func buildPrompt(query string) string {
	return fmt.Sprintf(`You are a talent search query analyzer. Extract structured search criteria from the recruiter's natural language query.

User Query: "%s"

Return ONLY valid JSON with this structure:
{
  "skills": ["skill names in canonical form"],
  "companies": ["company names"],
  "departments": ["department or team names"],
  "locations": ["city or country names"],
  "min_experience": null,
  "max_experience": null,
  "interpretation": "one sentence describing what the recruiter is looking for",
  "reasoning": "short explanation of how the criteria were derived"
}

Rules:
- Normalize skill names (e.g., "JS" → "JavaScript", "K8s" → "Kubernetes")
- Extract implicit requirements (e.g., "senior Java dev" → skills: ["Java"], min_experience: 5)
- "developer", "engineer", "architect" are job titles, NOT skills
- For experience: "5+ years" → min_experience: 5, "3-5 years" → min_experience: 3, max_experience: 5
- Return empty arrays for missing criteria, not null

Now analyze this query and return ONLY the JSON:`, query)
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func nonNegative(v *float64) *float64 {
	if v == nil {
		return nil
	}
	if *v < 0 {
		zero := 0.0
		return &zero
	}
	return v
}
