package cv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"talent-search/internal/llm"
	"talent-search/internal/logger"
)

// maxPromptChars bounds the resume text sent to the model.
const maxPromptChars = 12000

// Extractor derives a resume's skill list, asking the LLM when one is
// configured and falling back to keyword matching otherwise.
type Extractor struct {
	generator llm.Generator
	logger    *zap.Logger
}

// NewExtractor builds an extractor. A nil generator means keyword matching only.
func NewExtractor(generator llm.Generator, log *zap.Logger) *Extractor {
	return &Extractor{
		generator: generator,
		logger:    logger.OrNop(log).Named("extractor"),
	}
}

// Skills returns the de-duplicated skills found in text.
func (e *Extractor) Skills(ctx context.Context, text string) []string {
	if e.generator != nil {
		skills, err := e.llmSkills(ctx, text)
		if err == nil && len(skills) > 0 {
			e.logger.Debug("skills extracted by LLM", zap.Int("count", len(skills)))
			return skills
		}
		e.logger.Warn("LLM skill extraction failed, using keyword matching", zap.Error(err))
	}
	return ExtractSkills(text)
}

func (e *Extractor) llmSkills(ctx context.Context, text string) ([]string, error) {
	prompt := fmt.Sprintf(`You are an expert CV parser. List the professional skills in this CV.

CV Text:
"""
%s
"""

Return ONLY valid JSON: {"skills": ["Canonical skill name"]}
- Normalize skill names (e.g., "K8s" → "Kubernetes", "JS" → "JavaScript", "React.js" → "React")
- Extract implicit skills (e.g., "built microservices" → "Microservices")
- Return an empty array if no skills are found`, logger.Truncate(text, maxPromptChars))

	response, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var out struct {
		Skills []string `json:"skills"`
	}
	response = strings.TrimSpace(response)
	response = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(response, "```json"), "```"), "```")
	if err := json.Unmarshal([]byte(strings.TrimSpace(response)), &out); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	seen := map[string]struct{}{}
	var skills []string
	for _, s := range out.Skills {
		s = strings.TrimSpace(s)
		k := strings.ToLower(s)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		skills = append(skills, s)
	}
	return skills, nil
}
