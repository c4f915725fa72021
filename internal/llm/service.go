package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"talent-search/internal/logger"
	httpclient "talent-search/pkg/http"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderGroq   Provider = "groq"
	ProviderNone   Provider = "none"
)

var ErrProviderNotConfigured = errors.New("LLM provider not configured")

const (
	openAIURL = "https://api.openai.com/v1/chat/completions"
	groqURL   = "https://api.groq.com/openai/v1/chat/completions"
	ollamaURL = "http://localhost:11434/api/generate"
)

// Options configures a Service. An empty BaseURL selects the provider's public endpoint.
type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Service sends prompts to a JSON-mode chat model.
type Service struct {
	provider Provider
	apiKey   string
	model    string
	baseURL  string
	client   *httpclient.Client
	logger   *zap.Logger
}

func NewService(opts Options) *Service {
	provider := Provider(strings.ToLower(strings.TrimSpace(opts.Provider)))
	if provider == "" {
		provider = ProviderNone
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		switch provider {
		case ProviderOpenAI:
			baseURL = openAIURL
		case ProviderGroq:
			baseURL = groqURL
		case ProviderOllama:
			baseURL = ollamaURL
		}
	}

	return &Service{
		provider: provider,
		apiKey:   opts.APIKey,
		model:    opts.Model,
		baseURL:  baseURL,
		client:   httpclient.NewClient(timeout),
		logger:   logger.OrNop(opts.Logger).Named("llm"),
	}
}

// Configured reports whether prompts can be sent.
func (s *Service) Configured() bool {
	return s != nil && s.provider != ProviderNone
}

// Generate sends a prompt and returns the raw model output.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	if !s.Configured() {
		return "", ErrProviderNotConfigured
	}

	start := time.Now()
	var (
		response string
		err      error
	)
	switch s.provider {
	case ProviderOpenAI, ProviderGroq:
		response, err = s.callChat(ctx, prompt)
	case ProviderOllama:
		response, err = s.callOllama(ctx, prompt)
	default:
		return "", fmt.Errorf("unknown provider: %s", s.provider)
	}

	s.logger.Debug("llm call finished",
		zap.String("provider", string(s.provider)),
		zap.String("model", s.model),
		zap.Int("prompt_chars", len(prompt)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
	return response, err
}

func (s *Service) callChat(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a recruiting search assistant. Return only valid JSON."},
			{"role": "user", "content": prompt},
		},
		"temperature":     0.1,
		"response_format": map[string]string{"type": "json_object"},
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	headers := map[string]string{"Authorization": "Bearer " + s.apiKey}
	if err := s.client.PostJSON(ctx, s.baseURL, headers, reqBody, &result); err != nil {
		return "", fmt.Errorf("%s API error: %w", s.provider, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("%s error: %s", s.provider, result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", s.provider)
	}
	return result.Choices[0].Message.Content, nil
}

func (s *Service) callOllama(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  s.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	var result struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := s.client.PostJSON(ctx, s.baseURL, nil, reqBody, &result); err != nil {
		return "", fmt.Errorf("Ollama connection failed (is Ollama running?): %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("Ollama error: %s", result.Error)
	}

	s.logger.Debug("ollama response", zap.String("preview", logger.Truncate(result.Response, 200)))
	return result.Response, nil
}
