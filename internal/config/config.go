package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"talent-search/internal/cache"
	"talent-search/internal/matching"
)

type Config struct {
	DatabaseURL string
	Port        string
	UploadsDir  string

	// LLM Configuration
	LLMProvider string // "openai", "groq", "ollama" or "none"
	LLMModel    string
	LLMAPIKey   string
	LLMBaseURL  string // overrides the provider's default endpoint
	LLMTimeout  time.Duration

	LogJSON  bool
	LogDebug bool

	CacheEnabled  bool
	CacheDir      string
	CacheInMemory bool
	CacheTTLs     cache.TTLs

	MinMatchScore  float64
	ScoringWorkers int
	Weights        matching.Weights
}

// LoadConfig reads .env (current or repository root) and the environment.
// It returns the names of the .env files that could not be loaded so the
// caller can log them once a logger exists.
func LoadConfig() (*Config, []string, error) {
	var missing []string
	if err := godotenv.Load(); err != nil {
		missing = append(missing, ".env")
		if err := godotenv.Load("../../.env"); err != nil {
			missing = append(missing, "../../.env")
		}
	}

	e := &envReader{}

	llmProvider := strings.ToLower(getenv("LLM_PROVIDER", "none"))
	llmAPIKey := ""
	switch llmProvider {
	case "openai":
		llmAPIKey = os.Getenv("OPENAI_API_KEY")
	case "groq":
		llmAPIKey = os.Getenv("GROQ_API_KEY")
	}

	defaults := matching.DefaultWeights()
	ttls := cache.DefaultTTLs()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        getenv("PORT", "8080"),
		UploadsDir:  getenv("UPLOADS_DIR", "./uploads"),

		LLMProvider: llmProvider,
		LLMModel:    getenv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:   llmAPIKey,
		LLMBaseURL:  os.Getenv("LLM_BASE_URL"),
		LLMTimeout:  e.duration("LLM_TIMEOUT", 60*time.Second),

		LogJSON:  e.bool("LOG_JSON", false),
		LogDebug: e.bool("LOG_DEBUG", false),

		CacheEnabled:  e.bool("CACHE_ENABLED", true),
		CacheDir:      getenv("CACHE_DIR", "./data/cache"),
		CacheInMemory: e.bool("CACHE_IN_MEMORY", false),
		CacheTTLs: cache.TTLs{
			Search:     e.duration("CACHE_TTL_SEARCH", ttls.Search),
			Colleagues: e.duration("CACHE_TTL_COLLEAGUES", ttls.Colleagues),
			Filters:    e.duration("CACHE_TTL_FILTERS", ttls.Filters),
			Candidate:  e.duration("CACHE_TTL_CANDIDATE", ttls.Candidate),
		},

		MinMatchScore:  e.float("MIN_MATCH_SCORE", 0.1),
		ScoringWorkers: e.int("SCORING_WORKERS", runtime.GOMAXPROCS(0)),
		Weights: matching.Weights{
			Skills:      e.float("WEIGHT_SKILLS", defaults.Skills),
			Experience:  e.float("WEIGHT_EXPERIENCE", defaults.Experience),
			Companies:   e.float("WEIGHT_COMPANIES", defaults.Companies),
			Departments: e.float("WEIGHT_DEPARTMENTS", defaults.Departments),
			Keywords:    e.float("WEIGHT_KEYWORDS", defaults.Keywords),
		},
	}

	if len(e.errs) > 0 {
		return nil, missing, fmt.Errorf("invalid configuration: %s", strings.Join(e.errs, "; "))
	}
	if cfg.MinMatchScore < 0 || cfg.MinMatchScore > 1 {
		return nil, missing, fmt.Errorf("invalid configuration: MIN_MATCH_SCORE must be within [0,1]")
	}
	return cfg, missing, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// envReader parses typed variables, collecting every malformed one.
type envReader struct {
	errs []string
}

func (e *envReader) bool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, key+" must be a boolean")
		return fallback
	}
	return b
}

func (e *envReader) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, key+" must be an integer")
		return fallback
	}
	return n
}

func (e *envReader) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, key+" must be a number")
		return fallback
	}
	return f
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, key+" must be a duration like 5m")
		return fallback
	}
	return d
}
