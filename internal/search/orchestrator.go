// Package search is the entry point of the matching engine. It resolves a
// request into criteria, fetches the candidate pool, scores and ranks it, and
// keeps the result cache and search history up to date.
package search

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talent-search/internal/cache"
	"talent-search/internal/llm"
	"talent-search/internal/logger"
	"talent-search/internal/matching"
	"talent-search/internal/storage"
)

var (
	// ErrInvalidInput rejects a request before any work is done.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCandidateNotFound is returned by operations that need the reference candidate to exist.
	ErrCandidateNotFound = errors.New("candidate not found")
)

const (
	DefaultMinScore    = 0.1
	DefaultPageLimit   = 20
	MaxPageLimit       = 100
	defaultSimilar     = 10
	defaultColleagues  = 50
	defaultHistorySize = 10
	facetLimit         = 50

	// pools smaller than this are scored on the calling goroutine
	parallelThreshold = 256
	auditTimeout      = 5 * time.Second
)

// Repository is the persistence collaborator.
type Repository interface {
	FetchCandidatePool(ctx context.Context, filter storage.PoolFilter) ([]storage.Candidate, error)
	FetchCandidateByID(ctx context.Context, id uuid.UUID) (storage.Candidate, bool, error)
	RecordSearchHistory(ctx context.Context, entry storage.SearchHistoryEntry) error
}

// Interpreter turns free text into structured criteria.
type Interpreter interface {
	Interpret(ctx context.Context, query string) (llm.Interpretation, error)
}

type Orchestrator struct {
	repo        Repository
	cache       *cache.ResultCache
	interpreter Interpreter
	scorer      matching.Scorer
	now         func() time.Time
	logger      *zap.Logger
	minScore    float64
	workers     int
	historySize int
}

type Option func(*Orchestrator)

func WithCache(c *cache.ResultCache) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.cache = c
		}
	}
}

// WithInterpreter enables free-text interpretation. Without one, free text is
// always matched as keywords.
func WithInterpreter(i Interpreter) Option {
	return func(o *Orchestrator) { o.interpreter = i }
}

func WithScorer(s matching.Scorer) Option {
	return func(o *Orchestrator) { o.scorer = s }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger.OrNop(l).Named("search") }
}

// WithMinScore sets the score below which results are dropped.
func WithMinScore(min float64) Option {
	return func(o *Orchestrator) {
		if min >= 0 && min <= 1 {
			o.minScore = min
		}
	}
}

// WithWorkers bounds the goroutines used to score large pools.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithHistorySize sets how many top results are kept in the search-history snapshot.
func WithHistorySize(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.historySize = n
		}
	}
}

func New(repo Repository, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		repo:        repo,
		cache:       cache.New(nil),
		scorer:      matching.DefaultScorer(),
		now:         time.Now,
		logger:      zap.NewNop(),
		minScore:    DefaultMinScore,
		workers:     runtime.GOMAXPROCS(0),
		historySize: defaultHistorySize,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// InvalidateCandidate drops cached results that may be stale after the
// candidate's resume or work history changed.
func (o *Orchestrator) InvalidateCandidate(ctx context.Context, id uuid.UUID) int {
	return o.cache.InvalidateCandidate(ctx, id.String())
}
