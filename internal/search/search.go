package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talent-search/internal/cache"
	"talent-search/internal/logger"
	"talent-search/internal/matching"
	"talent-search/internal/storage"
)

// Request is a candidate search. Query is free text; Criteria are structured
// filters. At least one of them must be set.
type Request struct {
	Query         string            `json:"query,omitempty"`
	Criteria      matching.Criteria `json:"criteria"`
	AvailableOnly bool              `json:"available_only,omitempty"`
	UserID        string            `json:"-"`
}

type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Response is one page of ranked results. Total counts every result above the
// minimum score, not just the page.
type Response struct {
	Results        []matching.Result `json:"results"`
	Total          int               `json:"total"`
	Criteria       matching.Criteria `json:"criteria"`
	Interpretation string            `json:"interpretation,omitempty"`
	Reasoning      string            `json:"reasoning,omitempty"`
	Cached         bool              `json:"cached"`
}

type searchKey struct {
	Query         string            `json:"query"`
	Criteria      matching.Criteria `json:"criteria"`
	AvailableOnly bool              `json:"available_only"`
	Offset        int               `json:"offset"`
	Limit         int               `json:"limit"`
}

// Search ranks the candidate pool against the request.
func (o *Orchestrator) Search(ctx context.Context, req Request, page Pagination) (Response, error) {
	started := o.now()

	req.Query = strings.TrimSpace(req.Query)
	if err := validateSearch(req, &page); err != nil {
		return Response{}, err
	}

	key, keyErr := cache.Key(cache.NamespaceSearch, searchKey{
		Query:         strings.ToLower(req.Query),
		Criteria:      keyCriteria(req.Criteria),
		AvailableOnly: req.AvailableOnly,
		Offset:        page.Offset,
		Limit:         page.Limit,
	})
	if keyErr != nil {
		o.logger.Warn("search cache key not derivable", zap.Error(keyErr))
	}

	var resp Response
	if keyErr == nil && o.cache.Get(ctx, key, &resp) {
		resp.Cached = true
		o.recordHistory(ctx, req, resp, started)
		return resp, nil
	}

	criteria, summary, reasoning := o.resolveCriteria(ctx, req)
	if !criteria.HasScoringTerms() {
		return Response{}, fmt.Errorf("%w: query has no searchable terms", ErrInvalidInput)
	}

	pool, err := o.repo.FetchCandidatePool(ctx, storage.PoolFilter{
		Locations:          criteria.Locations,
		Companies:          criteria.Companies,
		Departments:        criteria.Departments,
		MaxExperienceYears: criteria.MaxExperienceYears,
		AvailableOnly:      req.AvailableOnly,
	})
	if err != nil {
		return Response{}, fmt.Errorf("fetch candidate pool: %w", err)
	}

	results := o.scorePool(pool, func(c storage.Candidate) (matching.Result, bool) {
		p := matching.ProfileOf(c)
		m := o.scorer.Match(p, criteria)
		if m.Score <= 0 || m.Score < o.minScore {
			return matching.Result{}, false
		}
		return matching.NewResult(c, p, m), true
	})
	rank(results)

	resp = Response{
		Results:        paginate(results, page.Offset, page.Limit),
		Total:          len(results),
		Criteria:       criteria,
		Interpretation: summary,
		Reasoning:      reasoning,
	}

	if keyErr == nil {
		o.cache.Set(ctx, key, resp, o.cache.TTL(cache.NamespaceSearch))
	}
	o.recordHistory(ctx, req, resp, started)

	o.logger.Info("search completed",
		zap.String("query", logger.Truncate(req.Query, 80)),
		zap.Int("pool", len(pool)),
		zap.Int("total", resp.Total),
		zap.Int("returned", len(resp.Results)),
		zap.Duration("elapsed", o.now().Sub(started)))

	return resp, nil
}

func validateSearch(req Request, page *Pagination) error {
	if page.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", ErrInvalidInput)
	}
	if page.Limit < 0 || page.Limit > MaxPageLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxPageLimit)
	}
	if page.Limit == 0 {
		page.Limit = DefaultPageLimit
	}

	c := req.Criteria
	if c.MinExperienceYears != nil && c.MaxExperienceYears != nil && *c.MinExperienceYears > *c.MaxExperienceYears {
		return fmt.Errorf("%w: min_experience_years exceeds max_experience_years", ErrInvalidInput)
	}
	// Locations and max experience only narrow the pool; on their own every
	// candidate would score zero.
	if req.Query == "" && !c.HasScoringTerms() {
		return fmt.Errorf("%w: a query or at least one scoring criterion is required", ErrInvalidInput)
	}
	return nil
}

// keyCriteria folds list values the way matching compares them, so requests
// that differ only in case or padding share a cache entry.
func keyCriteria(c matching.Criteria) matching.Criteria {
	c.Skills = foldAll(c.Skills)
	c.Companies = foldAll(c.Companies)
	c.Departments = foldAll(c.Departments)
	c.Locations = foldAll(c.Locations)
	c.Keywords = foldAll(c.Keywords)
	return c
}

func foldAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// resolveCriteria fills in scoring terms from free text. Structured criteria
// from the caller win; the interpreter is only asked when they carry nothing
// to score on, and raw keywords are used whenever it cannot help.
func (o *Orchestrator) resolveCriteria(ctx context.Context, req Request) (matching.Criteria, string, string) {
	criteria := req.Criteria
	if req.Query == "" || criteria.HasScoringTerms() {
		return criteria, "", ""
	}

	var summary, reasoning string
	if o.interpreter != nil {
		in, err := o.interpreter.Interpret(ctx, req.Query)
		if err != nil {
			o.logger.Warn("query interpretation failed, falling back to keywords",
				zap.String("query", logger.Truncate(req.Query, 80)), zap.Error(err))
		} else {
			interpreted := in.Criteria
			if len(criteria.Locations) > 0 {
				interpreted.Locations = criteria.Locations
			}
			if criteria.MaxExperienceYears != nil {
				interpreted.MaxExperienceYears = criteria.MaxExperienceYears
			}
			criteria = interpreted
			summary, reasoning = in.Summary, in.Reasoning
		}
	}

	if !criteria.HasScoringTerms() {
		criteria.Keywords = Keywords(req.Query)
		if summary == "" && len(criteria.Keywords) > 0 {
			summary = "Keyword search: " + strings.Join(criteria.Keywords, ", ")
		}
	}
	return criteria, summary, reasoning
}

type historyResult struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Name        string    `json:"name"`
	Score       float64   `json:"score"`
}

// recordHistory writes the audit entry. It runs on a context detached from the
// caller so an abandoned request is still recorded, and never fails the search.
func (o *Orchestrator) recordHistory(ctx context.Context, req Request, resp Response, started time.Time) {
	top := make([]historyResult, 0, o.historySize)
	for i, r := range resp.Results {
		if i >= o.historySize {
			break
		}
		top = append(top, historyResult{CandidateID: r.CandidateID, Name: r.CandidateName, Score: r.Score})
	}

	criteriaJSON, err := json.Marshal(resp.Criteria)
	if err != nil {
		o.logger.Warn("search history criteria not encodable", zap.Error(err))
		criteriaJSON = []byte("{}")
	}
	topJSON, err := json.Marshal(top)
	if err != nil {
		o.logger.Warn("search history snapshot not encodable", zap.Error(err))
		topJSON = []byte("[]")
	}

	userID := req.UserID
	if userID == "" {
		userID = "anonymous"
	}

	entry := storage.SearchHistoryEntry{
		ID:          uuid.New(),
		UserID:      userID,
		QueryText:   req.Query,
		Criteria:    criteriaJSON,
		ResultCount: resp.Total,
		TopResults:  topJSON,
		ElapsedMS:   o.now().Sub(started).Milliseconds(),
		CreatedAt:   o.now(),
	}

	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := o.repo.RecordSearchHistory(auditCtx, entry); err != nil {
		o.logger.Warn("failed to record search history", zap.String("user_id", userID), zap.Error(err))
	}
}
