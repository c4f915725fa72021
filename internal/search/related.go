package search

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talent-search/internal/cache"
	"talent-search/internal/colleagues"
	"talent-search/internal/matching"
	"talent-search/internal/storage"
)

// ColleagueQuery controls FindColleagues.
type ColleagueQuery struct {
	IncludePotential bool `json:"include_potential"`
	MinOverlapMonths int  `json:"min_overlap_months"`
	Limit            int  `json:"limit"`
}

// FindColleagues lists people who worked with the candidate, either named in
// their work history or inferred from overlapping employment.
func (o *Orchestrator) FindColleagues(ctx context.Context, id uuid.UUID, q ColleagueQuery) ([]colleagues.Link, error) {
	if q.MinOverlapMonths < 0 {
		return nil, fmt.Errorf("%w: min_overlap_months must not be negative", ErrInvalidInput)
	}
	if q.Limit < 0 || q.Limit > MaxPageLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxPageLimit)
	}
	if q.Limit == 0 {
		q.Limit = defaultColleagues
	}

	reference, err := o.reference(ctx, id)
	if err != nil {
		return nil, err
	}
	// Without a work history there is neither a named colleague nor an
	// employer to overlap with.
	if len(reference.Experiences) == 0 {
		return []colleagues.Link{}, nil
	}

	key, keyErr := cache.ScopedKey(cache.NamespaceColleagues, id.String(), q)
	var links []colleagues.Link
	if keyErr == nil && o.cache.Get(ctx, key, &links) {
		return links, nil
	}

	// Named colleagues may never have shared an employer on record, so the
	// pool is only narrowed to the reference's companies when nobody is named.
	filter := storage.PoolFilter{AnyResumeStatus: true}
	if !namesColleagues(reference) {
		filter.Companies = employers(reference)
	}

	pool, err := o.repo.FetchCandidatePool(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch colleague pool: %w", err)
	}

	links = colleagues.Detect(reference, pool, colleagues.Options{
		IncludePotential: q.IncludePotential,
		MinOverlapMonths: q.MinOverlapMonths,
		Limit:            q.Limit,
		Now:              o.now(),
	})
	if links == nil {
		links = []colleagues.Link{}
	}

	if keyErr == nil {
		o.cache.Set(ctx, key, links, o.cache.TTL(cache.NamespaceColleagues))
	}
	o.logger.Info("colleague analysis completed",
		zap.Stringer("candidate_id", id),
		zap.Int("pool", len(pool)),
		zap.Int("links", len(links)))
	return links, nil
}

// FindSimilar ranks other candidates by similarity to the reference. A
// reference without a completed resume has nothing to compare and yields an
// empty list.
func (o *Orchestrator) FindSimilar(ctx context.Context, id uuid.UUID, limit int) ([]matching.Result, error) {
	if limit < 0 || limit > MaxPageLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxPageLimit)
	}
	if limit == 0 {
		limit = defaultSimilar
	}

	reference, err := o.reference(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(reference.CompletedResumes()) == 0 {
		return []matching.Result{}, nil
	}

	key, keyErr := cache.ScopedKey(cache.NamespaceCandidate, id.String()+":similar", struct {
		Limit int `json:"limit"`
	}{limit})
	var results []matching.Result
	if keyErr == nil && o.cache.Get(ctx, key, &results) {
		return results, nil
	}

	pool, err := o.repo.FetchCandidatePool(ctx, storage.PoolFilter{})
	if err != nil {
		return nil, fmt.Errorf("fetch candidate pool: %w", err)
	}

	refProfile := matching.ProfileOf(reference)
	results = o.scorePool(pool, func(c storage.Candidate) (matching.Result, bool) {
		if c.ID == reference.ID {
			return matching.Result{}, false
		}
		p := matching.ProfileOf(c)
		s := o.scorer.Similarity(refProfile, p)
		if s.Score <= 0 || s.Score < o.minScore {
			return matching.Result{}, false
		}
		return matching.NewSimilarResult(c, p, s), true
	})
	rank(results)
	results = paginate(results, 0, limit)

	if keyErr == nil {
		o.cache.Set(ctx, key, results, o.cache.TTL(cache.NamespaceCandidate))
	}
	return results, nil
}

func (o *Orchestrator) reference(ctx context.Context, id uuid.UUID) (storage.Candidate, error) {
	c, found, err := o.repo.FetchCandidateByID(ctx, id)
	if err != nil {
		return storage.Candidate{}, fmt.Errorf("fetch candidate %s: %w", id, err)
	}
	if !found {
		return storage.Candidate{}, fmt.Errorf("%w: %s", ErrCandidateNotFound, id)
	}
	return c, nil
}

func namesColleagues(c storage.Candidate) bool {
	for _, exp := range c.Experiences {
		if len(exp.Colleagues) > 0 {
			return true
		}
	}
	return false
}

func employers(c storage.Candidate) []string {
	out := make([]string, 0, len(c.Experiences))
	for _, exp := range c.Experiences {
		out = append(out, exp.Company)
	}
	return out
}
