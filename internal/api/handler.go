package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talent-search/internal/cache"
	"talent-search/internal/colleagues"
	"talent-search/internal/cv"
	"talent-search/internal/logger"
	"talent-search/internal/matching"
	"talent-search/internal/search"
	"talent-search/internal/storage"
)

// Searcher is the matching engine as seen by the HTTP layer.
type Searcher interface {
	Search(ctx context.Context, req search.Request, page search.Pagination) (search.Response, error)
	FindColleagues(ctx context.Context, id uuid.UUID, q search.ColleagueQuery) ([]colleagues.Link, error)
	FindSimilar(ctx context.Context, id uuid.UUID, limit int) ([]matching.Result, error)
	FilterOptions(ctx context.Context) (search.Facets, error)
	InvalidateCandidate(ctx context.Context, id uuid.UUID) int
}

// ResumeStore persists uploaded resumes.
type ResumeStore interface {
	FetchCandidateByID(ctx context.Context, id uuid.UUID) (storage.Candidate, bool, error)
	SaveParsedResume(ctx context.Context, candidateID uuid.UUID, filename, text string, skills []string) (uuid.UUID, error)
}

type API struct {
	searcher  Searcher
	resumes   ResumeStore
	cvParser  *cv.Parser
	extractor *cv.Extractor
	cache     *cache.ResultCache
	logger    *zap.Logger
}

// Deps are the collaborators of the HTTP layer. Resumes, Parser and Extractor
// are only needed for resume uploads; Cache only for manual invalidation.
type Deps struct {
	Searcher  Searcher
	Resumes   ResumeStore
	Parser    *cv.Parser
	Extractor *cv.Extractor
	Cache     *cache.ResultCache
	Logger    *zap.Logger
}

func NewAPI(d Deps) *API {
	extractor := d.Extractor
	if extractor == nil {
		extractor = cv.NewExtractor(nil, d.Logger)
	}
	rc := d.Cache
	if rc == nil {
		rc = cache.New(nil)
	}
	return &API{
		searcher:  d.Searcher,
		resumes:   d.Resumes,
		cvParser:  d.Parser,
		extractor: extractor,
		cache:     rc,
		logger:    logger.OrNop(d.Logger).Named("api"),
	}
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query         string            `json:"query"`
	Criteria      matching.Criteria `json:"criteria"`
	AvailableOnly bool              `json:"available_only"`
	Offset        int               `json:"offset"`
	Limit         int               `json:"limit"`
}

// SearchHandler ranks candidates against a query
// @Summary Search candidates
// @Description Rank candidates by skills, experience, companies and departments. Free-text queries are interpreted by the LLM when configured, otherwise matched as keywords.
// @Tags search
// @Accept json
// @Produce json
// @Param X-User-ID header string false "Caller id recorded in search history"
// @Param request body SearchRequest true "Search request"
// @Success 200 {object} search.Response
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /search [post]
func (a *API) SearchHandler(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	resp, err := a.searcher.Search(r.Context(), search.Request{
		Query:         body.Query,
		Criteria:      body.Criteria,
		AvailableOnly: body.AvailableOnly,
		UserID:        r.Header.Get("X-User-ID"),
	}, search.Pagination{Offset: body.Offset, Limit: body.Limit})
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, resp)
}

// ColleaguesHandler lists the candidate's colleagues
// @Summary Find colleagues
// @Description Colleagues named in the candidate's work history, plus people with overlapping employment at the same company when include_potential is set.
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Param include_potential query bool false "Include colleagues inferred from overlapping employment"
// @Param min_overlap_months query int false "Minimum overlap in months"
// @Param limit query int false "Maximum number of links"
// @Success 200 {array} colleagues.Link
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /candidates/{id}/colleagues [get]
func (a *API) ColleaguesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := a.candidateID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var (
		query search.ColleagueQuery
		err   error
	)
	if query.IncludePotential, err = boolParam(q.Get("include_potential")); err != nil {
		a.writeError(w, http.StatusBadRequest, "include_potential must be a boolean")
		return
	}
	if query.MinOverlapMonths, err = intParam(q.Get("min_overlap_months")); err != nil {
		a.writeError(w, http.StatusBadRequest, "min_overlap_months must be an integer")
		return
	}
	if query.Limit, err = intParam(q.Get("limit")); err != nil {
		a.writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	links, err := a.searcher.FindColleagues(r.Context(), id, query)
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, links)
}

// SimilarHandler lists candidates similar to the given one
// @Summary Find similar candidates
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Param limit query int false "Maximum number of results"
// @Success 200 {array} matching.Result
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /candidates/{id}/similar [get]
func (a *API) SimilarHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := a.candidateID(w, r)
	if !ok {
		return
	}
	limit, err := intParam(r.URL.Query().Get("limit"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	results, err := a.searcher.FindSimilar(r.Context(), id, limit)
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, results)
}

// FilterOptionsHandler returns the available filter values
// @Summary Filter options
// @Description Most common skills, companies, departments and locations in the candidate pool.
// @Tags search
// @Produce json
// @Success 200 {object} search.Facets
// @Failure 500 {object} ErrorResponse
// @Router /filters [get]
func (a *API) FilterOptionsHandler(w http.ResponseWriter, r *http.Request) {
	facets, err := a.searcher.FilterOptions(r.Context())
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, facets)
}

// InvalidateRequest is the body of POST /api/cache/invalidate. With a candidate
// id the candidate's stale entries are dropped, otherwise the named namespace.
type InvalidateRequest struct {
	CandidateID string `json:"candidate_id,omitempty"`
	Namespace   string `json:"namespace,omitempty"`
}

type InvalidateResponse struct {
	Removed int `json:"removed"`
}

// InvalidateCacheHandler drops cached results
// @Summary Invalidate cache
// @Tags cache
// @Accept json
// @Produce json
// @Param request body InvalidateRequest true "What to invalidate"
// @Success 200 {object} InvalidateResponse
// @Failure 400 {object} ErrorResponse
// @Router /cache/invalidate [post]
func (a *API) InvalidateCacheHandler(w http.ResponseWriter, r *http.Request) {
	var body InvalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var removed int
	switch {
	case body.CandidateID != "":
		id, err := uuid.Parse(body.CandidateID)
		if err != nil {
			a.writeError(w, http.StatusBadRequest, "invalid candidate_id")
			return
		}
		removed = a.searcher.InvalidateCandidate(r.Context(), id)
	case body.Namespace != "":
		ns := cache.Namespace(body.Namespace)
		switch ns {
		case cache.NamespaceSearch, cache.NamespaceColleagues, cache.NamespaceFilters, cache.NamespaceCandidate:
		default:
			a.writeError(w, http.StatusBadRequest, "unknown namespace")
			return
		}
		removed = a.cache.Invalidate(r.Context(), ns.Prefix())
	default:
		a.writeError(w, http.StatusBadRequest, "candidate_id or namespace is required")
		return
	}

	a.logger.Info("cache invalidated",
		zap.String("candidate_id", body.CandidateID),
		zap.String("namespace", body.Namespace),
		zap.Int("removed", removed))
	a.writeJSON(w, http.StatusOK, InvalidateResponse{Removed: removed})
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (a *API) candidateID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid candidate id")
		return uuid.Nil, false
	}
	return id, true
}

func (a *API) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, search.ErrInvalidInput):
		a.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, search.ErrCandidateNotFound):
		a.writeError(w, http.StatusNotFound, err.Error())
	default:
		a.logger.Error("request failed", zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, msg string) {
	a.writeJSON(w, status, ErrorResponse{Error: msg})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func boolParam(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
