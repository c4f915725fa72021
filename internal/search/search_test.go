package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-search/internal/cache"
	"talent-search/internal/llm"
	"talent-search/internal/matching"
	"talent-search/internal/storage"
)

var now = time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

type fakeRepo struct {
	mu         sync.Mutex
	candidates []storage.Candidate
	poolErr    error
	historyErr error
	filters    []storage.PoolFilter
	history    []storage.SearchHistoryEntry
	auditCtxErrs []error
	poolCalls  int
}

func (r *fakeRepo) FetchCandidatePool(_ context.Context, f storage.PoolFilter) ([]storage.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.poolCalls++
	r.filters = append(r.filters, f)
	if r.poolErr != nil {
		return nil, r.poolErr
	}
	var out []storage.Candidate
	for _, c := range r.candidates {
		if !f.AnyResumeStatus && len(c.CompletedResumes()) == 0 {
			continue
		}
		if f.AvailableOnly && !c.IsAvailable {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeRepo) FetchCandidateByID(_ context.Context, id uuid.UUID) (storage.Candidate, bool, error) {
	for _, c := range r.candidates {
		if c.ID == id {
			return c, true, nil
		}
	}
	return storage.Candidate{}, false, nil
}

func (r *fakeRepo) RecordSearchHistory(ctx context.Context, e storage.SearchHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, e)
	r.auditCtxErrs = append(r.auditCtxErrs, ctx.Err())
	return r.historyErr
}

type fakeInterpreter struct {
	in    llm.Interpretation
	err   error
	calls int
}

func (f *fakeInterpreter) Interpret(context.Context, string) (llm.Interpretation, error) {
	f.calls++
	return f.in, f.err
}

func person(name string, skills ...string) storage.Candidate {
	id := uuid.New()
	return storage.Candidate{
		ID:          id,
		FullName:    name,
		IsAvailable: true,
		Resumes: []storage.Resume{{
			ID:          uuid.New(),
			CandidateID: id,
			Skills:      skills,
			Status:      storage.ParseStatusCompleted,
			UpdatedAt:   now,
		}},
	}
}

func withYears(c storage.Candidate, y float64) storage.Candidate {
	c.TotalExperienceYears = &y
	return c
}

func at(c storage.Candidate, company, department string, start time.Time, end *time.Time, named ...string) storage.Candidate {
	exp := storage.WorkExperience{
		ID:          uuid.New(),
		CandidateID: c.ID,
		Company:     company,
		Position:    "Engineer",
		StartDate:   start,
		EndDate:     end,
		IsCurrent:   end == nil,
		Colleagues:  named,
	}
	if department != "" {
		exp.Department = &department
	}
	c.Experiences = append(c.Experiences, exp)
	return c
}

func month(y int, m time.Month) time.Time { return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC) }

func ptr[T any](v T) *T { return &v }

func newCache(t *testing.T) (*cache.ResultCache, *cache.BadgerStore) {
	t.Helper()
	store, err := cache.OpenBadgerStore("", true, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return cache.New(store), store
}

func TestSearch_SkillScenario(t *testing.T) {
	a := person("Alice", "Python", "FastAPI", "SQL")
	b := person("Bob", "Go")
	repo := &fakeRepo{candidates: []storage.Candidate{a, b}}
	o := New(repo, WithClock(clock))

	resp, err := o.Search(context.Background(), Request{
		Criteria: matching.Criteria{Skills: []string{"Python", "FastAPI"}},
		UserID:   "recruiter-1",
	}, Pagination{})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, a.ID, resp.Results[0].CandidateID)
	assert.GreaterOrEqual(t, resp.Results[0].Score, 0.8)
	assert.Equal(t, []string{"Python", "FastAPI"}, resp.Results[0].Highlights.MatchedSkills)
	assert.False(t, resp.Cached)

	require.Len(t, repo.history, 1)
	h := repo.history[0]
	assert.Equal(t, "recruiter-1", h.UserID)
	assert.Equal(t, 1, h.ResultCount)
	var top []historyResult
	require.NoError(t, json.Unmarshal(h.TopResults, &top))
	require.Len(t, top, 1)
	assert.Equal(t, a.ID, top[0].CandidateID)
}

func TestSearch_RankingAndPagination(t *testing.T) {
	var pool []storage.Candidate
	// Scores 1/3, 2/3 and 1 against three required skills, two candidates each.
	for i, skills := range [][]string{{"Go"}, {"Go", "SQL"}, {"Go", "SQL", "Kafka"}} {
		for _, suffix := range []string{"A", "B"} {
			pool = append(pool, person(fmt.Sprintf("%d-%s", i, suffix), skills...))
		}
	}
	o := New(&fakeRepo{candidates: pool}, WithClock(clock))
	criteria := matching.Criteria{Skills: []string{"Go", "SQL", "Kafka"}}

	first, err := o.Search(context.Background(), Request{Criteria: criteria}, Pagination{Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, first.Total)
	require.Len(t, first.Results, 4)
	assert.Equal(t, "2-A", first.Results[0].CandidateName)
	assert.Equal(t, "2-B", first.Results[1].CandidateName)
	for i := 1; i < len(first.Results); i++ {
		assert.GreaterOrEqual(t, first.Results[i-1].Score, first.Results[i].Score)
	}

	second, err := o.Search(context.Background(), Request{Criteria: criteria}, Pagination{Offset: 4, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, second.Total)
	require.Len(t, second.Results, 2)
	assert.Equal(t, "0-A", second.Results[0].CandidateName)

	past, err := o.Search(context.Background(), Request{Criteria: criteria}, Pagination{Offset: 50})
	require.NoError(t, err)
	assert.NotNil(t, past.Results)
	assert.Empty(t, past.Results)
}

func TestSearch_MinScore(t *testing.T) {
	pool := []storage.Candidate{
		person("Full", "Go", "SQL", "Kafka", "Redis"),
		person("Quarter", "Go"),
	}
	criteria := matching.Criteria{Skills: []string{"Go", "SQL", "Kafka", "Redis"}}

	resp, err := New(&fakeRepo{candidates: pool}, WithMinScore(0.5)).
		Search(context.Background(), Request{Criteria: criteria}, Pagination{})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Full", resp.Results[0].CandidateName)

	resp, err = New(&fakeRepo{candidates: pool}).
		Search(context.Background(), Request{Criteria: criteria}, Pagination{})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
}

func TestSearch_Validation(t *testing.T) {
	repo := &fakeRepo{candidates: []storage.Candidate{person("A", "Go")}}
	o := New(repo)
	skills := matching.Criteria{Skills: []string{"Go"}}

	tests := []struct {
		name string
		req  Request
		page Pagination
	}{
		{name: "negative offset", req: Request{Criteria: skills}, page: Pagination{Offset: -1}},
		{name: "negative limit", req: Request{Criteria: skills}, page: Pagination{Limit: -5}},
		{name: "limit too large", req: Request{Criteria: skills}, page: Pagination{Limit: MaxPageLimit + 1}},
		{name: "nothing to search for", req: Request{Query: "   "}},
		{name: "location only", req: Request{Criteria: matching.Criteria{Locations: []string{"Berlin"}}}},
		{name: "max experience only", req: Request{Criteria: matching.Criteria{MaxExperienceYears: ptr(10.0)}}},
		{name: "stop words only", req: Request{Query: "the and of"}},
		{name: "min above max", req: Request{Criteria: matching.Criteria{
			MinExperienceYears: ptr(5.0), MaxExperienceYears: ptr(2.0),
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Search(context.Background(), tt.req, tt.page)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Zero(t, repo.poolCalls)
	assert.Empty(t, repo.history)
}

func TestSearch_FilterOnlyCriteriaNeedQueryText(t *testing.T) {
	berlin := person("Berlin Dev", "Go")
	berlin.Location = "Berlin"
	repo := &fakeRepo{candidates: []storage.Candidate{berlin}}

	resp, err := New(repo).Search(context.Background(), Request{
		Query:    "go developer",
		Criteria: matching.Criteria{Locations: []string{"Berlin"}},
	}, Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, []string{"Berlin"}, repo.filters[0].Locations)
}

func TestSearch_PoolFilter(t *testing.T) {
	repo := &fakeRepo{candidates: []storage.Candidate{person("A", "Go")}}
	_, err := New(repo).Search(context.Background(), Request{
		Criteria: matching.Criteria{
			Skills:             []string{"Go"},
			Locations:          []string{"Berlin"},
			Companies:          []string{"Acme"},
			Departments:        []string{"Platform"},
			MaxExperienceYears: ptr(8.0),
		},
		AvailableOnly: true,
	}, Pagination{})
	require.NoError(t, err)

	require.Len(t, repo.filters, 1)
	f := repo.filters[0]
	assert.Equal(t, []string{"Berlin"}, f.Locations)
	assert.Equal(t, []string{"Acme"}, f.Companies)
	assert.Equal(t, []string{"Platform"}, f.Departments)
	assert.Equal(t, 8.0, *f.MaxExperienceYears)
	assert.True(t, f.AvailableOnly)
	assert.False(t, f.AnyResumeStatus)
}

func TestSearch_Interpreter(t *testing.T) {
	senior := withYears(person("Senior", "Python"), 8)
	junior := withYears(person("Junior", "Python"), 1)
	repo := &fakeRepo{candidates: []storage.Candidate{junior, senior}}
	interp := &fakeInterpreter{in: llm.Interpretation{
		Criteria:  matching.Criteria{Skills: []string{"Python"}, MinExperienceYears: ptr(5.0)},
		Summary:   "Senior Python engineers",
		Reasoning: "senior implies 5+ years",
	}}

	resp, err := New(repo, WithInterpreter(interp)).Search(context.Background(),
		Request{Query: "senior python engineers", Criteria: matching.Criteria{Locations: []string{"Remote"}}}, Pagination{})
	require.NoError(t, err)

	assert.Equal(t, 1, interp.calls)
	assert.Equal(t, "Senior Python engineers", resp.Interpretation)
	assert.Equal(t, "senior implies 5+ years", resp.Reasoning)
	assert.Equal(t, []string{"Remote"}, resp.Criteria.Locations)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Senior", resp.Results[0].CandidateName)
	assert.Greater(t, resp.Results[0].Score, resp.Results[1].Score)
}

func TestSearch_InterpreterSkippedForStructuredCriteria(t *testing.T) {
	interp := &fakeInterpreter{}
	_, err := New(&fakeRepo{}, WithInterpreter(interp)).Search(context.Background(),
		Request{Query: "anything", Criteria: matching.Criteria{Skills: []string{"Go"}}}, Pagination{})
	require.NoError(t, err)
	assert.Zero(t, interp.calls)
}

func TestSearch_KeywordFallback(t *testing.T) {
	kafka := person("Kafka Person", "Kafka", "Java")
	other := person("Other", "Excel")
	repo := &fakeRepo{candidates: []storage.Candidate{kafka, other}}

	for name, interp := range map[string]Interpreter{
		"no interpreter":    nil,
		"interpreter fails": &fakeInterpreter{err: errors.New("timeout")},
		"empty reading":     &fakeInterpreter{err: llm.ErrEmptyInterpretation},
	} {
		t.Run(name, func(t *testing.T) {
			o := New(repo, WithInterpreter(interp))
			resp, err := o.Search(context.Background(), Request{Query: "Find someone with Kafka and Java"}, Pagination{})
			require.NoError(t, err)

			assert.Equal(t, []string{"kafka", "java"}, resp.Criteria.Keywords)
			require.Len(t, resp.Results, 1)
			assert.Equal(t, kafka.ID, resp.Results[0].CandidateID)
			assert.ElementsMatch(t, []string{"kafka", "java"}, resp.Results[0].Highlights.MatchedKeywords)
			assert.Contains(t, resp.Interpretation, "kafka")
		})
	}
}

func TestSearch_Cache(t *testing.T) {
	rc, _ := newCache(t)
	repo := &fakeRepo{candidates: []storage.Candidate{person("A", "Go", "SQL")}}
	o := New(repo, WithCache(rc))

	first, err := o.Search(context.Background(), Request{Criteria: matching.Criteria{Skills: []string{"Go", "SQL"}}}, Pagination{})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	// Same request with the skill list reordered hits the cache.
	second, err := o.Search(context.Background(), Request{Criteria: matching.Criteria{Skills: []string{"SQL", "Go"}}}, Pagination{})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Results[0].CandidateID, second.Results[0].CandidateID)

	assert.Equal(t, 1, repo.poolCalls)
	assert.Len(t, repo.history, 2, "cache hits are audited too")

	// Case and padding of list values do not change the key.
	third, err := o.Search(context.Background(), Request{Criteria: matching.Criteria{Skills: []string{" sql", "GO "}}}, Pagination{})
	require.NoError(t, err)
	assert.True(t, third.Cached)
	assert.Equal(t, 1, repo.poolCalls)
}

func TestSearch_CacheOffline(t *testing.T) {
	rc, store := newCache(t)
	require.NoError(t, store.Close())

	repo := &fakeRepo{candidates: []storage.Candidate{person("A", "Go")}}
	o := New(repo, WithCache(rc))

	for i := 0; i < 2; i++ {
		resp, err := o.Search(context.Background(), Request{Criteria: matching.Criteria{Skills: []string{"Go"}}}, Pagination{})
		require.NoError(t, err)
		assert.False(t, resp.Cached)
		assert.Len(t, resp.Results, 1)
	}
	assert.Equal(t, 2, repo.poolCalls)
}

func TestSearch_Errors(t *testing.T) {
	repo := &fakeRepo{poolErr: errors.New("connection reset")}
	_, err := New(repo).Search(context.Background(), Request{Criteria: matching.Criteria{Skills: []string{"Go"}}}, Pagination{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, repo.history)
}

func TestSearch_HistoryFailureIsSwallowed(t *testing.T) {
	repo := &fakeRepo{
		candidates: []storage.Candidate{person("A", "Go")},
		historyErr: errors.New("disk full"),
	}
	resp, err := New(repo).Search(context.Background(), Request{Criteria: matching.Criteria{Skills: []string{"Go"}}}, Pagination{})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.Len(t, repo.history, 1)
}

func TestSearch_HistorySurvivesCancellation(t *testing.T) {
	repo := &fakeRepo{candidates: []storage.Candidate{person("A", "Go")}}
	rc, _ := newCache(t)
	o := New(repo, WithCache(rc))

	ctx := context.Background()
	_, err := o.Search(ctx, Request{Criteria: matching.Criteria{Skills: []string{"Go"}}}, Pagination{})
	require.NoError(t, err)

	// A cancelled caller served from cache still gets its audit record.
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	resp, err := o.Search(cancelled, Request{Criteria: matching.Criteria{Skills: []string{"Go"}}}, Pagination{})
	require.NoError(t, err)
	assert.False(t, resp.Cached, "cancelled context makes the cache read fail")

	require.Len(t, repo.history, 2)
	assert.Equal(t, []error{nil, nil}, repo.auditCtxErrs, "audit context must be live while the entry is written")
}

func TestSearch_ParallelScoringMatchesSequential(t *testing.T) {
	var pool []storage.Candidate
	skills := []string{"Go", "SQL", "Kafka", "Redis", "Docker"}
	for i := 0; i < 1000; i++ {
		pool = append(pool, person(fmt.Sprintf("c%04d", i), skills[:1+i%len(skills)]...))
	}
	criteria := matching.Criteria{Skills: skills}

	seq, err := New(&fakeRepo{candidates: pool}, WithWorkers(1)).
		Search(context.Background(), Request{Criteria: criteria}, Pagination{Limit: MaxPageLimit})
	require.NoError(t, err)
	par, err := New(&fakeRepo{candidates: pool}, WithWorkers(7)).
		Search(context.Background(), Request{Criteria: criteria}, Pagination{Limit: MaxPageLimit})
	require.NoError(t, err)

	assert.Equal(t, 1000, seq.Total)
	assert.Equal(t, seq.Total, par.Total)
	require.Equal(t, len(seq.Results), len(par.Results))
	for i := range seq.Results {
		assert.Equal(t, seq.Results[i].CandidateID, par.Results[i].CandidateID)
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "Find someone with Kafka and Java", want: []string{"kafka", "java"}},
		{in: "C++ or C# developers, node.js", want: []string{"c++", "c#", "developers", "node.js"}},
		{in: "Go go GO", want: []string{"go"}},
		{in: "a the of", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Keywords(tt.in))
		})
	}
}
