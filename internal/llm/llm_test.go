package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	response string
	err      error
	calls    atomic.Int32
}

func (g *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls.Add(1)
	return g.response, g.err
}

func TestService_ChatProvider(t *testing.T) {
	var gotAuth, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"skills\":[\"Go\"]}"}}]}`))
	}))
	defer srv.Close()

	svc := NewService(Options{Provider: "groq", APIKey: "k", Model: "llama", BaseURL: srv.URL})
	out, err := svc.Generate(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, `{"skills":["Go"]}`, out)
	assert.Equal(t, "Bearer k", gotAuth)
	assert.Equal(t, "llama", gotModel)
}

func TestService_Ollama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"{}"}`))
	}))
	defer srv.Close()

	svc := NewService(Options{Provider: "ollama", Model: "llama3", BaseURL: srv.URL})
	out, err := svc.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
}

func TestService_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewService(Options{Provider: "openai", BaseURL: srv.URL}).Generate(context.Background(), "x")
	assert.ErrorContains(t, err, "429")

	_, err = NewService(Options{Provider: "none"}).Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrProviderNotConfigured)

	_, err = NewService(Options{}).Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
}

func TestQueryInterpreter_Interpret(t *testing.T) {
	gen := &stubGenerator{response: "```json\n" + `{
		"skills": ["Python", "FastAPI"],
		"companies": [],
		"departments": ["Platform"],
		"locations": ["Berlin"],
		"min_experience": 3,
		"max_experience": -1,
		"interpretation": "Python backend engineers in Berlin",
		"reasoning": "mentions FastAPI"
	}` + "\n```"}

	qi := NewQueryInterpreter(gen, time.Minute, nil)
	in, err := qi.Interpret(context.Background(), "senior python fastapi devs in Berlin")
	require.NoError(t, err)

	assert.Equal(t, []string{"Python", "FastAPI"}, in.Criteria.Skills)
	assert.Equal(t, []string{"Platform"}, in.Criteria.Departments)
	assert.Equal(t, []string{"Berlin"}, in.Criteria.Locations)
	require.NotNil(t, in.Criteria.MinExperienceYears)
	assert.Equal(t, 3.0, *in.Criteria.MinExperienceYears)
	require.NotNil(t, in.Criteria.MaxExperienceYears)
	assert.Equal(t, 0.0, *in.Criteria.MaxExperienceYears)
	assert.Equal(t, "Python backend engineers in Berlin", in.Summary)
	assert.Equal(t, "mentions FastAPI", in.Reasoning)

	// Same query modulo case and spacing is served from the memo.
	_, err = qi.Interpret(context.Background(), "Senior  Python FastAPI devs in berlin")
	require.NoError(t, err)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestQueryInterpreter_Failures(t *testing.T) {
	tests := []struct {
		name    string
		gen     *stubGenerator
		query   string
		wantErr error
	}{
		{name: "blank query", gen: &stubGenerator{}, query: "  ", wantErr: ErrEmptyInterpretation},
		{name: "empty criteria", gen: &stubGenerator{response: `{"skills":[],"interpretation":"?"}`}, query: "hmm", wantErr: ErrEmptyInterpretation},
		{name: "provider down", gen: &stubGenerator{err: ErrProviderNotConfigured}, query: "go devs", wantErr: ErrProviderNotConfigured},
		{name: "garbage", gen: &stubGenerator{response: "not json"}, query: "go devs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewQueryInterpreter(tt.gen, 0, nil).Interpret(context.Background(), tt.query)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}

func TestMemoExpiry(t *testing.T) {
	m := newMemo(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.set("Go devs", Interpretation{Summary: "go"})
	got, ok := m.get("go   DEVS")
	require.True(t, ok)
	assert.Equal(t, "go", got.Summary)

	now = now.Add(2 * time.Minute)
	_, ok = m.get("go devs")
	assert.False(t, ok)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripFences(`  {"a":1} `))
}
