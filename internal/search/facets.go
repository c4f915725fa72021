package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"talent-search/internal/cache"
	"talent-search/internal/matching"
	"talent-search/internal/storage"
)

// Facet is a filter value and the number of candidates carrying it.
type Facet struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facets are the filter values offered to recruiters, most common first.
type Facets struct {
	Skills          []Facet `json:"skills"`
	Companies       []Facet `json:"companies"`
	Departments     []Facet `json:"departments"`
	Locations       []Facet `json:"locations"`
	TotalCandidates int     `json:"total_candidates"`
}

// FilterOptions aggregates skills, companies, departments and locations over
// the eligible pool.
func (o *Orchestrator) FilterOptions(ctx context.Context) (Facets, error) {
	key, keyErr := cache.Key(cache.NamespaceFilters, struct {
		Limit int `json:"limit"`
	}{facetLimit})

	var facets Facets
	if keyErr == nil && o.cache.Get(ctx, key, &facets) {
		return facets, nil
	}

	pool, err := o.repo.FetchCandidatePool(ctx, storage.PoolFilter{})
	if err != nil {
		return Facets{}, fmt.Errorf("fetch candidate pool: %w", err)
	}

	skills, companies, departments, locations := newCounter(), newCounter(), newCounter(), newCounter()
	for _, c := range pool {
		p := matching.ProfileOf(c)
		skills.addAll(p.Skills)
		companies.addAll(p.Companies)
		departments.addAll(p.Departments)
		locations.addAll([]string{c.Location})
	}

	facets = Facets{
		Skills:          skills.top(facetLimit),
		Companies:       companies.top(facetLimit),
		Departments:     departments.top(facetLimit),
		Locations:       locations.top(facetLimit),
		TotalCandidates: len(pool),
	}

	if keyErr == nil {
		o.cache.Set(ctx, key, facets, o.cache.TTL(cache.NamespaceFilters))
	}
	return facets, nil
}

// counter counts case-insensitive values, reporting the first spelling seen.
type counter struct {
	counts  map[string]int
	display map[string]string
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}, display: map[string]string{}}
}

// addAll counts each distinct value of one candidate once.
func (c *counter) addAll(values []string) {
	seen := map[string]struct{}{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		k := strings.ToLower(v)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := c.display[k]; !ok {
			c.display[k] = v
		}
		c.counts[k]++
	}
}

func (c *counter) top(n int) []Facet {
	out := make([]Facet, 0, len(c.counts))
	for k, count := range c.counts {
		out = append(out, Facet{Value: c.display[k], Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.ToLower(out[i].Value) < strings.ToLower(out[j].Value)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
