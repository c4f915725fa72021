package search

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"talent-search/internal/matching"
	"talent-search/internal/storage"
)

// scoreFunc scores one candidate and reports whether the result is kept.
type scoreFunc func(storage.Candidate) (matching.Result, bool)

// scorePool runs score over the pool. Large pools are split into contiguous
// chunks, one per worker; every worker fills its own slice and the slices are
// concatenated once all workers are done.
func (o *Orchestrator) scorePool(pool []storage.Candidate, score scoreFunc) []matching.Result {
	workers := o.workers
	if len(pool) < parallelThreshold || workers <= 1 {
		return scoreRange(pool, score)
	}

	chunk := (len(pool) + workers - 1) / workers
	partials := make([][]matching.Result, workers)

	var g errgroup.Group
	g.SetLimit(workers)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= len(pool) {
			break
		}
		hi := min(lo+chunk, len(pool))
		g.Go(func() error {
			partials[w] = scoreRange(pool[lo:hi], score)
			return nil
		})
	}
	// Workers never fail; the group only bounds concurrency.
	g.Wait()

	var n int
	for _, p := range partials {
		n += len(p)
	}
	results := make([]matching.Result, 0, n)
	for _, p := range partials {
		results = append(results, p...)
	}
	return results
}

func scoreRange(pool []storage.Candidate, score scoreFunc) []matching.Result {
	var out []matching.Result
	for _, c := range pool {
		if r, ok := score(c); ok {
			out = append(out, r)
		}
	}
	return out
}

// rank orders results by score, then name, then id, so equal scores page stably.
func rank(results []matching.Result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.CandidateName != b.CandidateName {
			return a.CandidateName < b.CandidateName
		}
		return a.CandidateID.String() < b.CandidateID.String()
	})
}

func paginate(results []matching.Result, offset, limit int) []matching.Result {
	if offset >= len(results) {
		return []matching.Result{}
	}
	end := min(offset+limit, len(results))
	return results[offset:end]
}
