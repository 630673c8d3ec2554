package search

import (
	"sort"

	domdoc "github.com/kailas-cloud/mediasearch/internal/domain/document"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/result"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// Weights of the fused score.
const (
	rrfWeight       = 0.6
	relevanceWeight = 0.4
)

// fuse merges per-query rankings via Reciprocal Rank Fusion.
// rrf(d) = sum of 1/(k + rank_i(d)) with 1-based ranks, and
// combined(d) = 0.6*rrf(d) + 0.4*mean(score_i(d)).
// Ties on combined are broken by query count, then by id.
// Returns at most limit results and the number of distinct documents seen.
func fuse(lists [][]result.Ranked, limit int) ([]result.Fused, int) {
	type scored struct {
		doc      domdoc.Document
		backend  result.Backend
		rrf      float64
		scoreSum float64
		count    int
	}

	merged := make(map[string]*scored)

	for _, list := range lists {
		seen := make(map[string]struct{}, len(list))
		for rank, r := range list {
			if _, dup := seen[r.ID()]; dup {
				continue
			}
			seen[r.ID()] = struct{}{}

			s := 1.0 / float64(rrfK+rank+1)
			if existing, ok := merged[r.ID()]; ok {
				existing.rrf += s
				existing.scoreSum += r.Score()
				existing.count++
				continue
			}
			merged[r.ID()] = &scored{
				doc: r.Document(), backend: r.Backend(),
				rrf: s, scoreSum: r.Score(), count: 1,
			}
		}
	}

	results := make([]result.Fused, 0, len(merged))
	for _, s := range merged {
		avg := s.scoreSum / float64(s.count)
		combined := rrfWeight*s.rrf + relevanceWeight*avg
		results = append(results, result.NewFused(s.doc, s.backend, s.rrf, avg, combined, s.count))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Combined() != results[j].Combined() {
			return results[i].Combined() > results[j].Combined()
		}
		if results[i].QueryCount() != results[j].QueryCount() {
			return results[i].QueryCount() > results[j].QueryCount()
		}
		return results[i].ID() < results[j].ID()
	})

	total := len(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, total
}
