// Package search ranks notes against a free-text query by embedding similarity.
package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"knowledge-hub-be/internal/entity"
	"knowledge-hub-be/pkg/embedding"

	"github.com/patrickmn/go-cache"
)

const DefaultTopK = 10

type ScoredNote struct {
	Note  *entity.Note
	Score float64
}

// Ranker orders candidate notes by relevance to a query. The linear scan below can be
// swapped for an index without touching callers.
type Ranker interface {
	Search(ctx context.Context, query string, candidates []*entity.Note, topK int) []*entity.Note
	SearchScored(ctx context.Context, query string, candidates []*entity.Note, topK int) []ScoredNote
}

// QueryEmbedder is the slice of the enrichment service the ranker needs.
type QueryEmbedder interface {
	GenerateEmbedding(ctx context.Context, text string) *entity.EmbeddingResult
}

type LinearRanker struct {
	embedder QueryEmbedder
	cache    *cache.Cache
}

var _ Ranker = (*LinearRanker)(nil)

// NewLinearRanker keeps real (non-fallback) query vectors for cacheTTL. A zero TTL disables caching.
func NewLinearRanker(embedder QueryEmbedder, cacheTTL time.Duration) *LinearRanker {
	r := &LinearRanker{embedder: embedder}
	if cacheTTL > 0 {
		r.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return r
}

func (r *LinearRanker) Search(ctx context.Context, query string, candidates []*entity.Note, topK int) []*entity.Note {
	if isBlank(query) {
		return candidates
	}
	scored := r.SearchScored(ctx, query, candidates, topK)
	out := make([]*entity.Note, len(scored))
	for i, s := range scored {
		out[i] = s.Note
	}
	return out
}

// SearchScored returns the topK candidates with their cosine score. A blank query returns
// every candidate, in input order, with score 0.
func (r *LinearRanker) SearchScored(ctx context.Context, query string, candidates []*entity.Note, topK int) []ScoredNote {
	if isBlank(query) {
		out := make([]ScoredNote, len(candidates))
		for i, n := range candidates {
			out[i] = ScoredNote{Note: n}
		}
		return out
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	queryVec := r.queryEmbedding(ctx, query)

	scored := make([]ScoredNote, len(candidates))
	for i, n := range candidates {
		scored[i] = ScoredNote{Note: n, Score: embedding.CosineSimilarity(queryVec, n.Embedding)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

func (r *LinearRanker) queryEmbedding(ctx context.Context, query string) []float32 {
	key := strings.TrimSpace(query)
	if r.cache != nil {
		if v, found := r.cache.Get(key); found {
			return v.([]float32)
		}
	}

	res := r.embedder.GenerateEmbedding(ctx, key)
	if r.cache != nil && !res.Fallback {
		r.cache.Set(key, res.Vector, cache.DefaultExpiration)
	}
	return res.Vector
}

// isBlank treats whitespace-only queries like the empty query.
func isBlank(query string) bool {
	return strings.TrimSpace(query) == ""
}
