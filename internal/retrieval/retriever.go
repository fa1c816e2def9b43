// Package retrieval ranks stored chunks against a query by fusing vector
// similarity with keyword matching.
package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/warraqio/warraq/internal/model"
	errs "github.com/warraqio/warraq/internal/pkg/errors"
	"github.com/warraqio/warraq/internal/pkg/logutil"
)

const queryTaskType = "RETRIEVAL_QUERY"

// Embedder turns text into a vector. *ai.Manager satisfies this.
type Embedder interface {
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)
}

// ChunkStore is the slice of the chunk repository retrieval needs.
// NearestNeighbors must return chunks ordered nearest first.
type ChunkStore interface {
	NearestNeighbors(ctx context.Context, vector []float32, limit int, documentID string, filter model.ChunkFilter) ([]model.Chunk, error)
	ListCandidates(ctx context.Context, documentID string, filter model.ChunkFilter) ([]model.Chunk, error)
}

type Options struct {
	VectorWeight  float64
	KeywordWeight float64
}

type Retriever struct {
	embedder      Embedder
	store         ChunkStore
	vectorWeight  float64
	keywordWeight float64
}

func New(embedder Embedder, store ChunkStore, opts Options) *Retriever {
	vw, kw := opts.VectorWeight, opts.KeywordWeight
	if vw <= 0 && kw <= 0 {
		vw, kw = 0.7, 0.3
	}
	return &Retriever{
		embedder:      embedder,
		store:         store,
		vectorWeight:  vw,
		keywordWeight: kw,
	}
}

// Retrieve returns the topK chunks most relevant to query, scoped to
// documentID when non-empty. Each candidate path fetches up to 2*topK
// chunks and degrades to an empty list on failure instead of failing the
// whole call.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, documentID string, filter model.ChunkFilter) ([]model.Chunk, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: top k must be at least 1", errs.ErrInvalid)
	}
	limit := topK * 2
	vector := r.vectorCandidates(ctx, query, limit, documentID, filter)
	keyword := r.keywordCandidates(ctx, query, limit, documentID, filter)
	return fuse(vector, keyword, r.vectorWeight, r.keywordWeight, topK), nil
}

func (r *Retriever) vectorCandidates(ctx context.Context, query string, limit int, documentID string, filter model.ChunkFilter) []model.Chunk {
	if r.embedder == nil {
		return nil
	}
	logger := logutil.GetLogger(ctx)
	vec, err := r.embedder.Embed(ctx, query, queryTaskType)
	if err != nil {
		logger.Warn("embed query failed", zap.Error(err))
		return nil
	}
	chunks, err := r.store.NearestNeighbors(ctx, vec, limit, documentID, filter)
	if err != nil {
		logger.Warn("vector search failed", zap.Error(err))
		return nil
	}
	return chunks
}

func (r *Retriever) keywordCandidates(ctx context.Context, query string, limit int, documentID string, filter model.ChunkFilter) []model.Chunk {
	candidates, err := r.store.ListCandidates(ctx, documentID, filter)
	if err != nil {
		logutil.GetLogger(ctx).Warn("keyword candidate scan failed", zap.Error(err))
		return nil
	}
	return rankByKeywords(candidates, queryTokens(query), limit)
}
