// Package benchmark runs self-checks over built-in bilingual sample texts.
// The checks exercise the chunking and retrieval paths with controlled
// fixtures and no database, so the endpoint can answer on a fresh deploy.
package benchmark

import (
	"context"
	"strings"
	"time"

	"github.com/warraqio/warraq/internal/chunker"
	"github.com/warraqio/warraq/internal/model"
	"github.com/warraqio/warraq/internal/retrieval"
)

// Scores below passThreshold mark a check as failed.
const passThreshold = 70.0

type Result struct {
	Name      string  `json:"name"`
	Passed    bool    `json:"passed"`
	Score     float64 `json:"score"`
	ElapsedMs int64   `json:"elapsed_ms"`
}

type Suite struct{}

func NewSuite() *Suite {
	return &Suite{}
}

type check struct {
	name string
	fn   func(ctx context.Context) float64
}

func (s *Suite) Run(ctx context.Context) []Result {
	checks := []check{
		{"chunk_index_contiguity", checkChunkIndexContiguity},
		{"paragraph_preservation", checkParagraphPreservation},
		{"heading_attribution", checkHeadingAttribution},
		{"strategy_selection", checkStrategySelection},
		{"arabic_keyword_relevance", checkArabicKeywordRelevance},
		{"fusion_ordering", checkFusionOrdering},
	}
	results := make([]Result, 0, len(checks))
	for _, c := range checks {
		start := time.Now()
		score := c.fn(ctx)
		results = append(results, Result{
			Name:      c.name,
			Passed:    score >= passThreshold,
			Score:     score,
			ElapsedMs: time.Since(start).Milliseconds(),
		})
	}
	return results
}

// checkChunkIndexContiguity verifies that fixed chunking numbers its output
// 0..n-1 without gaps and stamps every chunk with the document id.
func checkChunkIndexContiguity(_ context.Context) float64 {
	fixed, err := chunker.NewFixed(120, 10)
	if err != nil {
		return 0
	}
	doc := &model.Document{ID: "bench_flat", Content: flatSample}
	chunks := fixed.Chunk(doc)
	if len(chunks) < 2 {
		return 0
	}
	good := 0
	for i, ch := range chunks {
		if ch.ChunkIndex == i && ch.Content != "" && ch.DocumentID == doc.ID {
			good++
		}
	}
	return float64(good) / float64(len(chunks)) * 100
}

// checkParagraphPreservation verifies that fixed chunking never cuts inside
// a paragraph: each source paragraph must reappear intact in some chunk.
func checkParagraphPreservation(_ context.Context) float64 {
	fixed, err := chunker.NewFixed(512, 50)
	if err != nil {
		return 0
	}
	paragraphs := strings.Split(flatSample, "\n\n")
	doc := &model.Document{ID: "bench_flat", Content: flatSample}
	chunks := fixed.Chunk(doc)
	if len(chunks) == 0 {
		return 0
	}
	preserved := 0
	for _, para := range paragraphs {
		for _, ch := range chunks {
			if strings.Contains(ch.Content, para) {
				preserved++
				break
			}
		}
	}
	return float64(preserved) / float64(len(paragraphs)) * 100
}

// checkHeadingAttribution chunks the structured sample dynamically and
// verifies that marker sentences end up in chunks attributed to the heading
// they sit under.
func checkHeadingAttribution(_ context.Context) float64 {
	dyn, err := chunker.NewDynamic(100, 0)
	if err != nil {
		return 0
	}
	doc := &model.Document{ID: "bench_structured", Content: structuredSample}
	chunks := dyn.Chunk(doc)

	markers := map[string]string{
		"Reinforcement": "# Machine Learning",
		"Convolutional": "## Deep Learning",
	}
	total, good := 0, 0
	for marker, heading := range markers {
		found := false
		for _, ch := range chunks {
			if !strings.Contains(ch.Content, marker) {
				continue
			}
			found = true
			total++
			if ch.Heading == heading && ch.ChunkType == model.ChunkTypeSection {
				good++
			}
		}
		if !found {
			return 0
		}
	}
	return float64(good) / float64(total) * 100
}

// checkStrategySelection verifies the auto strategy picks dynamic for
// structured text and fixed for flat prose.
func checkStrategySelection(_ context.Context) float64 {
	correct := 0
	if chunker.Select(structuredSample) == model.StrategyDynamic {
		correct++
	}
	if chunker.Select(flatSample) == model.StrategyFixed {
		correct++
	}
	return float64(correct) / 2 * 100
}

// checkArabicKeywordRelevance runs keyword-only retrieval over a mixed
// corpus and expects the vocalized Arabic chunk about the query topic to
// rank first. The fixture text carries diacritics while the query does not,
// so the match also proves diacritic-insensitive ranking.
func checkArabicKeywordRelevance(ctx context.Context) float64 {
	store := &memStore{chunks: bilingualChunks()}
	r := retrieval.New(nil, store, retrieval.Options{})
	got, err := r.Retrieve(ctx, "ما هو الذكاء الاصطناعي؟", 3, "", model.ChunkFilter{})
	if err != nil || len(got) == 0 {
		return 0
	}
	if got[0].ID == arabicAIChunkID {
		return 100
	}
	return 0
}

// checkFusionOrdering verifies that both ranking signals reach the fused
// order: with vector-heavy weights the vector favourite wins, with the
// weights flipped the keyword favourite wins.
func checkFusionOrdering(ctx context.Context) float64 {
	store := &memStore{chunks: fusionChunks()}
	emb := fixedEmbedder{vec: []float32{1, 0}}
	query := "hybrid retrieval blends keyword"

	score := 0.0
	vectorHeavy := retrieval.New(emb, store, retrieval.Options{VectorWeight: 0.7, KeywordWeight: 0.3})
	if got, err := vectorHeavy.Retrieve(ctx, query, 2, "", model.ChunkFilter{}); err == nil && len(got) > 0 && got[0].ID == vectorChunkID {
		score += 50
	}
	keywordHeavy := retrieval.New(emb, store, retrieval.Options{VectorWeight: 0.3, KeywordWeight: 0.7})
	if got, err := keywordHeavy.Retrieve(ctx, query, 2, "", model.ChunkFilter{}); err == nil && len(got) > 0 && got[0].ID == keywordChunkID {
		score += 50
	}
	return score
}
