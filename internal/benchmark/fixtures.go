package benchmark

import (
	"context"
	"sort"

	"github.com/warraqio/warraq/internal/model"
)

// flatSample is plain prose with no structural markers, so the auto
// strategy must chunk it fixed.
const flatSample = `Search engines index documents ahead of time so queries can be answered within milliseconds.

Inverted indexes map every term to the list of documents that contain it, sorted for fast merging.

Ranking functions weigh term frequency against document length to keep long pages from dominating.

Caching popular queries shaves latency further because result lists rarely change between crawls.`

// structuredSample carries markdown headings with one marker word per
// section, so heading attribution can be asserted per chunk.
const structuredSample = `# Machine Learning

Supervised models fit labelled examples and generalize to unseen inputs. Reinforcement agents instead learn policies from reward signals gathered through interaction.

## Deep Learning

Convolutional networks exploit spatial locality in images. Recurrent and attention based architectures capture order in text, which made large scale translation practical.`

const (
	arabicAIChunkID = "bench_ar_ai"
	vectorChunkID   = "bench_vec"
	keywordChunkID  = "bench_kw"
)

func bilingualChunks() []model.Chunk {
	return []model.Chunk{
		{
			ID:         "bench_en_ai",
			DocumentID: "bench_mixed",
			ChunkIndex: 0,
			Content:    "Artificial intelligence lets computer systems learn from data instead of fixed rules.",
		},
		{
			ID:         "bench_ar_dew",
			DocumentID: "bench_mixed",
			ChunkIndex: 1,
			Content:    "تتكاثف قطرات الندى على العشب في ليالي الصيف الباردة قرب الوديان.",
			HasArabic:  true,
		},
		{
			ID:            arabicAIChunkID,
			DocumentID:    "bench_mixed",
			ChunkIndex:    2,
			Content:       "الذَّكَاءُ الاصْطِنَاعِيُّ هُوَ قدرة الأنظمة على التعلم، ويدخل الذكاء الاصطناعي في البحث والترجمة.",
			HasArabic:     true,
			HasDiacritics: true,
		},
		{
			ID:         "bench_en_index",
			DocumentID: "bench_mixed",
			ChunkIndex: 3,
			Content:    "Inverted indexes answer term lookups without scanning every document.",
		},
	}
}

// fusionChunks pair a vector favourite with a keyword favourite: the first
// embeds exactly on the query axis but shares no query terms, the second
// matches every query term but sits off-axis.
func fusionChunks() []model.Chunk {
	return []model.Chunk{
		{
			ID:         vectorChunkID,
			DocumentID: "bench_fusion",
			ChunkIndex: 0,
			Content:    "Graph databases store nodes and edges for traversal workloads.",
			Embedding:  []float32{1, 0},
		},
		{
			ID:         keywordChunkID,
			DocumentID: "bench_fusion",
			ChunkIndex: 1,
			Content:    "Hybrid retrieval blends vector search with keyword search.",
			Embedding:  []float32{0.6, 0.8},
		},
	}
}

// memStore serves fixture chunks in place of the database. documentID and
// filter arguments are ignored.
type memStore struct {
	chunks []model.Chunk
}

func (s *memStore) NearestNeighbors(_ context.Context, vector []float32, limit int, _ string, _ model.ChunkFilter) ([]model.Chunk, error) {
	type scored struct {
		chunk model.Chunk
		score float64
	}
	list := make([]scored, 0, len(s.chunks))
	for _, ch := range s.chunks {
		if len(ch.Embedding) == 0 {
			continue
		}
		list = append(list, scored{chunk: ch, score: dot(vector, ch.Embedding)})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].score > list[j].score })
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]model.Chunk, 0, len(list))
	for _, sc := range list {
		out = append(out, sc.chunk)
	}
	return out, nil
}

func (s *memStore) ListCandidates(_ context.Context, _ string, _ model.ChunkFilter) ([]model.Chunk, error) {
	return s.chunks, nil
}

type fixedEmbedder struct {
	vec []float32
}

func (e fixedEmbedder) Embed(_ context.Context, _ string, _ string) ([]float32, error) {
	return e.vec, nil
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
