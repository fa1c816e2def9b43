package retrieval

import (
	"sort"

	"github.com/warraqio/warraq/internal/model"
)

// fuse merges two ranked lists into one ordering. The chunk at position i of
// a list of length L contributes weight*(L-i)/L, so the head of a list is
// worth the full weight and the tail approaches zero. Scores for chunks
// appearing in both lists accumulate. Equal scores keep first-seen order,
// vector list first.
func fuse(vector, keyword []model.Chunk, vectorWeight, keywordWeight float64, topK int) []model.Chunk {
	type scored struct {
		chunk model.Chunk
		score float64
	}
	index := make(map[string]int, len(vector)+len(keyword))
	entries := make([]scored, 0, len(vector)+len(keyword))
	accumulate := func(list []model.Chunk, weight float64) {
		total := len(list)
		for i, ch := range list {
			part := weight * float64(total-i) / float64(total)
			at, ok := index[ch.ID]
			if !ok {
				at = len(entries)
				index[ch.ID] = at
				entries = append(entries, scored{chunk: ch})
			}
			entries[at].score += part
		}
	}
	accumulate(vector, vectorWeight)
	accumulate(keyword, keywordWeight)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].score > entries[j].score })
	if len(entries) > topK {
		entries = entries[:topK]
	}
	out := make([]model.Chunk, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.chunk)
	}
	return out
}
