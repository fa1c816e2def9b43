package retrieval

import (
	"regexp"
	"sort"
	"strings"

	"github.com/warraqio/warraq/internal/model"
	"github.com/warraqio/warraq/internal/textutil"
)

var punctRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// normalizeForMatch is applied to both sides of the match, so a bare query
// still hits vocalized Arabic text.
func normalizeForMatch(s string) string {
	s = textutil.RemoveDiacritics(s)
	s = punctRe.ReplaceAllString(s, " ")
	return strings.ToLower(s)
}

// queryTokens whitespace-splits the query and normalizes each token,
// dropping tokens that normalize away entirely.
func queryTokens(query string) []string {
	fields := strings.Fields(query)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.TrimSpace(normalizeForMatch(f))
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// keywordScore sums the substring occurrence count of every token in the
// normalized content.
func keywordScore(content string, tokens []string) int {
	norm := normalizeForMatch(content)
	score := 0
	for _, tok := range tokens {
		score += strings.Count(norm, tok)
	}
	return score
}

// rankByKeywords orders candidates by descending score, keeping the incoming
// order for equal scores, and returns up to limit of them. Zero-score
// candidates are kept.
func rankByKeywords(candidates []model.Chunk, tokens []string, limit int) []model.Chunk {
	type scored struct {
		chunk model.Chunk
		score int
	}
	list := make([]scored, 0, len(candidates))
	for _, ch := range candidates {
		list = append(list, scored{chunk: ch, score: keywordScore(ch.Content, tokens)})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].score > list[j].score })
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]model.Chunk, 0, len(list))
	for _, s := range list {
		out = append(out, s.chunk)
	}
	return out
}
