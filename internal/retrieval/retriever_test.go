package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warraqio/warraq/internal/model"
	errs "github.com/warraqio/warraq/internal/pkg/errors"
)

type fakeEmbedder struct {
	vec []float32
	err error

	gotText     string
	gotTaskType string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string, taskType string) ([]float32, error) {
	f.gotText = text
	f.gotTaskType = taskType
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

type fakeStore struct {
	nearest       []model.Chunk
	nearestErr    error
	candidates    []model.Chunk
	candidatesErr error

	gotVector   []float32
	gotLimit    int
	gotDocument string
	gotFilter   model.ChunkFilter
}

func (f *fakeStore) NearestNeighbors(_ context.Context, vector []float32, limit int, documentID string, filter model.ChunkFilter) ([]model.Chunk, error) {
	f.gotVector = vector
	f.gotLimit = limit
	f.gotDocument = documentID
	f.gotFilter = filter
	if f.nearestErr != nil {
		return nil, f.nearestErr
	}
	if len(f.nearest) > limit {
		return f.nearest[:limit], nil
	}
	return f.nearest, nil
}

func (f *fakeStore) ListCandidates(_ context.Context, _ string, _ model.ChunkFilter) ([]model.Chunk, error) {
	if f.candidatesErr != nil {
		return nil, f.candidatesErr
	}
	return f.candidates, nil
}

func chunk(id, content string) model.Chunk {
	return model.Chunk{ID: id, Content: content}
}

func resultIDs(chunks []model.Chunk) []string {
	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestRetrieveVectorOnly(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{0.1, 0.2}}
	store := &fakeStore{
		nearest: []model.Chunk{chunk("v1", "a"), chunk("v2", "b"), chunk("v3", "c"), chunk("v4", "d")},
	}
	arabic := true
	r := New(emb, store, Options{})

	got, err := r.Retrieve(context.Background(), "anything", 2, "doc-7", model.ChunkFilter{HasArabic: &arabic})
	require.NoError(t, err)
	require.Equal(t, []string{"v1", "v2"}, resultIDs(got))

	require.Equal(t, "anything", emb.gotText)
	require.Equal(t, "RETRIEVAL_QUERY", emb.gotTaskType)
	require.Equal(t, []float32{0.1, 0.2}, store.gotVector)
	require.Equal(t, 4, store.gotLimit)
	require.Equal(t, "doc-7", store.gotDocument)
	require.NotNil(t, store.gotFilter.HasArabic)
	require.True(t, *store.gotFilter.HasArabic)
}

func TestRetrieveChunkInBothPathsRanksFirst(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{1}}
	store := &fakeStore{
		nearest:    []model.Chunk{chunk("shared", "apple pie"), chunk("vonly", "x")},
		candidates: []model.Chunk{chunk("shared", "apple pie"), chunk("konly", "apple")},
	}
	r := New(emb, store, Options{})

	got, err := r.Retrieve(context.Background(), "apple", 3, "", model.ChunkFilter{})
	require.NoError(t, err)
	require.Equal(t, "shared", got[0].ID)
	require.Equal(t, []string{"shared", "vonly", "konly"}, resultIDs(got))
}

func TestRetrieveTieKeepsVectorFirst(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{1}}
	store := &fakeStore{
		nearest:    []model.Chunk{chunk("vec", "")},
		candidates: []model.Chunk{chunk("key", "match here")},
	}
	r := New(emb, store, Options{VectorWeight: 0.5, KeywordWeight: 0.5})

	got, err := r.Retrieve(context.Background(), "match", 2, "", model.ChunkFilter{})
	require.NoError(t, err)
	require.Equal(t, []string{"vec", "key"}, resultIDs(got))
}

func TestRetrieveArabicKeywordMatching(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("provider down")}
	store := &fakeStore{
		candidates: []model.Chunk{
			chunk("weather", "الطقس جميل اليوم"),
			chunk("ai", "الذَّكاء الاصطِناعي يغيّر العالم"),
			chunk("partial", "هذا ذكاء فقط"),
		},
	}
	r := New(emb, store, Options{})

	got, err := r.Retrieve(context.Background(), "ذكاء اصطناعي", 3, "", model.ChunkFilter{})
	require.NoError(t, err)
	require.Equal(t, []string{"ai", "partial", "weather"}, resultIDs(got))
}

func TestRetrieveVectorFailureFallsBackToKeyword(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{1}}
	store := &fakeStore{
		nearestErr: errors.New("index offline"),
		candidates: []model.Chunk{chunk("x", "no match"), chunk("y", "apple apple")},
	}
	r := New(emb, store, Options{})

	got, err := r.Retrieve(context.Background(), "apple", 2, "", model.ChunkFilter{})
	require.NoError(t, err)
	require.Equal(t, []string{"y", "x"}, resultIDs(got))
}

func TestRetrieveEmptyQueryKeepsCandidateOrder(t *testing.T) {
	store := &fakeStore{
		candidates: []model.Chunk{chunk("a", "first"), chunk("b", "second")},
	}
	r := New(nil, store, Options{})

	got, err := r.Retrieve(context.Background(), "   ", 5, "", model.ChunkFilter{})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, resultIDs(got))
}

func TestRetrieveRejectsNonPositiveTopK(t *testing.T) {
	r := New(nil, &fakeStore{}, Options{})
	_, err := r.Retrieve(context.Background(), "q", 0, "", model.ChunkFilter{})
	require.ErrorIs(t, err, errs.ErrInvalid)
}

func TestRetrieveNoCandidates(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{1}}
	r := New(emb, &fakeStore{}, Options{})
	got, err := r.Retrieve(context.Background(), "q", 3, "", model.ChunkFilter{})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestNormalizeForMatch(t *testing.T) {
	require.Equal(t, "don t stop ", normalizeForMatch("Don't STOP!"))
	require.Equal(t, "مرحبا", normalizeForMatch("مَرْحَبًا"))
}

func TestQueryTokens(t *testing.T) {
	require.Equal(t, []string{"hello", "world"}, queryTokens("Hello, WORLD! ؟؟"))
	require.Empty(t, queryTokens("   "))
}

func TestKeywordScoreCountsSubstrings(t *testing.T) {
	score := keywordScore("neural networks are neural", []string{"neural", "networks"})
	require.Equal(t, 3, score)
}
