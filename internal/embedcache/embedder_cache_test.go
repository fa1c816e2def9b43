package embedcache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warraqio/warraq/internal/model"
)

type countingEmbedder struct {
	vec   []float32
	model string
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, _ string, _ string) ([]float32, error) {
	c.calls++
	return c.vec, nil
}

func (c *countingEmbedder) ModelName() string {
	return c.model
}

type fakeCacheStore struct {
	items map[string][]float32
	saves int
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{items: map[string][]float32{}}
}

func (f *fakeCacheStore) Get(_ context.Context, modelName, taskType, contentHash string) ([]float32, bool, error) {
	vec, ok := f.items[modelName+"|"+taskType+"|"+contentHash]
	return vec, ok, nil
}

func (f *fakeCacheStore) Save(_ context.Context, item *model.EmbeddingCache) error {
	f.saves++
	f.items[item.ModelName+"|"+item.TaskType+"|"+item.ContentHash] = item.Embedding
	return nil
}

func TestLruCacheAvoidsRepeatCalls(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1, 2}, model: "m"}
	e := WrapLruCacheToEmbedder(inner, 8, time.Minute)

	first, err := e.Embed(context.Background(), "same text", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), "same text", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.calls)

	_, err = e.Embed(context.Background(), "other text", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestLruCacheReturnsCopy(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1, 2}, model: "m"}
	e := WrapLruCacheToEmbedder(inner, 8, time.Minute)

	first, _ := e.Embed(context.Background(), "text", "")
	first[0] = 99
	second, _ := e.Embed(context.Background(), "text", "")
	require.Equal(t, float32(1), second[0])
}

func TestLruCacheDisabledPassesThrough(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1}, model: "m"}
	require.Equal(t, inner, WrapLruCacheToEmbedder(inner, 0, time.Minute))
}

func TestDBCacheSavesAndHits(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{5}, model: "m"}
	store := newFakeCacheStore()
	e := WrapDBCacheToEmbedder(inner, store)

	_, err := e.Embed(context.Background(), "text", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	require.Equal(t, 1, inner.calls)
	require.Equal(t, 1, store.saves)

	vec, err := e.Embed(context.Background(), "text", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	require.Equal(t, []float32{5}, vec)
	require.Equal(t, 1, inner.calls)
	require.Equal(t, 1, store.saves)
}

func TestDBCacheKeyIncludesTaskType(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{5}, model: "m"}
	store := newFakeCacheStore()
	e := WrapDBCacheToEmbedder(inner, store)

	_, _ = e.Embed(context.Background(), "text", "RETRIEVAL_DOCUMENT")
	_, _ = e.Embed(context.Background(), "text", "RETRIEVAL_QUERY")
	require.Equal(t, 2, inner.calls)
	require.Equal(t, 2, store.saves)
}

func TestBuildCacheKey(t *testing.T) {
	key, hash, modelName := buildCacheKey("", "RETRIEVAL_QUERY", "hello")
	require.Equal(t, "unknown", modelName)
	require.Len(t, hash, 64)
	require.True(t, strings.HasPrefix(key, "embed:unknown:RETRIEVAL_QUERY:"))
}
