package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManagerEmbedNotConfigured(t *testing.T) {
	m := NewManager(nil, nil, nil, ManagerConfig{})
	_, err := m.Embed(context.Background(), "text", "")
	require.Error(t, err)
	require.False(t, m.HasEmbedder())
	require.Empty(t, m.EmbeddingModelName())
}

func TestManagerGenerateTrims(t *testing.T) {
	m := NewManager(&stubGenerator{out: "  hello  "}, nil, nil, ManagerConfig{})
	out, err := m.Generate(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, "hello", out)
}

func TestManagerGenerateRejectsEmptyResponse(t *testing.T) {
	m := NewManager(&stubGenerator{out: "   "}, nil, nil, ManagerConfig{})
	_, err := m.Generate(context.Background(), "p")
	require.Error(t, err)
}

func TestManagerDelegatesEmbed(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{3}, model: "embed-1"}
	m := NewManager(nil, emb, nil, ManagerConfig{})
	vec, err := m.Embed(context.Background(), "text", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, []float32{3}, vec)
	require.Equal(t, "embed-1", m.EmbeddingModelName())
	require.True(t, m.HasEmbedder())
}

func TestGenerateWithModelRoutesByPrefix(t *testing.T) {
	providers := map[string]IAIProvider{
		"openai":    &fakeProvider{key: "oa"},
		"anthropic": &fakeProvider{key: "an"},
	}
	m := NewManager(&stubGenerator{out: "default"}, nil, providers, ManagerConfig{})

	out, err := m.GenerateWithModel(context.Background(), "gpt-4o", "p")
	require.NoError(t, err)
	require.Equal(t, "oa:gpt-4o", out)

	out, err = m.GenerateWithModel(context.Background(), "claude-3-5-sonnet", "p")
	require.NoError(t, err)
	require.Equal(t, "an:claude-3-5-sonnet", out)
}

func TestGenerateWithModelEmptyUsesDefaultChain(t *testing.T) {
	m := NewManager(&stubGenerator{out: "default"}, nil, nil, ManagerConfig{})
	out, err := m.GenerateWithModel(context.Background(), "", "p")
	require.NoError(t, err)
	require.Equal(t, "default", out)
}

func TestGenerateWithModelUnknownPrefix(t *testing.T) {
	m := NewManager(&stubGenerator{out: "default"}, nil, map[string]IAIProvider{
		"openai": &fakeProvider{key: "oa"},
	}, ManagerConfig{})

	_, err := m.GenerateWithModel(context.Background(), "llama-3", "p")
	require.Error(t, err)
}

func TestGenerateWithModelMissingProvider(t *testing.T) {
	m := NewManager(&stubGenerator{out: "default"}, nil, nil, ManagerConfig{})
	_, err := m.GenerateWithModel(context.Background(), "gpt-4o", "p")
	require.Error(t, err)
}

func TestProviderNameForModel(t *testing.T) {
	require.Equal(t, "openai", ProviderNameForModel("gpt-4o-mini"))
	require.Equal(t, "anthropic", ProviderNameForModel("claude-3-haiku"))
	require.Equal(t, "gemini", ProviderNameForModel("gemini-2.0-flash"))
	require.Equal(t, "", ProviderNameForModel("mistral-7b"))
	require.Equal(t, "", ProviderNameForModel(""))
}
