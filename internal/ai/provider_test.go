package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	key string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, model string, _ string) (string, error) {
	return f.key + ":" + model, nil
}

func TestRegisterAndNewProvider(t *testing.T) {
	Register("fake", func(args interface{}) (IAIProvider, error) {
		cfg := &struct {
			APIKey string `json:"api_key"`
		}{}
		if err := decodeConfig(args, cfg); err != nil {
			return nil, err
		}
		return &fakeProvider{key: cfg.APIKey}, nil
	})

	p, err := NewProvider(" Fake ", map[string]interface{}{"api_key": "k1"})
	require.NoError(t, err)

	gen := NewGenerator(p, "model-x")
	out, err := gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "k1:model-x", out)
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider("nope", nil)
	require.Error(t, err)
}

func TestNewEmbedProviderWithoutEmbedSupport(t *testing.T) {
	_, err := NewEmbedProvider("anthropic", map[string]interface{}{"api_key": "k"})
	require.Error(t, err)
}

func TestDecodeConfigRequiresArgs(t *testing.T) {
	require.Error(t, decodeConfig(nil, &struct{}{}))
}
