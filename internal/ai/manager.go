package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type ManagerConfig struct {
	Timeout       int
	MaxInputChars int
}

// Manager bundles the configured generator and embedder chains and applies
// the per-call timeout. The providers map allows binding a caller-requested
// model to its provider at request time.
type Manager struct {
	generator IGenerator
	embedder  IEmbedder
	providers map[string]IAIProvider
	cfg       ManagerConfig
}

func NewManager(generator IGenerator, embedder IEmbedder, providers map[string]IAIProvider, cfg ManagerConfig) *Manager {
	return &Manager{
		generator: generator,
		embedder:  embedder,
		providers: providers,
		cfg:       cfg,
	}
}

func (m *Manager) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if m.embedder == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	return m.embedder.Embed(ctx, text, taskType)
}

func (m *Manager) Generate(ctx context.Context, prompt string) (string, error) {
	return m.generate(ctx, m.generator, prompt)
}

// GenerateWithModel routes modelName to its provider by prefix ("gpt" to
// openai, "claude" to anthropic, "gemini" to gemini) and binds the model for
// this call only. An empty modelName uses the default chain.
func (m *Manager) GenerateWithModel(ctx context.Context, modelName string, prompt string) (string, error) {
	if modelName == "" {
		return m.Generate(ctx, prompt)
	}
	provider := m.providers[ProviderNameForModel(modelName)]
	if provider == nil {
		return "", fmt.Errorf("no provider for model: %s", modelName)
	}
	return m.generate(ctx, NewGenerator(provider, modelName), prompt)
}

func (m *Manager) generate(ctx context.Context, gen IGenerator, prompt string) (string, error) {
	if gen == nil {
		return "", fmt.Errorf("generator not configured")
	}
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.Timeout)*time.Second)
		defer cancel()
	}
	resp, err := gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp)
	if text == "" {
		return "", fmt.Errorf("empty ai response")
	}
	return text, nil
}

// ProviderNameForModel maps a model name to the provider that serves it.
// Unknown prefixes return "".
func ProviderNameForModel(modelName string) string {
	switch {
	case strings.HasPrefix(modelName, "gpt"):
		return "openai"
	case strings.HasPrefix(modelName, "claude"):
		return "anthropic"
	case strings.HasPrefix(modelName, "gemini"):
		return "gemini"
	}
	return ""
}

func (m *Manager) HasGenerator() bool {
	return m.generator != nil
}

func (m *Manager) HasEmbedder() bool {
	return m.embedder != nil
}

func (m *Manager) EmbeddingModelName() string {
	if m.embedder == nil {
		return ""
	}
	return m.embedder.ModelName()
}

func (m *Manager) MaxInputChars() int {
	return m.cfg.MaxInputChars
}
