package ollama

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"

	"docqa/internal/embedding"
)

// Config configures the Ollama sentence encoder.
type Config struct {
	ServerURL string
	Model     string
}

// Embedder adapts a langchaingo embedder to the pipeline's batch interface.
type Embedder struct {
	name  string
	inner embeddings.Embedder
}

// New connects to an Ollama server and returns an embedder for cfg.Model.
func New(cfg Config) (*Embedder, error) {
	if cfg.Model == "" {
		cfg.Model = "all-minilm"
	}
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.ServerURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
	}
	log.Debug().Str("server_url", cfg.ServerURL).Str("model", cfg.Model).Msg("creating ollama embedder")

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init ollama: %w", err)
	}
	e, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return Wrap("ollama:"+cfg.Model, e), nil
}

// Wrap adapts any langchaingo embedder.
func Wrap(name string, e embeddings.Embedder) *Embedder {
	return &Embedder{name: name, inner: e}
}

func (e *Embedder) Name() string { return e.name }

// Embed returns one unit-length vector per text.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	raw, err := e.inner.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(texts) {
		return nil, fmt.Errorf("%s returned %d vectors for %d texts", e.name, len(raw), len(texts))
	}
	out := make([][]float64, len(raw))
	for i, v := range raw {
		out[i] = embedding.Normalize(embedding.FromFloat32(v))
	}
	return out, nil
}
