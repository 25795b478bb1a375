package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/embedding"
	"docqa/internal/embedding/hashing"
	"docqa/internal/embedding/ollama"
	"docqa/internal/embedding/openai"
	"docqa/internal/ranker"
	"docqa/internal/service"
	"docqa/internal/store/memory"
	"docqa/internal/summarizer"
)

// components holds the assembled question answering pipeline.
type components struct {
	cfg        *config.AppConfig
	embedder   domain.Embedder
	chunker    domain.Chunker
	summarizer domain.Summarizer
	answerer   *service.Answerer
	notebooks  *service.Notebooks
}

// loadConfig reads the .env file and the YAML config, then configures the
// global logger from it.
func loadConfig(path string) (*config.AppConfig, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var (
		cfg *config.AppConfig
		err error
	)
	if path == "" {
		cfg, path, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg)
	log.Debug().Str("path", path).Msg("config loaded")
	return cfg, nil
}

func build(cfg *config.AppConfig) (*components, error) {
	emb, err := buildEmbedder(cfg.Embedder)
	if err != nil {
		return nil, err
	}
	ch, err := buildChunker(cfg.Chunker)
	if err != nil {
		return nil, err
	}
	sum, err := buildSummarizer(cfg.Summarizer)
	if err != nil {
		return nil, err
	}

	r := ranker.New(emb, cfg.Ranker.TopK, cfg.Ranker.FloorValue(), cfg.Ranker.Sentences)
	answerer := service.NewAnswerer(r)
	notebooks := service.NewNotebooks(memory.NewStorage(), ch, sum, cfg.Summarizer.MaxSentences, answerer)

	log.Info().
		Str("embedder", emb.Name()).
		Str("chunker", cfg.Chunker.Type).
		Int("top_k", cfg.Ranker.TopK).
		Float64("floor", cfg.Ranker.FloorValue()).
		Msg("pipeline assembled")

	return &components{
		cfg:        cfg,
		embedder:   emb,
		chunker:    ch,
		summarizer: sum,
		answerer:   answerer,
		notebooks:  notebooks,
	}, nil
}

// buildEmbedder returns the configured embedder behind a lazy loader and an
// LRU cache. Remote embedders are not contacted until the first question.
func buildEmbedder(cfg config.EmbedderConfig) (domain.Embedder, error) {
	var (
		name string
		load embedding.Loader
	)
	switch cfg.Type {
	case "hashing", "":
		name = "hashing"
		dim := cfg.Dimension
		load = func(context.Context) (domain.Embedder, error) {
			return hashing.NewEmbedder(dim), nil
		}
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		oc := openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			BatchSize: cfg.OpenAI.BatchSize,
		}
		name = "openai:" + oc.Model
		load = func(context.Context) (domain.Embedder, error) {
			return openai.NewClient(oc)
		}
	case "ollama":
		if cfg.Ollama == nil {
			return nil, fmt.Errorf("ollama embedder config missing")
		}
		oc := ollama.Config{ServerURL: cfg.Ollama.ServerURL, Model: cfg.Ollama.Model}
		name = "ollama:" + oc.Model
		load = func(context.Context) (domain.Embedder, error) {
			return ollama.New(oc)
		}
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}

	var emb domain.Embedder = embedding.NewLazy(name, load)
	return embedding.WrapCache(emb, cfg.Cache.Size, time.Duration(cfg.Cache.TTLSecs)*time.Second), nil
}

func buildChunker(cfg config.ChunkerConfig) (domain.Chunker, error) {
	switch cfg.Type {
	case "boundary", "":
		return chunker.NewBoundaryChunker(cfg.MaxSize, cfg.Overlap, cfg.WindowRelativeBounds), nil
	case "paragraph":
		return chunker.NewParagraphChunker(cfg.ParagraphMaxSize, cfg.MinSize), nil
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Type)
	}
}

func buildSummarizer(cfg config.SummarizerConfig) (domain.Summarizer, error) {
	switch cfg.Type {
	case "frequency", "":
		return summarizer.NewFrequencySummarizer(), nil
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Type)
	}
}
