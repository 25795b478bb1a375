package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr                string `yaml:"addr"`
	MaxUploadMB         int    `yaml:"max_upload_mb"`
	DownloadTimeoutSecs int    `yaml:"download_timeout_secs"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// OllamaEmbedderConfig points at an Ollama server hosting a sentence encoder.
type OllamaEmbedderConfig struct {
	ServerURL string `yaml:"server_url"`
	Model     string `yaml:"model"`
}

// CacheConfig sizes the embedding cache. Size 0 disables it.
type CacheConfig struct {
	Size    int `yaml:"size"`
	TTLSecs int `yaml:"ttl_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	Dimension int                   `yaml:"dimension"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	Ollama    *OllamaEmbedderConfig `yaml:"ollama,omitempty"`
	Cache     CacheConfig           `yaml:"cache"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type                 string `yaml:"type"`
	MaxSize              int    `yaml:"max_size"`
	Overlap              int    `yaml:"overlap"`
	WindowRelativeBounds bool   `yaml:"window_relative_bounds"`
	ParagraphMaxSize     int    `yaml:"paragraph_max_size"`
	MinSize              int    `yaml:"min_size"`
}

// RankerConfig tunes chunk ranking and sentence refinement.
type RankerConfig struct {
	TopK      int      `yaml:"top_k"`
	Floor     *float64 `yaml:"floor,omitempty"`
	Sentences int      `yaml:"sentences"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Ranker     RankerConfig     `yaml:"ranker"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Log        LogConfig        `yaml:"log"`
}

// FloorValue returns the configured similarity floor or the default 0.2.
func (r RankerConfig) FloorValue() float64 {
	if r.Floor == nil {
		return defaultFloor
	}
	return *r.Floor
}

const defaultFloor = 0.2

// LoadEnv loads variables from a .env file in the working directory, if any.
// Variables already set in the environment win.
func LoadEnv() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	// keys missing from the file keep their default values
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/docqa/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	floor := defaultFloor
	cfg := &AppConfig{
		Server:     ServerConfig{Addr: ":8000", MaxUploadMB: 25, DownloadTimeoutSecs: 60},
		Embedder:   EmbedderConfig{Type: "hashing", Dimension: 512, Cache: CacheConfig{Size: 4096, TTLSecs: 3600}},
		Chunker:    ChunkerConfig{Type: "boundary", MaxSize: 1000, Overlap: 100, ParagraphMaxSize: 1500, MinSize: 200},
		Ranker:     RankerConfig{TopK: 3, Floor: &floor, Sentences: 2},
		Summarizer: SummarizerConfig{Type: "frequency", MaxSentences: 3},
		Log:        LogConfig{Level: "info", Pretty: true},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = def.Server.MaxUploadMB
	}
	if cfg.Server.DownloadTimeoutSecs <= 0 {
		cfg.Server.DownloadTimeoutSecs = def.Server.DownloadTimeoutSecs
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.Dimension <= 0 {
		cfg.Embedder.Dimension = def.Embedder.Dimension
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	}
	if cfg.Embedder.Type == "ollama" {
		if cfg.Embedder.Ollama == nil {
			cfg.Embedder.Ollama = &OllamaEmbedderConfig{}
		}
		if cfg.Embedder.Ollama.ServerURL == "" {
			cfg.Embedder.Ollama.ServerURL = "http://localhost:11434"
		}
		if cfg.Embedder.Ollama.Model == "" {
			cfg.Embedder.Ollama.Model = "all-minilm"
		}
	}
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = def.Chunker.Type
	}
	if cfg.Chunker.MaxSize <= 0 {
		cfg.Chunker.MaxSize = def.Chunker.MaxSize
	}
	if cfg.Chunker.Overlap < 0 {
		cfg.Chunker.Overlap = 0
	}
	if cfg.Chunker.ParagraphMaxSize <= 0 {
		cfg.Chunker.ParagraphMaxSize = def.Chunker.ParagraphMaxSize
	}
	if cfg.Chunker.MinSize <= 0 {
		cfg.Chunker.MinSize = def.Chunker.MinSize
	}
	if cfg.Ranker.TopK <= 0 {
		cfg.Ranker.TopK = def.Ranker.TopK
	}
	if cfg.Ranker.Floor == nil {
		cfg.Ranker.Floor = def.Ranker.Floor
	}
	if cfg.Ranker.Sentences <= 0 {
		cfg.Ranker.Sentences = def.Ranker.Sentences
	}
	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = def.Summarizer.Type
	}
	if cfg.Summarizer.MaxSentences <= 0 {
		cfg.Summarizer.MaxSentences = def.Summarizer.MaxSentences
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}
