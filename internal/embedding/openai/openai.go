package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"docqa/internal/embedding"
)

// Client is an OpenAI-compatible embeddings client. It also understands the
// single-vector response shape returned by Ollama's native endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	batchSize  int
	client     *http.Client
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
	BatchSize int
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	bs := cfg.BatchSize
	if bs <= 0 {
		bs = 32
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		batchSize:  bs,
		client:     &http.Client{Timeout: t},
		maxRetries: 5,
		sleep:      sleepCtx,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai:" + c.model }

// Embed returns one unit-length vector per text, requesting them in batches.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		vecs, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

type request struct {
	Input  any    `json:"input,omitempty"`
	Prompt string `json:"prompt,omitempty"`
	Model  string `json:"model"`
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	body := request{Input: texts, Model: c.model}
	if len(texts) == 1 {
		// Ollama's native endpoint reads "prompt"
		body.Input = texts[0]
		body.Prompt = texts[0]
	}
	payload, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}
	vecs, err := decode(payload, len(texts))
	if err != nil {
		if len(texts) > 1 {
			log.Debug().Err(err).Int("batch", len(texts)).Msg("batch response not understood, embedding one by one")
			return c.embedEach(ctx, texts)
		}
		return nil, err
	}
	for _, v := range vecs {
		embedding.Normalize(v)
	}
	return vecs, nil
}

func (c *Client) embedEach(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		v, err := c.embedBatch(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		out[i] = v[0]
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, body request) ([]byte, error) {
	url := fmt.Sprintf("%s/embeddings", c.baseURL)
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil || attempt >= c.maxRetries {
				return nil, err
			}
			if err := c.sleep(ctx, retryDelay(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			wait := retryDelay(attempt)
			// Respect Retry-After if provided
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				wait = time.Duration(secs) * time.Second
			}
			_ = resp.Body.Close()
			if attempt >= c.maxRetries {
				return nil, fmt.Errorf("openai embeddings failed: %s", resp.Status)
			}
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("openai embeddings failed: %s", resp.Status)
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			if attempt >= c.maxRetries {
				return nil, err
			}
			if err := c.sleep(ctx, retryDelay(attempt)); err != nil {
				return nil, err
			}
			continue
		}
		return payload, nil
	}
}

func decode(payload []byte, want int) ([][]float64, error) {
	// Try OpenAI-compatible response first
	var openaiOut struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil && len(openaiOut.Data) > 0 {
		if len(openaiOut.Data) != want {
			return nil, fmt.Errorf("openai embeddings returned %d vectors for %d texts", len(openaiOut.Data), want)
		}
		sort.SliceStable(openaiOut.Data, func(i, j int) bool {
			return openaiOut.Data[i].Index < openaiOut.Data[j].Index
		})
		out := make([][]float64, want)
		for i, d := range openaiOut.Data {
			if len(d.Embedding) == 0 {
				return nil, errors.New("empty embedding returned")
			}
			out[i] = d.Embedding
		}
		return out, nil
	}
	// Fallback to Ollama-native shape: { "embedding": [...] }
	var ollamaOut struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err == nil && len(ollamaOut.Embedding) > 0 && want == 1 {
		return [][]float64{ollamaOut.Embedding}, nil
	}
	return nil, errors.New("no embedding returned")
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	if attempt > 5 {
		return 5 * time.Second
	}
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
