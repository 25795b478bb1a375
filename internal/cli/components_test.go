package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/embedding"
	"docqa/internal/pdftext/pdftest"
)

func TestBuildEmbedder_DefaultIsCachedHashing(t *testing.T) {
	emb, err := buildEmbedder(config.EmbedderConfig{Dimension: 16, Cache: config.CacheConfig{Size: 8}})
	require.NoError(t, err)

	assert.IsType(t, &embedding.Cache{}, emb)
	assert.Equal(t, "hashing", emb.Name())

	vecs, err := emb.Embed(context.Background(), []string{"lease renewal terms"})
	require.NoError(t, err)
	require.Len(t, vecs, 1)
	assert.Len(t, vecs[0], 16)
}

func TestBuildEmbedder_NoCacheReturnsLazy(t *testing.T) {
	emb, err := buildEmbedder(config.EmbedderConfig{Type: "hashing"})
	require.NoError(t, err)

	assert.IsType(t, &embedding.Lazy{}, emb)
}

func TestBuildEmbedder_RemoteLoadsLazily(t *testing.T) {
	t.Setenv("DOCQA_TEST_MISSING_KEY", "")
	emb, err := buildEmbedder(config.EmbedderConfig{
		Type:   "openai",
		OpenAI: &config.OpenAIEmbedderConfig{APIKeyEnv: "DOCQA_TEST_MISSING_KEY", Model: "m"},
	})
	require.NoError(t, err, "construction must not contact the provider")
	assert.Equal(t, "openai:m", emb.Name())

	_, err = emb.Embed(context.Background(), []string{"q"})
	assert.ErrorContains(t, err, "missing API key")
}

func TestBuildEmbedder_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.EmbedderConfig
		want string
	}{
		{"unknown", config.EmbedderConfig{Type: "word2vec"}, "unknown embedder"},
		{"openai without section", config.EmbedderConfig{Type: "openai"}, "openai embedder config missing"},
		{"ollama without section", config.EmbedderConfig{Type: "ollama"}, "ollama embedder config missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildEmbedder(tt.cfg)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestBuildChunker(t *testing.T) {
	ch, err := buildChunker(config.ChunkerConfig{Type: "boundary", MaxSize: 100, Overlap: 10})
	require.NoError(t, err)
	assert.IsType(t, chunker.BoundaryChunker{}, ch)

	ch, err = buildChunker(config.ChunkerConfig{Type: "paragraph", ParagraphMaxSize: 100, MinSize: 10})
	require.NoError(t, err)
	assert.IsType(t, chunker.ParagraphChunker{}, ch)

	_, err = buildChunker(config.ChunkerConfig{Type: "tokens"})
	assert.ErrorContains(t, err, "unknown chunker")
}

func TestBuildSummarizer_Unknown(t *testing.T) {
	_, err := buildSummarizer(config.SummarizerConfig{Type: "llm"})
	assert.ErrorContains(t, err, "unknown summarizer")
}

func TestBuild_AssemblesPipeline(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	c, err := build(cfg)
	require.NoError(t, err)

	assert.NotNil(t, c.answerer)
	assert.NotNil(t, c.notebooks)
	assert.Equal(t, 0, c.notebooks.Count())

	answer := c.answerer.Answer(context.Background(), "anything", nil)
	assert.NotEmpty(t, answer.Text)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestAskCmd_UnknownEmbedder(t *testing.T) {
	path := writeConfig(t, "embedder:\n  type: word2vec\nlog:\n  level: error\n")
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "ask", "doc.pdf", "-q", "what?"})

	err := cmd.Execute()

	assert.ErrorContains(t, err, "unknown embedder: word2vec")
}

func TestAskCmd_MissingFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: error\n")
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "ask", filepath.Join(t.TempDir(), "missing.pdf"), "-q", "what?"})

	err := cmd.Execute()

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"ask", "doc.pdf"})

	err := cmd.Execute()

	assert.ErrorContains(t, err, "question")
}

func TestAskCmd_AnswersFromPDF(t *testing.T) {
	cfgPath := writeConfig(t, "log:\n  level: error\n  pretty: false\nembedder:\n  cache:\n    size: 0\n")
	pdfPath := filepath.Join(t.TempDir(), "lease.pdf")
	require.NoError(t, os.WriteFile(pdfPath, pdftest.MustBuild("The security deposit is refundable within thirty days"), 0o644))

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "ask", pdfPath, "-q", "When is the deposit refundable?", "--json"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Answers []string `json:"answers"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.Len(t, resp.Answers, 1)
	assert.Contains(t, resp.Answers[0], "refundable within thirty days")
}
