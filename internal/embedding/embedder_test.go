// Package embedding_test contains unit and integration tests for embedding clients.
package embedding_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-sh/recall/internal/embedding"
)

func TestNewOllamaClient(t *testing.T) {
	client, err := embedding.NewOllamaClient("", "", 0)
	require.NoError(t, err, "should create client with default model")
	assert.Equal(t, embedding.DefaultOllamaModel, client.Model())
	assert.Equal(t, embedding.DefaultOllamaDimension, client.Dimension())
}

func TestNewOllamaClientCustomModel(t *testing.T) {
	client, err := embedding.NewOllamaClient("http://localhost:11434", "custom-model", 512)
	require.NoError(t, err, "should create client with custom model")
	assert.Equal(t, "custom-model", client.Model())
	assert.Equal(t, 512, client.Dimension())
}

func TestNewOllamaClientBadHost(t *testing.T) {
	_, err := embedding.NewOllamaClient("://not-a-url", "", 0)
	assert.Error(t, err, "malformed host should be rejected")
}

func TestDefaultOllama(t *testing.T) {
	embedder, err := embedding.DefaultOllama()
	require.NoError(t, err, "should create default embedder")
	assert.Equal(t, embedding.DefaultOllamaModel, embedder.Model())
	assert.Equal(t, embedding.DefaultOllamaDimension, embedder.Dimension())
}

func TestNewFactory(t *testing.T) {
	ctx := context.Background()

	embedder, err := embedding.New(ctx, embedding.Config{
		Provider: embedding.ProviderOllama,
	})
	require.NoError(t, err, "should create Ollama embedder via factory")
	assert.Equal(t, embedding.DefaultOllamaModel, embedder.Model())

	_, err = embedding.New(ctx, embedding.Config{Provider: embedding.ProviderOpenAI})
	assert.Error(t, err, "openai without API key should fail")

	_, err = embedding.New(ctx, embedding.Config{Provider: "carrier-pigeon"})
	assert.Error(t, err, "unknown provider should fail")
}

func TestOpenAIDefaults(t *testing.T) {
	client, err := embedding.NewOpenAIClient("sk-test", "", 0)
	require.NoError(t, err, "should create client with default model")
	assert.Equal(t, embedding.DefaultOpenAIModel, client.Model())
	assert.Equal(t, embedding.DefaultOpenAIDimension, client.Dimension())
}

func TestEmbedBatchEmpty(t *testing.T) {
	client, err := embedding.NewOllamaClient("", "", 0)
	require.NoError(t, err, "should create client")

	embeddings, err := client.EmbedBatch(context.Background(), []string{})
	require.NoError(t, err, "should handle empty batch")
	assert.Len(t, embeddings, 0, "should return empty slice")
}

func TestEmbed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := embedding.NewOllamaClient("", "", 0)
	require.NoError(t, err, "should create client")

	emb, err := client.Embed(ctx, "npm install fails with EACCES permission denied")
	require.NoError(t, err, "should generate embedding")

	assert.Len(t, emb, client.Dimension(),
		"embedding must be exactly %d dimensions", client.Dimension())

	var sum float32
	for _, v := range emb {
		sum += v * v
	}
	assert.Greater(t, sum, float32(0.1), "embedding should have non-trivial values")
}

func TestEmbedBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := embedding.NewOllamaClient("", "", 0)
	require.NoError(t, err, "should create client")

	texts := []string{
		"docker build fails with no space left on device",
		"git push rejected, remote contains work you do not have",
		"fixed flaky test by pinning the timezone",
	}

	embeddings, err := client.EmbedBatch(ctx, texts)
	require.NoError(t, err, "should generate batch embeddings")

	assert.Len(t, embeddings, len(texts), "should return one embedding per text")
	for i, emb := range embeddings {
		assert.Len(t, emb, client.Dimension(),
			"embedding %d must be exactly %d dimensions", i, client.Dimension())
	}
}
