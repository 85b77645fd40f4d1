package embedding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	// DefaultBedrockModel is the Titan text embedding model.
	DefaultBedrockModel = "amazon.titan-embed-text-v2:0"

	// DefaultBedrockDimension is the default Titan v2 output dimension.
	DefaultBedrockDimension = 1024
)

// BedrockClient implements Embedder using AWS Bedrock Titan embeddings.
// Credentials and region come from the standard AWS configuration chain.
type BedrockClient struct {
	client    *bedrockruntime.Client
	model     string
	dimension int
}

var _ Embedder = (*BedrockClient)(nil)

// titanEmbedRequest is the Titan text embedding request body.
type titanEmbedRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions,omitempty"`
}

// titanEmbedResponse is the Titan text embedding response body.
type titanEmbedResponse struct {
	Embedding           []float32 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

// NewBedrockClient creates a new Bedrock embedding client.
// If model is empty, uses DefaultBedrockModel (amazon.titan-embed-text-v2:0).
// If expectedDimension is 0, uses DefaultBedrockDimension (1024).
func NewBedrockClient(ctx context.Context, model string, expectedDimension int) (*BedrockClient, error) {
	if model == "" {
		model = DefaultBedrockModel
	}
	if expectedDimension == 0 {
		expectedDimension = DefaultBedrockDimension
	}

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &BedrockClient{
		client:    bedrockruntime.NewFromConfig(awsCfg),
		model:     model,
		dimension: expectedDimension,
	}, nil
}

// Model returns the configured embedding model name.
func (c *BedrockClient) Model() string {
	return c.model
}

// Dimension returns the expected embedding dimension.
func (c *BedrockClient) Dimension() int {
	return c.dimension
}

// Embed generates an embedding vector for the given text.
func (c *BedrockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(titanEmbedRequest{
		InputText:  text,
		Dimensions: c.dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	out, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke model: %w", err)
	}

	var resp titanEmbedResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(resp.Embedding) != c.dimension {
		return nil, fmt.Errorf("dimension mismatch: got %d, want %d (model: %s)",
			len(resp.Embedding), c.dimension, c.model)
	}

	return resp.Embedding, nil
}

// EmbedBatch generates embeddings for multiple texts. Titan has no batch
// endpoint, so texts are embedded sequentially.
func (c *BedrockClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		vec, err := c.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed %d: %w", i, err)
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}
