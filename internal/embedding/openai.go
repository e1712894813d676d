package embedding

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
)

const (
	// DefaultOpenAIModel is the embedding model used when none is configured.
	DefaultOpenAIModel = "text-embedding-3-small"

	// DefaultOpenAIDimension is the native vector size of text-embedding-3-small.
	DefaultOpenAIDimension = 1536
)

// OpenAIProvider generates embeddings through the OpenAI embeddings API.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	dimension int
}

// NewOpenAIProvider creates a Provider backed by OpenAI. The API key comes
// from the OPENAI_API_KEY environment variable; construction fails fast
// when it is not set.
func NewOpenAIProvider(model string, dimension int) (*OpenAIProvider, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if dimension <= 0 {
		dimension = DefaultOpenAIDimension
	}

	// openai-go reads OPENAI_API_KEY from the environment itself
	client := openai.NewClient()

	return &OpenAIProvider{
		client:    &client,
		model:     model,
		dimension: dimension,
	}, nil
}

// EmbedOne embeds a single text. Empty input yields a nil vector.
func (p *OpenAIProvider) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in a single API call, preserving input order.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: openai.EmbeddingModel(p.model),
	}
	// Only the text-embedding-3 family accepts a reduced output dimension.
	if strings.HasPrefix(p.model, "text-embedding-3") && p.dimension != DefaultOpenAIDimension {
		params.Dimensions = openai.Int(int64(p.dimension))
	}

	resp, err := p.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d texts", len(resp.Data), len(texts))
	}

	// The API reports each vector's input position; trust it over response order.
	vectors := make([][]float32, len(texts))
	for i, data := range resp.Data {
		idx := int(data.Index)
		if idx < 0 || idx >= len(vectors) {
			idx = i
		}
		vectors[idx] = toFloat32(data.Embedding)
	}
	return vectors, nil
}

// Dimension reports the configured vector size.
func (p *OpenAIProvider) Dimension() int { return p.dimension }

// ModelName reports the configured model identifier.
func (p *OpenAIProvider) ModelName() string { return p.model }

// toFloat32 converts the API's float64 vectors to the float32 the vector
// store works with.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
