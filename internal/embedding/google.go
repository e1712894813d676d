package embedding

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

const (
	// DefaultGoogleModel is the Gemini embedding model used when none is
	// configured.
	DefaultGoogleModel = "text-embedding-004"

	// DefaultGoogleDimension is the vector size requested from Gemini
	// embedding models.
	DefaultGoogleDimension = 768

	// googleTaskType tells the API these vectors serve document retrieval.
	googleTaskType = "RETRIEVAL_DOCUMENT"
)

// GoogleProvider generates embeddings through the Gemini API.
type GoogleProvider struct {
	client    *genai.Client
	model     string
	dimension int32
}

// NewGoogleProvider creates a Provider backed by Gemini. The API key comes
// from GOOGLE_API_KEY (or GEMINI_API_KEY); construction fails fast when
// neither is set.
func NewGoogleProvider(ctx context.Context, model string, dimension int) (*GoogleProvider, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY environment variable not set")
	}
	if model == "" {
		model = DefaultGoogleModel
	}
	if dimension <= 0 {
		dimension = DefaultGoogleDimension
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GoogleProvider{
		client:    client,
		model:     model,
		dimension: int32(dimension),
	}, nil
}

// EmbedOne embeds a single text. Empty input yields a nil vector.
func (p *GoogleProvider) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	result, err := p.client.Models.EmbedContent(ctx, p.model, genai.Text(text), p.embedConfig())
	if err != nil {
		return nil, fmt.Errorf("gemini embeddings: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("gemini embeddings: empty response")
	}
	return result.Embeddings[0].Values, nil
}

// EmbedBatch embeds texts in a single API call, preserving input order.
func (p *GoogleProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		})
	}

	result, err := p.client.Models.EmbedContent(ctx, p.model, contents, p.embedConfig())
	if err != nil {
		return nil, fmt.Errorf("gemini embeddings: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini embeddings: got %d vectors for %d texts", len(result.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// Dimension reports the configured vector size.
func (p *GoogleProvider) Dimension() int { return int(p.dimension) }

// ModelName reports the configured model identifier.
func (p *GoogleProvider) ModelName() string { return p.model }

func (p *GoogleProvider) embedConfig() *genai.EmbedContentConfig {
	return &genai.EmbedContentConfig{
		OutputDimensionality: &p.dimension,
		TaskType:             googleTaskType,
	}
}
