package knowledge

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// EmbeddingProvider generates vectors for text. Satisfied by Embedder
// and by test stubs.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Embedder generates embeddings using the Gemini API.
type Embedder struct {
	client *genai.Client
	model  string
}

// NewEmbedder creates a new embedder.
func NewEmbedder(client *genai.Client, model string) *Embedder {
	if model == "" {
		model = "text-embedding-004"
	}
	return &Embedder{client: client, model: model}
}

// NewGeminiEmbedder creates an embedder with its own Gemini API client.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding requires a Gemini API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	return NewEmbedder(client, model), nil
}

// Embed generates an embedding for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts. Splits into groups
// of maxBatchSize items to avoid API limits.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	const maxBatchSize = 20

	if len(texts) <= maxBatchSize {
		return e.embedBatchSingle(ctx, texts)
	}

	allEmbeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		select {
		case <-ctx.Done():
			return allEmbeddings, ctx.Err()
		default:
		}

		embeddings, err := e.embedBatchSingle(ctx, texts[start:end])
		if err != nil {
			return allEmbeddings, fmt.Errorf("embedding batch %d-%d failed: %w", start, end, err)
		}
		allEmbeddings = append(allEmbeddings, embeddings...)
	}

	return allEmbeddings, nil
}

func (e *Embedder) embedBatchSingle(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		}
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("embedding API error: %w", err)
	}

	embeddings := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}

// GetModel returns the embedding model name.
func (e *Embedder) GetModel() string {
	return e.model
}
