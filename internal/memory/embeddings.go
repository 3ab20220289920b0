package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aletheia-intel/aletheia/config"
)

// Embedder turns text into vectors. Tests substitute a deterministic
// implementation.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	client *resty.Client
	model  string
}

// NewOpenAIEmbedder builds an embedder against the configured LLM
// backend.
func NewOpenAIEmbedder(cfg *config.Config) *OpenAIEmbedder {
	client := resty.New()
	client.SetBaseURL(cfg.BackendURL)
	client.SetTimeout(60 * time.Second)
	client.SetAuthToken(cfg.LLMAPIKey)

	return &OpenAIEmbedder{
		client: client,
		model:  cfg.EmbeddingModel,
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one vector per input text, in input order.
func (oe *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var result embeddingResponse
	resp, err := oe.client.R().
		SetContext(ctx).
		SetBody(embeddingRequest{Model: oe.model, Input: texts}).
		SetResult(&result).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("failed to embed texts: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("embeddings HTTP %d", resp.StatusCode())
	}
	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings returned %d vectors for %d inputs", len(result.Data), len(texts))
	}

	vectors := make([][]float64, len(texts))
	for _, item := range result.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}
