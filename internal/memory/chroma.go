package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ChromaClient speaks the Chroma REST API (v1) for one collection.
type ChromaClient struct {
	client       *resty.Client
	collection   string
	collectionID string
}

// NewChromaClient connects to Chroma at baseURL and gets or creates
// the named collection.
func NewChromaClient(ctx context.Context, baseURL, collection string) (*ChromaClient, error) {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)

	cc := &ChromaClient{client: client, collection: collection}
	if err := cc.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return cc, nil
}

type chromaCollection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (cc *ChromaClient) ensureCollection(ctx context.Context) error {
	var result chromaCollection
	resp, err := cc.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"name":          cc.collection,
			"get_or_create": true,
			"metadata":      map[string]string{"hnsw:space": "cosine"},
		}).
		SetResult(&result).
		Post("/api/v1/collections")
	if err != nil {
		return fmt.Errorf("failed to reach chroma: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("chroma HTTP %d creating collection %s", resp.StatusCode(), cc.collection)
	}
	cc.collectionID = result.ID
	return nil
}

// Add upserts documents with their embeddings and metadata.
func (cc *ChromaClient) Add(ctx context.Context, ids []string, embeddings [][]float64, documents []string, metadatas []map[string]interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) != len(embeddings) || len(ids) != len(documents) {
		return fmt.Errorf("mismatched lengths: %d ids, %d embeddings, %d documents",
			len(ids), len(embeddings), len(documents))
	}

	body := map[string]interface{}{
		"ids":        ids,
		"embeddings": embeddings,
		"documents":  documents,
	}
	if len(metadatas) == len(ids) {
		body["metadatas"] = metadatas
	}

	resp, err := cc.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("/api/v1/collections/%s/upsert", cc.collectionID))
	if err != nil {
		return fmt.Errorf("failed to upsert documents: %w", err)
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		return fmt.Errorf("chroma HTTP %d on upsert", resp.StatusCode())
	}
	return nil
}

// QueryResult is one retrieved document with its cosine distance.
type QueryResult struct {
	ID        string
	Document  string
	Metadata  map[string]interface{}
	Distance  float64
	Embedding []float64
}

type chromaQueryResponse struct {
	IDs        [][]string                   `json:"ids"`
	Documents  [][]string                   `json:"documents"`
	Metadatas  [][]map[string]interface{}   `json:"metadatas"`
	Distances  [][]float64                  `json:"distances"`
	Embeddings [][][]float64                `json:"embeddings"`
}

// Query retrieves the nResults nearest documents for one embedding.
// includeEmbeddings is needed for client-side MMR re-ranking.
func (cc *ChromaClient) Query(ctx context.Context, embedding []float64, nResults int, includeEmbeddings bool) ([]*QueryResult, error) {
	if nResults <= 0 {
		nResults = 5
	}

	include := []string{"documents", "metadatas", "distances"}
	if includeEmbeddings {
		include = append(include, "embeddings")
	}

	var result chromaQueryResponse
	resp, err := cc.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"query_embeddings": [][]float64{embedding},
			"n_results":        nResults,
			"include":          include,
		}).
		SetResult(&result).
		Post(fmt.Sprintf("/api/v1/collections/%s/query", cc.collectionID))
	if err != nil {
		return nil, fmt.Errorf("failed to query chroma: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("chroma HTTP %d on query", resp.StatusCode())
	}
	if len(result.IDs) == 0 {
		return nil, nil
	}

	out := make([]*QueryResult, 0, len(result.IDs[0]))
	for i, id := range result.IDs[0] {
		qr := &QueryResult{ID: id}
		if len(result.Documents) > 0 && i < len(result.Documents[0]) {
			qr.Document = result.Documents[0][i]
		}
		if len(result.Metadatas) > 0 && i < len(result.Metadatas[0]) {
			qr.Metadata = result.Metadatas[0][i]
		}
		if len(result.Distances) > 0 && i < len(result.Distances[0]) {
			qr.Distance = result.Distances[0][i]
		}
		if len(result.Embeddings) > 0 && i < len(result.Embeddings[0]) {
			qr.Embedding = result.Embeddings[0][i]
		}
		out = append(out, qr)
	}
	return out, nil
}

// Delete removes documents by id.
func (cc *ChromaClient) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	resp, err := cc.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"ids": ids}).
		Post(fmt.Sprintf("/api/v1/collections/%s/delete", cc.collectionID))
	if err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("chroma HTTP %d on delete", resp.StatusCode())
	}
	return nil
}

// Count returns the number of stored documents.
func (cc *ChromaClient) Count(ctx context.Context) (int, error) {
	var count int
	resp, err := cc.client.R().
		SetContext(ctx).
		SetResult(&count).
		Get(fmt.Sprintf("/api/v1/collections/%s/count", cc.collectionID))
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("chroma HTTP %d on count", resp.StatusCode())
	}
	return count, nil
}
