package memory

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/aletheia-intel/aletheia/config"
)

// vectorIndex is the slice of the Chroma client VectorMemory needs,
// small enough for tests to fake.
type vectorIndex interface {
	Add(ctx context.Context, ids []string, embeddings [][]float64, documents []string, metadatas []map[string]interface{}) error
	Query(ctx context.Context, embedding []float64, nResults int, includeEmbeddings bool) ([]*QueryResult, error)
	Delete(ctx context.Context, ids []string) error
	Count(ctx context.Context) (int, error)
}

// VectorMemory is the semantic long-term memory over a Chroma
// collection.
type VectorMemory struct {
	index    vectorIndex
	embedder Embedder
}

// NewVectorMemory connects to Chroma using the configured URL and
// collection name.
func NewVectorMemory(ctx context.Context, cfg *config.Config, embedder Embedder) (*VectorMemory, error) {
	index, err := NewChromaClient(ctx, cfg.ChromaURL, cfg.VectorCollection)
	if err != nil {
		return nil, err
	}
	return &VectorMemory{index: index, embedder: embedder}, nil
}

// NewVectorMemoryWithIndex wires an existing index, used by tests.
func NewVectorMemoryWithIndex(index vectorIndex, embedder Embedder) *VectorMemory {
	return &VectorMemory{index: index, embedder: embedder}
}

// Document is one memory entry.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]interface{}
}

// ScoredDocument is a retrieved document with a similarity score in
// [0, 1], higher meaning closer.
type ScoredDocument struct {
	Document
	Score float64
}

// AddTexts embeds and stores plain texts, returning generated ids.
func (vm *VectorMemory) AddTexts(ctx context.Context, texts []string, metadatas []map[string]interface{}) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings, err := vm.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(texts))
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	if err := vm.index.Add(ctx, ids, embeddings, texts, metadatas); err != nil {
		return nil, err
	}
	return ids, nil
}

// AddDocuments stores documents, generating ids where absent.
func (vm *VectorMemory) AddDocuments(ctx context.Context, docs []*Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(docs))
	ids := make([]string, len(docs))
	metadatas := make([]map[string]interface{}, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		ids[i] = doc.ID
		metadatas[i] = doc.Metadata
	}

	embeddings, err := vm.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if err := vm.index.Add(ctx, ids, embeddings, texts, metadatas); err != nil {
		return nil, err
	}
	return ids, nil
}

// SimilaritySearch returns the k most similar documents with scores.
func (vm *VectorMemory) SimilaritySearch(ctx context.Context, query string, k int) ([]*ScoredDocument, error) {
	if k <= 0 {
		k = 5
	}

	embeddings, err := vm.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	results, err := vm.index.Query(ctx, embeddings[0], k, false)
	if err != nil {
		return nil, err
	}

	out := make([]*ScoredDocument, 0, len(results))
	for _, r := range results {
		out = append(out, &ScoredDocument{
			Document: Document{ID: r.ID, Text: r.Document, Metadata: r.Metadata},
			// Cosine distance in [0, 2] maps to similarity in [0, 1].
			Score: 1 - r.Distance/2,
		})
	}
	return out, nil
}

// MMRSearch performs maximal-marginal-relevance search: fetchK
// candidates are retrieved, then k results are picked balancing query
// relevance against diversity. lambda 1 is pure relevance, 0 pure
// diversity.
func (vm *VectorMemory) MMRSearch(ctx context.Context, query string, k, fetchK int, lambda float64) ([]*ScoredDocument, error) {
	if k <= 0 {
		k = 5
	}
	if fetchK < k {
		fetchK = k * 4
	}
	if lambda < 0 || lambda > 1 {
		lambda = 0.5
	}

	embeddings, err := vm.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	queryVec := embeddings[0]

	candidates, err := vm.index.Query(ctx, queryVec, fetchK, true)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	picked := mmrSelect(queryVec, candidates, k, lambda)
	out := make([]*ScoredDocument, 0, len(picked))
	for _, r := range picked {
		out = append(out, &ScoredDocument{
			Document: Document{ID: r.ID, Text: r.Document, Metadata: r.Metadata},
			Score:    1 - r.Distance/2,
		})
	}
	return out, nil
}

// mmrSelect greedily picks k candidates maximizing
// lambda*sim(query, d) - (1-lambda)*max sim(d, picked).
func mmrSelect(queryVec []float64, candidates []*QueryResult, k int, lambda float64) []*QueryResult {
	if k > len(candidates) {
		k = len(candidates)
	}

	remaining := make([]*QueryResult, len(candidates))
	copy(remaining, candidates)

	picked := make([]*QueryResult, 0, k)
	for len(picked) < k && len(remaining) > 0 {
		bestIdx := -1
		bestScore := math.Inf(-1)
		for i, cand := range remaining {
			relevance := CosineSimilarity(queryVec, cand.Embedding)
			redundancy := 0.0
			for _, p := range picked {
				if sim := CosineSimilarity(cand.Embedding, p.Embedding); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*relevance - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		picked = append(picked, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return picked
}

// Delete removes documents by id.
func (vm *VectorMemory) Delete(ctx context.Context, ids []string) error {
	return vm.index.Delete(ctx, ids)
}

// Stats summarizes the collection.
func (vm *VectorMemory) Stats(ctx context.Context) (map[string]interface{}, error) {
	count, err := vm.index.Count(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"documents": count}, nil
}

// CosineSimilarity computes the cosine of the angle between two
// vectors, 0 when either is empty or zero.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopKByScore sorts scored documents descending and truncates to k.
func TopKByScore(docs []*ScoredDocument, k int) []*ScoredDocument {
	sort.Slice(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })
	if k > 0 && len(docs) > k {
		return docs[:k]
	}
	return docs
}
