package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder maps texts to fixed three-dimensional vectors keyed by
// a leading tag word.
type stubEmbedder struct {
	vectors map[string][]float64
}

func (se *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		tag := strings.Fields(text)[0]
		vec, ok := se.vectors[tag]
		if !ok {
			vec = []float64{0, 0, 1}
		}
		out[i] = vec
	}
	return out, nil
}

// fakeIndex is an in-process vectorIndex backed by exact cosine search.
type fakeIndex struct {
	docs []*QueryResult
}

func (fi *fakeIndex) Add(_ context.Context, ids []string, embeddings [][]float64, documents []string, metadatas []map[string]interface{}) error {
	for i := range ids {
		var meta map[string]interface{}
		if len(metadatas) == len(ids) {
			meta = metadatas[i]
		}
		fi.docs = append(fi.docs, &QueryResult{
			ID:        ids[i],
			Document:  documents[i],
			Metadata:  meta,
			Embedding: embeddings[i],
		})
	}
	return nil
}

func (fi *fakeIndex) Query(_ context.Context, embedding []float64, nResults int, _ bool) ([]*QueryResult, error) {
	results := make([]*QueryResult, 0, len(fi.docs))
	for _, doc := range fi.docs {
		copied := *doc
		copied.Distance = 1 - CosineSimilarity(embedding, doc.Embedding)
		results = append(results, &copied)
	}
	for i := 0; i < len(results); i++ {
		for j := i + 1; j < len(results); j++ {
			if results[j].Distance < results[i].Distance {
				results[i], results[j] = results[j], results[i]
			}
		}
	}
	if len(results) > nResults {
		results = results[:nResults]
	}
	return results, nil
}

func (fi *fakeIndex) Delete(_ context.Context, ids []string) error {
	keep := fi.docs[:0]
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	for _, doc := range fi.docs {
		if !drop[doc.ID] {
			keep = append(keep, doc)
		}
	}
	fi.docs = keep
	return nil
}

func (fi *fakeIndex) Count(_ context.Context) (int, error) {
	return len(fi.docs), nil
}

func newTestMemory() (*VectorMemory, *fakeIndex) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"rates":  {1, 0, 0},
		"hikes":  {0.95, 0.05, 0},
		"chips":  {0, 1, 0},
		"energy": {0, 0, 1},
	}}
	index := &fakeIndex{}
	return NewVectorMemoryWithIndex(index, embedder), index
}

func TestSimilaritySearchRanksByCloseness(t *testing.T) {
	vm, _ := newTestMemory()
	ctx := context.Background()

	_, err := vm.AddTexts(ctx, []string{
		"rates the Fed held steady",
		"chips foundry capacity expands",
		"energy crude inventories fell",
	}, nil)
	require.NoError(t, err)

	results, err := vm.SimilaritySearch(ctx, "rates outlook", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Contains(t, results[0].Text, "Fed")
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMMRSearchPrefersDiversity(t *testing.T) {
	vm, _ := newTestMemory()
	ctx := context.Background()

	_, err := vm.AddTexts(ctx, []string{
		"rates the Fed held steady",
		"hikes another hike is priced in",
		"chips foundry capacity expands",
	}, nil)
	require.NoError(t, err)

	// Pure relevance keeps the two near-duplicate rate documents.
	relevant, err := vm.MMRSearch(ctx, "rates outlook", 2, 3, 1.0)
	require.NoError(t, err)
	require.Len(t, relevant, 2)
	assert.Contains(t, relevant[0].Text+relevant[1].Text, "hike")

	// Diversity-weighted search swaps the duplicate for the chip doc.
	diverse, err := vm.MMRSearch(ctx, "rates outlook", 2, 3, 0.1)
	require.NoError(t, err)
	require.Len(t, diverse, 2)
	assert.Contains(t, diverse[0].Text+diverse[1].Text, "foundry")
}

func TestAddDocumentsAndDelete(t *testing.T) {
	vm, index := newTestMemory()
	ctx := context.Background()

	ids, err := vm.AddDocuments(ctx, []*Document{
		{Text: "rates note", Metadata: map[string]interface{}{"kind": "note"}},
		{ID: "fixed-id", Text: "chips note"},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, "fixed-id", ids[1])

	stats, err := vm.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats["documents"])

	require.NoError(t, vm.Delete(ctx, []string{"fixed-id"}))
	count, _ := index.Count(ctx)
	assert.Equal(t, 1, count)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 0}, []float64{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 3}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity(nil, []float64{1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 1}))
}
