package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"mentor/internal/logging"
)

const indexFile = "index.json"

// Searcher is the retrieval contract the advice pipeline consumes.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]SearchResult, error)
}

// Chunk is one embedded passage of source material.
type Chunk struct {
	Source    string    `json:"source"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// Index is an in-memory vector index over ingested documents, persisted
// as a single JSON file.
type Index struct {
	embedder EmbeddingProvider
	chunks   []Chunk
	mu       sync.RWMutex
}

// NewIndex creates an empty index backed by the given embedder.
func NewIndex(embedder EmbeddingProvider) *Index {
	return &Index{embedder: embedder}
}

// AddDocument chunks and embeds content under the given source label.
func (idx *Index) AddDocument(ctx context.Context, source, content string, chunker *Chunker) error {
	pieces := chunker.Chunk(content)
	if len(pieces) == 0 {
		return fmt.Errorf("document %s produced no chunks", source)
	}

	embeddings, err := idx.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return fmt.Errorf("embedding %s: %w", source, err)
	}
	if len(embeddings) != len(pieces) {
		return fmt.Errorf("embedding %s: got %d vectors for %d chunks", source, len(embeddings), len(pieces))
	}

	idx.mu.Lock()
	for i, piece := range pieces {
		idx.chunks = append(idx.chunks, Chunk{
			Source:    source,
			Content:   piece,
			Embedding: embeddings[i],
		})
	}
	idx.mu.Unlock()

	logging.Info("document indexed", "source", source, "chunks", len(pieces))
	return nil
}

// ChunkCount returns the number of indexed chunks.
func (idx *Index) ChunkCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

// Search embeds the query and returns the topK most similar chunks.
func (idx *Index) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	queryEmbedding, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	idx.mu.RLock()
	var results SearchResults
	for _, chunk := range idx.chunks {
		if chunk.Embedding == nil {
			continue
		}
		results = append(results, SearchResult{
			Source:  chunk.Source,
			Score:   CosineSimilarity(queryEmbedding, chunk.Embedding),
			Content: chunk.Content,
		})
	}
	idx.mu.RUnlock()

	sort.Sort(results)
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Save persists the index under dir.
func (idx *Index) Save(dir string) error {
	idx.mu.RLock()
	data, err := json.Marshal(idx.chunks)
	idx.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, indexFile), data, 0644)
}

// LoadIndex reads a persisted index from dir.
func LoadIndex(dir string, embedder EmbeddingProvider) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(dir, indexFile))
	if err != nil {
		return nil, fmt.Errorf("no knowledge index under %s (run the index command first): %w", dir, err)
	}
	idx := NewIndex(embedder)
	if err := json.Unmarshal(data, &idx.chunks); err != nil {
		return nil, fmt.Errorf("corrupt knowledge index: %w", err)
	}
	return idx, nil
}
