package knowledge

import (
	"context"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/wadesk/wadesk/internal/provider"
	"github.com/wadesk/wadesk/internal/store"
)

// DefaultTopK is how many chunks a search returns at most.
const DefaultTopK = 5

// Match is one knowledge chunk scored against a query.
type Match struct {
	ID         int64   `json:"id"`
	Source     string  `json:"source"`
	Content    string  `json:"content"`
	Similarity float32 `json:"similarity"`
}

// Searcher embeds queries and ranks stored chunks by cosine similarity.
// At the expected corpus size (<10K chunks) scoring in Go is
// sub-millisecond, so there is no vector index.
type Searcher struct {
	store    *store.Store
	embedder provider.Embedder
}

func NewSearcher(st *store.Store, embedder provider.Embedder) *Searcher {
	return &Searcher{store: st, embedder: embedder}
}

// Search returns the topK most similar chunks for the query. Retrieval
// is best-effort: an unconfigured embedder, an embedding failure, or a
// store failure all degrade to an empty result rather than an error.
func (s *Searcher) Search(ctx context.Context, query string, topK int) []Match {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil
	}
	if !s.embedder.Configured() {
		return nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	vectors, err := s.embedder.Embed(ctx, []string{trimmed})
	if err != nil || len(vectors) == 0 || len(vectors[0]) == 0 {
		if err != nil {
			log.Printf("knowledge: query embedding failed: %v", err)
		}
		return nil
	}
	queryVec := vectors[0]

	chunks, err := s.store.AllChunks()
	if err != nil {
		log.Printf("knowledge: loading chunks failed: %v", err)
		return nil
	}

	matches := make([]Match, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) != len(queryVec) {
			continue // dimension mismatch, skip
		}
		matches = append(matches, Match{
			ID:         c.ID,
			Source:     c.Source,
			Content:    c.Content,
			Similarity: cosineSimilarity(queryVec, c.Embedding),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// ListSources reports the sources currently in the knowledge base.
func (s *Searcher) ListSources() ([]store.SourceInfo, error) {
	return s.store.ListSources()
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}
