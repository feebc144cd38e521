package knowledge

import (
	"context"
	"fmt"
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	if sim := cosineSimilarity([]float32{1, 0, 0}, []float32{1, 0, 0}); math.Abs(float64(sim)-1) > 1e-6 {
		t.Errorf("identical vectors should score 1, got %f", sim)
	}
	if sim := cosineSimilarity([]float32{1, 0, 0}, []float32{0, 1, 0}); sim != 0 {
		t.Errorf("orthogonal vectors should score 0, got %f", sim)
	}
	if sim := cosineSimilarity([]float32{1, 0, 0}, []float32{-1, 0, 0}); math.Abs(float64(sim)+1) > 1e-6 {
		t.Errorf("opposite vectors should score -1, got %f", sim)
	}
	if sim := cosineSimilarity([]float32{}, []float32{}); sim != 0 {
		t.Errorf("empty vectors should score 0, got %f", sim)
	}
	if sim := cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}); sim != 0 {
		t.Errorf("mismatched dimensions should score 0, got %f", sim)
	}
	if sim := cosineSimilarity([]float32{0, 0}, []float32{1, 1}); sim != 0 {
		t.Errorf("zero vector should score 0, got %f", sim)
	}
}

func TestSearchRanksBySimilarity(t *testing.T) {
	st := newTestStore(t)
	emb := newFakeEmbedder()
	emb.vectors = map[string][]float32{
		"shipping": {0, 1, 0},
		"pricing":  {0, 0, 1},
		"query":    {0, 0.9, 0.1},
	}
	ctx := context.Background()

	in := NewIngestor(st, emb)
	if _, err := in.Ingest(ctx, "shipping", "All about shipping times."); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := in.Ingest(ctx, "pricing", "All about pricing tiers."); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	s := NewSearcher(st, emb)
	matches := s.Search(ctx, "query about delivery", DefaultTopK)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Source != "shipping" {
		t.Errorf("expected shipping chunk first, got %q", matches[0].Source)
	}
	if matches[0].Similarity <= matches[1].Similarity {
		t.Errorf("matches not sorted by similarity: %f <= %f", matches[0].Similarity, matches[1].Similarity)
	}
}

func TestSearchAppliesTopK(t *testing.T) {
	st := newTestStore(t)
	emb := newFakeEmbedder()
	ctx := context.Background()

	in := NewIngestor(st, emb)
	for i := 0; i < 8; i++ {
		if _, err := in.Ingest(ctx, fmt.Sprintf("doc-%d", i), fmt.Sprintf("Document %d content.", i)); err != nil {
			t.Fatalf("ingest: %v", err)
		}
	}

	s := NewSearcher(st, emb)
	if got := len(s.Search(ctx, "anything", 3)); got != 3 {
		t.Errorf("expected 3 matches, got %d", got)
	}
	// Non-positive topK falls back to the default.
	if got := len(s.Search(ctx, "anything", 0)); got != DefaultTopK {
		t.Errorf("expected %d matches, got %d", DefaultTopK, got)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	s := NewSearcher(newTestStore(t), newFakeEmbedder())
	if got := s.Search(context.Background(), "   ", DefaultTopK); got != nil {
		t.Errorf("expected nil for blank query, got %v", got)
	}
}

func TestSearchDegradesOnFailure(t *testing.T) {
	st := newTestStore(t)
	emb := newFakeEmbedder()
	ctx := context.Background()

	in := NewIngestor(st, emb)
	if _, err := in.Ingest(ctx, "faq", "Some answer."); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	emb.configured = false
	s := NewSearcher(st, emb)
	if got := s.Search(ctx, "question", DefaultTopK); got != nil {
		t.Errorf("unconfigured embedder should return no matches, got %v", got)
	}

	emb.configured = true
	emb.err = fmt.Errorf("provider down")
	if got := s.Search(ctx, "question", DefaultTopK); got != nil {
		t.Errorf("embedding failure should return no matches, got %v", got)
	}
}

func TestSearchSkipsDimensionMismatch(t *testing.T) {
	st := newTestStore(t)
	emb := newFakeEmbedder()
	ctx := context.Background()

	in := NewIngestor(st, emb)
	if _, err := in.Ingest(ctx, "faq", "Some answer."); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	// Queries now embed into a different dimension than stored chunks.
	emb.fallback = []float32{1, 0}
	s := NewSearcher(st, emb)
	if got := s.Search(ctx, "question", DefaultTopK); len(got) != 0 {
		t.Errorf("mismatched dimensions should yield no matches, got %v", got)
	}
}

func TestListSources(t *testing.T) {
	st := newTestStore(t)
	emb := newFakeEmbedder()
	ctx := context.Background()

	in := NewIngestor(st, emb)
	if _, err := in.Ingest(ctx, "faq", "Answer."); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	s := NewSearcher(st, emb)
	sources, err := s.ListSources()
	if err != nil {
		t.Fatalf("listing sources: %v", err)
	}
	if len(sources) != 1 || sources[0].Source != "faq" || sources[0].ChunkCount != 1 {
		t.Errorf("unexpected sources %+v", sources)
	}
}
