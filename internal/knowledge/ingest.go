package knowledge

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/wadesk/wadesk/internal/provider"
	"github.com/wadesk/wadesk/internal/store"
)

// embeddingBatchSize caps how many chunks go into a single embeddings
// request.
const embeddingBatchSize = 50

// Document is a named piece of pre-extracted text to ingest.
type Document struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// IngestResult reports the outcome of ingesting one source.
type IngestResult struct {
	Source         string `json:"source"`
	ChunksInserted int    `json:"chunksInserted"`
	Error          string `json:"error,omitempty"`
}

// Ingestor chunks and embeds content into the knowledge store.
type Ingestor struct {
	store    *store.Store
	embedder provider.Embedder
}

func NewIngestor(st *store.Store, embedder provider.Embedder) *Ingestor {
	return &Ingestor{store: st, embedder: embedder}
}

// Ingest replaces all chunks for a source with freshly chunked and
// embedded content. Embedding happens before any deletion, so a failed
// embedding call leaves existing chunks untouched.
func (in *Ingestor) Ingest(ctx context.Context, source, content string) (int, error) {
	chunks := ChunkText(content, DefaultMaxChars, DefaultOverlap)
	if len(chunks) == 0 {
		return 0, nil
	}
	if !in.embedder.Configured() {
		return 0, fmt.Errorf("embeddings failed: provider not configured")
	}

	embeddings := make([][]float32, 0, len(chunks))
	for i := 0; i < len(chunks); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		vectors, err := in.embedder.Embed(ctx, chunks[i:end])
		if err != nil {
			return 0, fmt.Errorf("embeddings failed: %w", err)
		}
		embeddings = append(embeddings, vectors...)
	}

	if err := in.store.ReplaceSourceChunks(source, chunks, embeddings); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}
	return len(chunks), nil
}

// IngestDocuments ingests a set of documents. With a non-empty
// mergedSource the texts are joined and stored under that single
// source; otherwise each document becomes its own source derived from
// its name. Per-document failures are reported in the results rather
// than aborting the batch.
func (in *Ingestor) IngestDocuments(ctx context.Context, docs []Document, mergedSource string) []IngestResult {
	if mergedSource != "" {
		texts := make([]string, 0, len(docs))
		for _, d := range docs {
			if t := strings.TrimSpace(d.Text); t != "" {
				texts = append(texts, t)
			}
		}
		combined := strings.Join(texts, "\n\n---\n\n")
		if strings.TrimSpace(combined) == "" {
			return []IngestResult{{Source: mergedSource, Error: "no text could be extracted from any document"}}
		}
		count, err := in.Ingest(ctx, mergedSource, combined)
		res := IngestResult{Source: mergedSource, ChunksInserted: count}
		if err != nil {
			res.Error = err.Error()
		}
		return []IngestResult{res}
	}

	var results []IngestResult
	for _, d := range docs {
		if d.Name == "" {
			continue
		}
		source := SourceFromFilename(d.Name)
		if strings.TrimSpace(d.Text) == "" {
			results = append(results, IngestResult{Source: source, Error: "no text could be extracted"})
			continue
		}
		count, err := in.Ingest(ctx, source, d.Text)
		res := IngestResult{Source: source, ChunksInserted: count}
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

// DeleteSource removes every chunk stored under the source.
func (in *Ingestor) DeleteSource(source string) error {
	return in.store.DeleteChunksBySource(source)
}

var docExtension = regexp.MustCompile(`(?i)\.(md|pdf|docx?)$`)

// SourceFromFilename derives a source name by stripping a known document
// extension. Falls back to the full name when stripping leaves nothing.
func SourceFromFilename(name string) string {
	source := strings.TrimSpace(docExtension.ReplaceAllString(name, ""))
	if source == "" {
		return name
	}
	return source
}
