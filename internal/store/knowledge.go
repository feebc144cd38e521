package store

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"
)

// Chunk is one retrievable unit of ingested knowledge. Embeddings are stored
// as little-endian float32 BLOBs.
type Chunk struct {
	ID        int64
	Source    string
	Content   string
	Embedding []float32
	CreatedAt time.Time
}

// SourceInfo summarizes one source label for the dashboard.
type SourceInfo struct {
	Source     string    `json:"source"`
	ChunkCount int       `json:"chunkCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReplaceSourceChunks deletes all chunks under source and inserts the given
// contents with their embeddings in one transaction, so a re-ingested source
// is fully replaced, never merged.
func (s *Store) ReplaceSourceChunks(source string, contents []string, embeddings [][]float32) error {
	if len(contents) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(contents), len(embeddings))
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM knowledge_chunks WHERE source = ?`, source); err != nil {
		return fmt.Errorf("delete chunks for %s: %w", source, err)
	}

	now := time.Now().UTC()
	for i, content := range contents {
		_, err := tx.Exec(
			`INSERT INTO knowledge_chunks (source, content, embedding, created_at) VALUES (?, ?, ?, ?)`,
			source, content, encodeFloat32s(embeddings[i]), now,
		)
		if err != nil {
			return fmt.Errorf("insert chunk for %s: %w", source, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// DeleteChunksBySource removes all chunks under source. Deleting a
// nonexistent source is a no-op.
func (s *Store) DeleteChunksBySource(source string) error {
	if _, err := s.db.Exec(`DELETE FROM knowledge_chunks WHERE source = ?`, source); err != nil {
		return fmt.Errorf("delete chunks for %s: %w", source, err)
	}
	return nil
}

// AllChunks returns every stored chunk with its decoded embedding.
func (s *Store) AllChunks() ([]Chunk, error) {
	rows, err := s.db.Query(`SELECT id, source, content, embedding, created_at FROM knowledge_chunks`)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var (
			c    Chunk
			blob []byte
		)
		if err := rows.Scan(&c.ID, &c.Source, &c.Content, &blob, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		c.Embedding = decodeFloat32s(blob)
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk rows: %w", err)
	}
	return chunks, nil
}

// ListSources returns per-source chunk counts and the latest ingestion time,
// newest first. Aggregation happens in Go so timestamps scan through the
// driver's typed column path.
func (s *Store) ListSources() ([]SourceInfo, error) {
	rows, err := s.db.Query(`SELECT source, created_at FROM knowledge_chunks`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	bySource := make(map[string]*SourceInfo)
	var order []string
	for rows.Next() {
		var (
			source    string
			createdAt time.Time
		)
		if err := rows.Scan(&source, &createdAt); err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		info, ok := bySource[source]
		if !ok {
			info = &SourceInfo{Source: source}
			bySource[source] = info
			order = append(order, source)
		}
		info.ChunkCount++
		if createdAt.After(info.CreatedAt) {
			info.CreatedAt = createdAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source rows: %w", err)
	}

	sources := make([]SourceInfo, 0, len(order))
	for _, src := range order {
		sources = append(sources, *bySource[src])
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].CreatedAt.After(sources[j].CreatedAt)
	})
	return sources, nil
}

// encodeFloat32s converts a float32 slice to little-endian bytes.
func encodeFloat32s(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeFloat32s converts little-endian bytes back to a float32 slice.
func decodeFloat32s(b []byte) []float32 {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
