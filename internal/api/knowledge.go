package api

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wadesk/wadesk/internal/knowledge"
	"github.com/wadesk/wadesk/internal/store"
)

func (s *Server) handleListKnowledge(w http.ResponseWriter, r *http.Request) {
	sources, err := s.searcher.ListSources()
	if err != nil {
		log.Printf("api: listing knowledge sources: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load sources")
		return
	}
	if sources == nil {
		sources = []store.SourceInfo{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"sources": sources})
}

// handleIngestKnowledge ingests raw text under a source label,
// replacing whatever the label held before.
func (s *Server) handleIngestKnowledge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Source  string `json:"source"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	source := strings.TrimSpace(body.Source)
	if source == "" {
		respondError(w, http.StatusBadRequest, "source is required")
		return
	}

	count, err := s.ingestor.Ingest(r.Context(), source, body.Content)
	if err != nil {
		log.Printf("api: ingesting %q: %v", source, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "chunksInserted": count})
}

// handleUploadKnowledge ingests one or more pre-extracted documents.
// Text extraction from binary formats happens upstream; this endpoint
// takes name/text pairs. An optional source label merges all documents
// under one label.
func (s *Server) handleUploadKnowledge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Source    string               `json:"source"`
		Documents []knowledge.Document `json:"documents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(body.Documents) == 0 {
		respondError(w, http.StatusBadRequest, "no documents provided")
		return
	}

	results := s.ingestor.IngestDocuments(r.Context(), body.Documents, strings.TrimSpace(body.Source))

	hasError := false
	for _, res := range results {
		if res.Error != "" {
			hasError = true
			log.Printf("api: uploading %q: %s", res.Source, res.Error)
		}
	}

	status := http.StatusOK
	if hasError {
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, map[string]any{"success": !hasError, "results": results})
}

func (s *Server) handleDeleteKnowledge(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "source")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	source := strings.TrimSpace(decoded)
	if source == "" {
		respondError(w, http.StatusBadRequest, "source is required")
		return
	}

	if err := s.ingestor.DeleteSource(source); err != nil {
		log.Printf("api: deleting %q: %v", source, err)
		respondError(w, http.StatusInternalServerError, "failed to delete source")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
