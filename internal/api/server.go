package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wadesk/wadesk/internal/knowledge"
	"github.com/wadesk/wadesk/internal/settings"
	"github.com/wadesk/wadesk/internal/store"
)

// Replier produces an assistant answer for an inbound message.
type Replier interface {
	Reply(ctx context.Context, sessionID, userMessage, customerPhone, customerName string) string
}

// MessageSender delivers outbound text to a customer number.
type MessageSender interface {
	Configured() bool
	SendText(ctx context.Context, phoneNumber, message string) error
}

// Server is the HTTP surface: the provider webhook plus the dashboard
// read/write API.
type Server struct {
	store    *store.Store
	settings *settings.Service
	agent    Replier
	sender   MessageSender
	ingestor *knowledge.Ingestor
	searcher *knowledge.Searcher

	verifyToken   string
	authToken     string
	sessionPrefix string

	metrics *metrics
}

// Options carries the collaborators and secrets the server needs.
type Options struct {
	Store         *store.Store
	Settings      *settings.Service
	Agent         Replier
	Sender        MessageSender
	Ingestor      *knowledge.Ingestor
	Searcher      *knowledge.Searcher
	VerifyToken   string
	AuthToken     string
	SessionPrefix string
	Registry      prometheus.Registerer
}

func NewServer(opts Options) *Server {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Server{
		store:         opts.Store,
		settings:      opts.Settings,
		agent:         opts.Agent,
		sender:        opts.Sender,
		ingestor:      opts.Ingestor,
		searcher:      opts.Searcher,
		verifyToken:   opts.VerifyToken,
		authToken:     opts.AuthToken,
		sessionPrefix: opts.SessionPrefix,
		metrics:       newMetrics(reg),
	}
}

// Router assembles the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(s.metrics.instrument)

	r.Get("/api/whatsapp/webhook", s.handleWebhookVerify)
	r.Post("/api/whatsapp/webhook", s.handleWebhookDelivery)

	r.Get("/api/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/api/conversations", s.handleListConversations)
		r.Get("/api/conversations/{sessionID}", s.handleGetConversation)

		r.Get("/api/control", s.handleGetControl)
		r.Post("/api/control", s.handleSetControl)

		r.Post("/api/send", s.handleSendMessage)

		r.Get("/api/settings", s.handleGetSettings)
		r.Put("/api/settings", s.handleSetSettings)
		r.Post("/api/settings", s.handleSetSettings)

		r.Get("/api/knowledge", s.handleListKnowledge)
		r.Post("/api/knowledge", s.handleIngestKnowledge)
		r.Post("/api/knowledge/upload", s.handleUploadKnowledge)
		r.Delete("/api/knowledge/{source}", s.handleDeleteKnowledge)
	})

	return r
}

// requireAuth gates the dashboard API behind a static bearer token. An
// unset token disables the dashboard entirely rather than leaving it
// open.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			respondError(w, http.StatusUnauthorized, "dashboard auth token not configured")
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DB().PingContext(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("api: encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
