package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wadesk/wadesk/internal/settings"
	"github.com/wadesk/wadesk/internal/store"
	"github.com/wadesk/wadesk/internal/whatsapp"
)

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := s.store.ListConversations()
	if err != nil {
		log.Printf("api: listing conversations: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load conversations")
		return
	}
	if conversations == nil {
		conversations = []store.ConversationSummary{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "sessionID required")
		return
	}

	var messages []store.Message
	var err error
	if raw := r.URL.Query().Get("recent"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "recent must be a positive integer")
			return
		}
		messages, err = s.store.GetRecentHistory(sessionID, n)
	} else {
		messages, err = s.store.GetFullHistory(sessionID)
	}
	if err != nil {
		log.Printf("api: loading messages for %s: %v", sessionID, err)
		respondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if messages == nil {
		messages = []store.Message{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (s *Server) handleGetControl(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "sessionId required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{
		"isHumanInControl": s.store.IsHumanInControl(sessionID),
	})
}

func (s *Server) handleSetControl(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID        string `json:"sessionId"`
		IsHumanInControl *bool  `json:"isHumanInControl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	sessionID := strings.TrimSpace(body.SessionID)
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "sessionId required")
		return
	}
	if body.IsHumanInControl == nil {
		respondError(w, http.StatusBadRequest, "isHumanInControl must be a boolean")
		return
	}

	if err := s.store.SetHumanControl(sessionID, *body.IsHumanInControl); err != nil {
		log.Printf("api: setting control for %s: %v", sessionID, err)
		respondError(w, http.StatusInternalServerError, "failed to update human control")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type sendMessageResponse struct {
	Success  bool      `json:"success"`
	ID       int64     `json:"id"`
	DateTime time.Time `json:"date_time"`
}

// handleSendMessage is the operator's manual send: deliver first, then
// log as an ai-side message so the history reflects what the business
// said.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message        string `json:"message"`
		CustomerName   string `json:"customerName"`
		CustomerNumber string `json:"customerNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	message := strings.TrimSpace(body.Message)
	customerNumber := strings.TrimSpace(body.CustomerNumber)
	if message == "" || customerNumber == "" {
		respondError(w, http.StatusBadRequest, "message and customerNumber are required")
		return
	}

	customer := store.Customer{
		Number: whatsapp.DigitsOnly(customerNumber),
		Name:   strings.TrimSpace(body.CustomerName),
	}

	if err := s.sender.SendText(r.Context(), customer.Number, message); err != nil {
		log.Printf("api: operator send to %s: %v", customer.Number, err)
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	sessionID := whatsapp.SessionID(s.sessionPrefix, customerNumber)
	id, createdAt, err := s.store.AppendMessage(sessionID, store.SenderAI, message, customer)
	if err != nil {
		log.Printf("api: logging operator message for %s: %v", sessionID, err)
		respondError(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	respondJSON(w, http.StatusOK, sendMessageResponse{Success: true, ID: id, DateTime: createdAt})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.settings.Get())
}

// handleSetSettings merges a partial update and echoes the effective
// settings back.
func (s *Server) handleSetSettings(w http.ResponseWriter, r *http.Request) {
	var update settings.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.settings.Set(update); err != nil {
		log.Printf("api: saving settings: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	respondJSON(w, http.StatusOK, s.settings.Get())
}
