package api

import (
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/wadesk/wadesk/internal/store"
	"github.com/wadesk/wadesk/internal/whatsapp"
)

// maxWebhookBody caps how much of a delivery body is read.
const maxWebhookBody = 1 << 20

// handleWebhookVerify answers the Meta verification handshake: echo the
// challenge iff the mode and token match.
func (s *Server) handleWebhookVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && s.verifyToken != "" && token == s.verifyToken {
		log.Printf("webhook: verification successful")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(challenge))
		return
	}

	log.Printf("webhook: verification failed, token mismatch or bad mode")
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// handleWebhookDelivery processes one inbound delivery. The response is
// always 200 so the provider never retries; every internal failure is
// logged and swallowed.
func (s *Server) handleWebhookDelivery(w http.ResponseWriter, r *http.Request) {
	defer respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	trace := uuid.NewString()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		log.Printf("webhook[%s]: reading body: %v", trace, err)
		return
	}

	msg := whatsapp.ExtractIncomingMessage(body)
	if msg == nil {
		log.Printf("webhook[%s]: no actionable text message in payload", trace)
		return
	}

	digits := whatsapp.DigitsOnly(msg.WaID)
	sessionID := whatsapp.SessionID(s.sessionPrefix, msg.WaID)
	log.Printf("webhook[%s]: message from %s (session %s)", trace, digits, sessionID)

	customer := store.Customer{Number: digits, Name: msg.CustomerName}

	// Every received message is recorded, replied to or not.
	if _, _, err := s.store.AppendMessage(sessionID, store.SenderHuman, msg.Text, customer); err != nil {
		log.Printf("webhook[%s]: logging inbound message: %v", trace, err)
	}

	if !s.settings.IsAllowedForAI(digits) {
		log.Printf("webhook[%s]: %s not in allowlist, skipping reply", trace, digits)
		return
	}

	if s.store.IsHumanInControl(sessionID) {
		log.Printf("webhook[%s]: human controls %s, skipping reply", trace, sessionID)
		return
	}

	reply := s.agent.Reply(r.Context(), sessionID, msg.Text, digits, msg.CustomerName)

	if err := s.sender.SendText(r.Context(), digits, reply); err != nil {
		log.Printf("webhook[%s]: sending reply: %v", trace, err)
	}

	// The log reflects what the assistant decided to say even when
	// delivery failed.
	if _, _, err := s.store.AppendMessage(sessionID, store.SenderAI, reply, customer); err != nil {
		log.Printf("webhook[%s]: logging reply: %v", trace, err)
	}
}
