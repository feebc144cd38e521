package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Sender kinds for message payloads. Operator sends are recorded as SenderAI:
// both represent "the business side said X".
const (
	SenderHuman = "human"
	SenderAI    = "ai"
)

// fullPageSize is the page size used when reading a complete session history.
const fullPageSize = 500

// maxRecentLimit caps the bounded-tail read.
const maxRecentLimit = 500

// Customer is the denormalized customer descriptor stored with each message.
type Customer struct {
	Number string `json:"number"`
	Name   string `json:"name,omitempty"`
}

// Message is one entry in a conversation, immutable once written.
type Message struct {
	ID             int64     `json:"id"`
	SessionID      string    `json:"sessionId"`
	Sender         string    `json:"senderType"`
	Content        string    `json:"content"`
	CustomerNumber string    `json:"customerNumber"`
	CustomerName   string    `json:"customerName,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ConversationSummary is the per-session aggregate used by the dashboard list.
type ConversationSummary struct {
	SessionID             string     `json:"sessionId"`
	CustomerNumber        string     `json:"customerNumber"`
	CustomerName          string     `json:"customerName,omitempty"`
	LastMessageContent    string     `json:"lastMessageContent"`
	LastMessageAt         *time.Time `json:"lastMessageAt"`
	MessageCount          int        `json:"messageCount"`
	LastCustomerMessageID *int64     `json:"lastCustomerMessageId"`
}

// messagePayload is the tagged payload persisted in the message column, so
// that sender attribution survives format changes.
type messagePayload struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Body    string `json:"body,omitempty"`
}

// AppendMessage records a message for a session. The store assigns both the
// identity and the timestamp; concurrent appends for one session are ordered
// by arrival here.
func (s *Store) AppendMessage(sessionID, sender, content string, customer Customer) (int64, time.Time, error) {
	payload, err := json.Marshal(messagePayload{Type: sender, Content: content})
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("marshal message payload: %w", err)
	}
	cust, err := json.Marshal(customer)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("marshal customer: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO chatbot_history (session_id, message, customer, date_time) VALUES (?, ?, ?, ?)`,
		sessionID, string(payload), string(cust), now,
	)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("message id: %w", err)
	}
	return id, now, nil
}

// GetFullHistory returns every message for a session in chronological order
// (timestamp ascending, ties by identity ascending). It pages internally so
// the result is complete regardless of any single-read row limit.
func (s *Store) GetFullHistory(sessionID string) ([]Message, error) {
	var all []Message
	offset := 0
	for {
		page, err := s.historyPage(sessionID, fullPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < fullPageSize {
			return all, nil
		}
		offset += len(page)
	}
}

// GetRecentHistory returns the most recent limit messages for a session, in
// chronological order. It reads only the tail, never the full session.
func (s *Store) GetRecentHistory(sessionID string, limit int) ([]Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, message, customer, date_time
		 FROM chatbot_history WHERE session_id = ?
		 ORDER BY date_time DESC, id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	// Reverse into ascending order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *Store) historyPage(sessionID string, limit, offset int) ([]Message, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, message, customer, date_time
		 FROM chatbot_history WHERE session_id = ?
		 ORDER BY date_time ASC, id ASC LIMIT ? OFFSET ?`,
		sessionID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// ListConversations returns one summary per distinct session, sorted by most
// recent message timestamp descending. Sessions without a timestamp sort last.
func (s *Store) ListConversations() ([]ConversationSummary, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, message, customer, date_time
		 FROM chatbot_history ORDER BY date_time DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	// Rows arrive newest first, so the first row seen per session is its
	// most recent message.
	bySession := make(map[string]*ConversationSummary)
	var order []string
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		summary, ok := bySession[msg.SessionID]
		if !ok {
			at := msg.CreatedAt
			summary = &ConversationSummary{
				SessionID:          msg.SessionID,
				CustomerNumber:     msg.CustomerNumber,
				CustomerName:       msg.CustomerName,
				LastMessageContent: msg.Content,
				MessageCount:       0,
			}
			if !at.IsZero() {
				summary.LastMessageAt = &at
			}
			bySession[msg.SessionID] = summary
			order = append(order, msg.SessionID)
		}
		summary.MessageCount++
		if msg.Sender == SenderHuman && summary.LastCustomerMessageID == nil {
			id := msg.ID
			summary.LastCustomerMessageID = &id
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan conversations: %w", err)
	}

	// order already reflects timestamp-descending arrival with no-timestamp
	// sessions trailing; keep it stable.
	out := make([]ConversationSummary, 0, len(order))
	for _, sid := range order {
		out = append(out, *bySession[sid])
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (Message, error) {
	var (
		msg     Message
		rawMsg  string
		rawCust string
	)
	if err := row.Scan(&msg.ID, &msg.SessionID, &rawMsg, &rawCust, &msg.CreatedAt); err != nil {
		return Message{}, fmt.Errorf("scan message row: %w", err)
	}

	payload := parseMessagePayload([]byte(rawMsg))
	if payload.Type == SenderHuman {
		msg.Sender = SenderHuman
	} else {
		msg.Sender = SenderAI
	}
	msg.Content = payload.Content
	if msg.Content == "" {
		msg.Content = payload.Body
	}

	cust := parseCustomerPayload([]byte(rawCust))
	msg.CustomerNumber = cust.Number
	msg.CustomerName = cust.Name
	return msg, nil
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	var msgs []Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}
	return msgs, nil
}

// parseMessagePayload normalizes the message column, which may hold the JSON
// object directly or a previously-serialized JSON string wrapping it. Anything
// unparseable yields an empty payload, never an error.
func parseMessagePayload(raw []byte) messagePayload {
	var payload messagePayload
	if err := json.Unmarshal(raw, &payload); err == nil {
		return payload
	}
	var wrapped string
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if err := json.Unmarshal([]byte(wrapped), &payload); err == nil {
			return payload
		}
	}
	return messagePayload{}
}

func parseCustomerPayload(raw []byte) Customer {
	var cust Customer
	if err := json.Unmarshal(raw, &cust); err == nil {
		return cust
	}
	var wrapped string
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if err := json.Unmarshal([]byte(wrapped), &cust); err == nil {
			return cust
		}
	}
	return Customer{}
}
