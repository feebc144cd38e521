package agent

import (
	"context"
	"log"
	"strings"

	"github.com/wadesk/wadesk/internal/knowledge"
	"github.com/wadesk/wadesk/internal/provider"
	"github.com/wadesk/wadesk/internal/settings"
	"github.com/wadesk/wadesk/internal/store"
)

// historyLimit caps how many prior log messages are replayed into the
// model context.
const historyLimit = 20

const (
	notConfiguredReply = "Sorry, the assistant is not configured. Please try again later."
	emptyReply         = "I didn't get a response. Please try again."
)

// SettingsSource resolves the effective mode settings.
type SettingsSource interface {
	Get() settings.ModeSettings
}

// KnowledgeSearcher retrieves knowledge matches for a query.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, topK int) []knowledge.Match
}

// HistorySource loads prior conversation messages.
type HistorySource interface {
	GetRecentHistory(sessionID string, limit int) ([]store.Message, error)
}

// Agent produces replies for inbound customer messages. It is a pure
// function of (session, message, settings, knowledge, history): the
// caller persists both sides of the exchange.
type Agent struct {
	completer provider.Completer
	settings  SettingsSource
	searcher  KnowledgeSearcher
	history   HistorySource
}

func New(completer provider.Completer, st SettingsSource, searcher KnowledgeSearcher, history HistorySource) *Agent {
	return &Agent{
		completer: completer,
		settings:  st,
		searcher:  searcher,
		history:   history,
	}
}

// Reply builds the model context for a session and returns the
// assistant's answer. Without completion credentials it fails closed
// with a static degraded-mode message.
func (a *Agent) Reply(ctx context.Context, sessionID, userMessage, customerPhone, customerName string) string {
	if !a.completer.Configured() {
		return notConfiguredReply
	}

	mode := a.settings.Get()
	systemPrompt := mode.SystemPrompt

	if a.searcher != nil {
		matches := a.searcher.Search(ctx, userMessage, knowledge.DefaultTopK)
		if len(matches) > 0 {
			var b strings.Builder
			b.WriteString(systemPrompt)
			b.WriteString("\n\nUse the following context to answer when relevant. ")
			b.WriteString("If the context does not cover the question, say you are not sure.\n")
			for _, m := range matches {
				b.WriteString("\n---\n")
				b.WriteString(m.Content)
			}
			systemPrompt = b.String()
		}
	}

	messages := []provider.Message{{Role: "system", Content: systemPrompt}}

	if a.history != nil {
		rows, err := a.history.GetRecentHistory(sessionID, historyLimit)
		if err != nil {
			log.Printf("agent: loading history for %s failed: %v", sessionID, err)
		}
		for _, row := range rows {
			if row.Content == "" {
				continue
			}
			role := "assistant"
			if row.Sender == store.SenderHuman {
				role = "user"
			}
			messages = append(messages, provider.Message{Role: role, Content: row.Content})
		}
	}

	messages = append(messages, provider.Message{Role: "user", Content: userMessage})

	resp, err := a.completer.Chat(ctx, &provider.ChatRequest{
		Messages: messages,
		Model:    mode.Model,
	})
	if err != nil {
		log.Printf("agent: completion for %s failed: %v", sessionID, err)
		return emptyReply
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return emptyReply
	}
	return content
}
