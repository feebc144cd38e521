// Package settings manages the global AI mode settings singleton: reply mode,
// number allowlist, system prompt, and model id.
package settings

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wadesk/wadesk/internal/store"
)

// settingKey is the fixed settings-row key for the singleton.
const settingKey = "whatsapp_ai"

// DefaultSystemPrompt is used when no prompt has been configured.
const DefaultSystemPrompt = "You are a helpful WhatsApp assistant. Be concise and professional. " +
	"If you don't know something or the user asks for a human, say so."

// DefaultModel is used when no model has been configured.
const DefaultModel = "gpt-4o-mini"

// ModeSettings is the resolved settings singleton. Live mode means the AI
// replies to everyone; dev mode restricts replies to the allowlist.
type ModeSettings struct {
	DevMode        bool     `json:"devMode"`
	AllowedNumbers []string `json:"allowedNumbers"`
	SystemPrompt   string   `json:"systemPrompt"`
	Model          string   `json:"model"`
}

// Update carries a partial settings change. Nil fields are preserved, not
// reset.
type Update struct {
	DevMode        *bool     `json:"devMode,omitempty"`
	AllowedNumbers *[]string `json:"allowedNumbers,omitempty"`
	SystemPrompt   *string   `json:"systemPrompt,omitempty"`
	Model          *string   `json:"model,omitempty"`
}

// Service reads and writes mode settings through the store. Every call reads
// current truth; nothing is cached across requests.
type Service struct {
	store    *store.Store
	defaults ModeSettings
}

// NewService creates a settings service. defaultAllowedNumber seeds the
// allowlist used when no settings row exists yet.
func NewService(st *store.Store, defaultAllowedNumber string) *Service {
	defaults := ModeSettings{
		DevMode:      true,
		SystemPrompt: DefaultSystemPrompt,
		Model:        DefaultModel,
	}
	if n := NormalizeNumber(defaultAllowedNumber); n != "" {
		defaults.AllowedNumbers = []string{n}
	}
	return &Service{store: st, defaults: defaults}
}

// NormalizeNumber strips everything but digits (e.g. "+27 69..." -> "2769...").
func NormalizeNumber(num string) string {
	var b strings.Builder
	for _, r := range num {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Get returns the current mode settings, applying defaults for a missing row
// and for any missing or invalid field.
func (s *Service) Get() ModeSettings {
	raw, err := s.store.GetSetting(settingKey)
	if err != nil {
		// Missing row and read failure both resolve to defaults rather than
		// blocking the caller.
		return s.defaults
	}

	var stored struct {
		DevMode        *bool    `json:"devMode"`
		AllowedNumbers []string `json:"allowedNumbers"`
		SystemPrompt   string   `json:"systemPrompt"`
		Model          string   `json:"model"`
	}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return s.defaults
	}

	out := s.defaults
	if stored.DevMode != nil {
		out.DevMode = *stored.DevMode
	}
	if allowed := normalizeNumbers(stored.AllowedNumbers); len(allowed) > 0 {
		out.AllowedNumbers = allowed
	}
	if prompt := strings.TrimSpace(stored.SystemPrompt); prompt != "" {
		out.SystemPrompt = prompt
	}
	if model := strings.TrimSpace(stored.Model); model != "" {
		out.Model = model
	}
	return out
}

// Set merges the update onto current values and persists the result. Numbers
// are stored as digits only.
func (s *Service) Set(u Update) error {
	next := s.Get()

	if u.DevMode != nil {
		next.DevMode = *u.DevMode
	}
	if u.AllowedNumbers != nil {
		next.AllowedNumbers = normalizeNumbers(*u.AllowedNumbers)
	}
	if u.SystemPrompt != nil {
		if prompt := strings.TrimSpace(*u.SystemPrompt); prompt != "" {
			next.SystemPrompt = prompt
		}
	}
	if u.Model != nil {
		if model := strings.TrimSpace(*u.Model); model != "" {
			next.Model = model
		} else {
			next.Model = DefaultModel
		}
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return s.store.SetSetting(settingKey, string(raw))
}

// IsAllowedForAI reports whether the given number may receive AI replies.
// Live mode allows everyone; dev mode requires allowlist membership.
func (s *Service) IsAllowedForAI(waIDDigits string) bool {
	cfg := s.Get()
	if !cfg.DevMode {
		return true
	}
	normalized := NormalizeNumber(waIDDigits)
	if normalized == "" {
		return false
	}
	for _, n := range cfg.AllowedNumbers {
		if n == normalized {
			return true
		}
	}
	return false
}

func normalizeNumbers(nums []string) []string {
	out := make([]string, 0, len(nums))
	for _, n := range nums {
		if normalized := NormalizeNumber(n); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}
