package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sender delivers outbound text messages via the WhatsApp Cloud API.
type Sender struct {
	apiBase       string
	phoneNumberID string
	accessToken   string
	httpClient    *http.Client
}

func NewSender(apiBase, phoneNumberID, accessToken string) *Sender {
	if apiBase == "" {
		apiBase = "https://graph.facebook.com/v20.0"
	}
	return &Sender{
		apiBase:       apiBase,
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether credentials are present.
func (s *Sender) Configured() bool {
	return s.phoneNumberID != "" && s.accessToken != ""
}

type outboundText struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// SendText sends a text message to a phone number. Non-digits in the
// number are stripped before sending.
func (s *Sender) SendText(ctx context.Context, phoneNumber, message string) error {
	if !s.Configured() {
		return fmt.Errorf("missing WhatsApp phone number id or access token")
	}

	payload := outboundText{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               DigitsOnly(phoneNumber),
		Type:             "text",
	}
	payload.Text.Body = message

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.apiBase, s.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("graph API error %d: %s", resp.StatusCode, string(errBody))
	}
	return nil
}
