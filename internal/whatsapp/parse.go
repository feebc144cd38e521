package whatsapp

import (
	"encoding/json"
	"strings"
)

// IncomingMessage is a text message extracted from a webhook delivery.
type IncomingMessage struct {
	WaID         string
	Text         string
	CustomerName string
}

type contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type textMessage struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

type messagesPayload struct {
	Contacts []contact     `json:"contacts"`
	Messages []textMessage `json:"messages"`
}

type metaEnvelope struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Value messagesPayload `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ExtractIncomingMessage parses a webhook body into the first text
// message it carries. Three shapes are accepted, tried in order: the
// standard Meta Cloud API envelope, a bare array of message payloads,
// and a bare message payload object. Non-text deliveries (statuses,
// media, reactions) yield nil.
func ExtractIncomingMessage(body []byte) *IncomingMessage {
	var payload *messagesPayload

	var envelope metaEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Object == "whatsapp_business_account" {
		if len(envelope.Entry) > 0 && len(envelope.Entry[0].Changes) > 0 {
			value := envelope.Entry[0].Changes[0].Value
			if len(value.Messages) > 0 {
				payload = &value
			}
		}
	}

	if payload == nil {
		var list []messagesPayload
		if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 && len(list[0].Messages) > 0 {
			payload = &list[0]
		}
	}

	if payload == nil {
		var bare messagesPayload
		if err := json.Unmarshal(body, &bare); err == nil && len(bare.Messages) > 0 {
			payload = &bare
		}
	}

	if payload == nil {
		return nil
	}

	var msg *textMessage
	for i := range payload.Messages {
		if payload.Messages[i].Type == "text" {
			msg = &payload.Messages[i]
			break
		}
	}
	if msg == nil || msg.Text.Body == "" {
		return nil
	}

	waID := msg.From
	var name string
	if len(payload.Contacts) > 0 {
		if payload.Contacts[0].WaID != "" {
			waID = payload.Contacts[0].WaID
		}
		name = payload.Contacts[0].Profile.Name
	}

	return &IncomingMessage{WaID: waID, Text: msg.Text.Body, CustomerName: name}
}

// DigitsOnly strips everything but decimal digits from a phone number.
func DigitsOnly(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SessionID derives the stable conversation key for a customer number.
func SessionID(prefix, waID string) string {
	return prefix + DigitsOnly(waID)
}
