package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendText(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"messages": []map[string]string{{"id": "wamid.OUT"}}})
	}))
	defer srv.Close()

	s := NewSender(srv.URL, "555001", "token-abc")
	if err := s.SendText(context.Background(), "+27 83 111 2222", "Your order shipped."); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/555001/messages" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer token-abc" {
		t.Errorf("unexpected auth %q", gotAuth)
	}
	if gotBody["messaging_product"] != "whatsapp" || gotBody["recipient_type"] != "individual" {
		t.Errorf("unexpected envelope %+v", gotBody)
	}
	if gotBody["to"] != "27831112222" {
		t.Errorf("recipient should be digits only, got %v", gotBody["to"])
	}
	text, _ := gotBody["text"].(map[string]any)
	if text["body"] != "Your order shipped." {
		t.Errorf("unexpected body %+v", gotBody["text"])
	}
}

func TestSendTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid token"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewSender(srv.URL, "555001", "bad-token")
	if err := s.SendText(context.Background(), "27831112222", "hi"); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestSendTextMissingCredentials(t *testing.T) {
	s := NewSender("", "", "")
	if s.Configured() {
		t.Error("expected unconfigured sender")
	}
	if err := s.SendText(context.Background(), "27831112222", "hi"); err == nil {
		t.Fatal("expected error without credentials")
	}
}
