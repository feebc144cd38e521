package whatsapp

import "testing"

const metaPayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "123456",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "metadata": {"display_phone_number": "15550001111", "phone_number_id": "999"},
        "contacts": [{"profile": {"name": "Thandi M"}, "wa_id": "27831112222"}],
        "messages": [{"from": "27831112222", "id": "wamid.X", "timestamp": "1717000000", "type": "text", "text": {"body": "Hi, do you deliver?"}}]
      }
    }]
  }]
}`

const arrayPayload = `[{
  "contacts": [{"wa_id": "27830009999"}],
  "messages": [{"from": "27830009999", "type": "text", "text": {"body": "array style"}}]
}]`

const barePayload = `{
  "messages": [{"from": "+27 83 000 1111", "type": "text", "text": {"body": "bare style"}}]
}`

func TestExtractMetaEnvelope(t *testing.T) {
	msg := ExtractIncomingMessage([]byte(metaPayload))
	if msg == nil {
		t.Fatal("expected a parsed message")
	}
	if msg.WaID != "27831112222" {
		t.Errorf("unexpected wa id %q", msg.WaID)
	}
	if msg.Text != "Hi, do you deliver?" {
		t.Errorf("unexpected text %q", msg.Text)
	}
	if msg.CustomerName != "Thandi M" {
		t.Errorf("unexpected name %q", msg.CustomerName)
	}
}

func TestExtractBareArray(t *testing.T) {
	msg := ExtractIncomingMessage([]byte(arrayPayload))
	if msg == nil {
		t.Fatal("expected a parsed message")
	}
	if msg.WaID != "27830009999" || msg.Text != "array style" {
		t.Errorf("unexpected message %+v", msg)
	}
	if msg.CustomerName != "" {
		t.Errorf("expected no name, got %q", msg.CustomerName)
	}
}

func TestExtractBareObjectFallsBackToFrom(t *testing.T) {
	msg := ExtractIncomingMessage([]byte(barePayload))
	if msg == nil {
		t.Fatal("expected a parsed message")
	}
	if msg.WaID != "+27 83 000 1111" {
		t.Errorf("expected wa id from message sender, got %q", msg.WaID)
	}
	if msg.Text != "bare style" {
		t.Errorf("unexpected text %q", msg.Text)
	}
}

func TestExtractSkipsNonText(t *testing.T) {
	status := `{
	  "object": "whatsapp_business_account",
	  "entry": [{"changes": [{"value": {"statuses": [{"id": "wamid.X", "status": "delivered"}]}}]}]
	}`
	if msg := ExtractIncomingMessage([]byte(status)); msg != nil {
		t.Errorf("status delivery should not parse, got %+v", msg)
	}

	image := `{
	  "messages": [{"from": "27830001111", "type": "image", "image": {"id": "123"}}]
	}`
	if msg := ExtractIncomingMessage([]byte(image)); msg != nil {
		t.Errorf("image message should not parse, got %+v", msg)
	}
}

func TestExtractPicksFirstTextMessage(t *testing.T) {
	mixed := `{
	  "messages": [
	    {"from": "27830001111", "type": "image", "image": {"id": "1"}},
	    {"from": "27830001111", "type": "text", "text": {"body": "second one"}}
	  ]
	}`
	msg := ExtractIncomingMessage([]byte(mixed))
	if msg == nil || msg.Text != "second one" {
		t.Fatalf("expected the first text-type message, got %+v", msg)
	}
}

func TestExtractGarbage(t *testing.T) {
	for _, body := range []string{"", "not json", "42", `{"object":"something_else"}`, `[]`, `{}`} {
		if msg := ExtractIncomingMessage([]byte(body)); msg != nil {
			t.Errorf("body %q should not parse, got %+v", body, msg)
		}
	}
}

func TestDigitsOnly(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"+27 83 111-2222", "27831112222"},
		{"27831112222", "27831112222"},
		{"abc", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := DigitsOnly(c.in); got != c.want {
			t.Errorf("DigitsOnly(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSessionID(t *testing.T) {
	if got := SessionID("APP-", "+27 83 111 2222"); got != "APP-27831112222" {
		t.Errorf("unexpected session id %q", got)
	}
}
