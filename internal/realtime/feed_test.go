package realtime

import (
	"encoding/json"
	"testing"
)

func TestEventDecode(t *testing.T) {
	payload := `{
		"table": "messages",
		"type": "INSERT",
		"row": {
			"id": "abc",
			"user_id": "u1",
			"sender": "bot",
			"text": ["Hi", "How can I help?"],
			"created_at": "2025-06-01T10:00:00Z"
		}
	}`

	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Table != TableMessages || ev.Type != TypeInsert {
		t.Fatalf("unexpected envelope %+v", ev)
	}
	if ev.Row.ID != "abc" || ev.Row.UserID != "u1" {
		t.Fatalf("unexpected row %+v", ev.Row)
	}
	if len(ev.Row.Lines) != 2 || ev.Row.Lines[0] != "Hi" {
		t.Fatalf("expected multi-line text, got %v", ev.Row.Lines)
	}
	if ev.Row.CreatedAt.IsZero() {
		t.Fatalf("expected created_at parsed")
	}
}
