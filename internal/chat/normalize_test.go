package chat

import (
	"reflect"
	"testing"

	"botspoof-chat/internal/bot"
)

func TestNormalizeReplyText_SingleLineUnchanged(t *testing.T) {
	got := normalizeReplyText(bot.ReplyText{Value: "Hola, qué tal"})
	if !reflect.DeepEqual(got, []string{"Hola, qué tal"}) {
		t.Fatalf("expected single line unchanged, got %v", got)
	}
}

func TestNormalizeReplyText_SplitsAndDropsBlanks(t *testing.T) {
	got := normalizeReplyText(bot.ReplyText{Value: "Hi\n\nHow can I help?\n   \nBye"})
	want := []string{"Hi", "How can I help?", "Bye"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNormalizeReplyText_WindowsLineBreaks(t *testing.T) {
	got := normalizeReplyText(bot.ReplyText{Value: "Hi\r\nHow can I help?"})
	want := []string{"Hi", "How can I help?"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNormalizeReplyText_AllBlankFallsBackToOriginal(t *testing.T) {
	got := normalizeReplyText(bot.ReplyText{Value: " \n  "})
	if !reflect.DeepEqual(got, []string{" \n  "}) {
		t.Fatalf("expected original string as single line, got %q", got)
	}
}

func TestNormalizeReplyText_EmptyPayloadUsesFallback(t *testing.T) {
	got := normalizeReplyText(bot.ReplyText{})
	if !reflect.DeepEqual(got, []string{fallbackBotLine}) {
		t.Fatalf("expected fallback line, got %v", got)
	}
}

func TestNormalizeReplyText_ListAsIs(t *testing.T) {
	got := normalizeReplyText(bot.ReplyText{IsList: true, List: []string{"uno", "dos"}})
	if !reflect.DeepEqual(got, []string{"uno", "dos"}) {
		t.Fatalf("expected list as-is, got %v", got)
	}
}

func TestNormalizeReplyText_EmptyListUsesFallback(t *testing.T) {
	got := normalizeReplyText(bot.ReplyText{IsList: true})
	if !reflect.DeepEqual(got, []string{fallbackBotLine}) {
		t.Fatalf("expected fallback line for empty list, got %v", got)
	}
}
