package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"botspoof-chat/internal/bot"
	"botspoof-chat/internal/chat"
	"botspoof-chat/internal/domain"
	"botspoof-chat/internal/identity"
	"botspoof-chat/internal/realtime"
)

type staticResolver struct {
	users map[string]domain.User
}

func (r *staticResolver) Resolve(_ context.Context, token string) (domain.User, error) {
	user, ok := r.users[token]
	if !ok {
		return domain.User{}, identity.ErrNoIdentity
	}
	return user, nil
}

type fakeLog struct {
	mu         sync.Mutex
	rows       map[string][]domain.Message
	lastBefore *time.Time
}

func newFakeLog() *fakeLog {
	return &fakeLog{rows: make(map[string][]domain.Message)}
}

func (f *fakeLog) Create(_ context.Context, message domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[message.UserID] = append(f.rows[message.UserID], message)
	return nil
}

func (f *fakeLog) ListByUser(_ context.Context, userID string) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Message(nil), f.rows[userID]...), nil
}

func (f *fakeLog) DeleteByUser(_ context.Context, userID string, before *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastBefore = before
	if before == nil {
		delete(f.rows, userID)
		return nil
	}
	kept := f.rows[userID][:0]
	for _, m := range f.rows[userID] {
		if !m.CreatedAt.Before(*before) {
			kept = append(kept, m)
		}
	}
	f.rows[userID] = kept
	return nil
}

type noopFeed struct{ unsubscribes int }

func (f *noopFeed) Subscribe(_ context.Context, _ func(realtime.Event)) (realtime.Subscription, error) {
	return &noopSub{feed: f}, nil
}

type noopSub struct{ feed *noopFeed }

func (s *noopSub) Unsubscribe() { s.feed.unsubscribes++ }

func setupChatRouter(log *fakeLog, feed *noopFeed, botClient bot.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	resolver := &staticResolver{users: map[string]domain.User{
		"token-u1": {ID: "u1", Email: "u1@example.com"},
	}}
	factory := func() *chat.ConversationController {
		return chat.NewConversationController(chat.NewMessageStore(), log, feed, botClient, zap.NewNop())
	}
	chatH := NewChatHandler(zap.NewNop(), factory)
	adminH := NewAdminHandler(zap.NewNop(), nil)
	return NewRouter(zap.NewNop(), resolver, chatH, adminH)
}

func doRequest(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestChatHandler_RequiresToken(t *testing.T) {
	r := setupChatRouter(newFakeLog(), &noopFeed{}, &bot.MockClient{})

	rec := doRequest(r, http.MethodGet, "/messages", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doRequest(r, http.MethodGet, "/messages", "token-desconocido", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d", rec.Code)
	}
}

func TestChatHandler_OpenSessionReturnsHistory(t *testing.T) {
	log := newFakeLog()
	_ = log.Create(context.Background(), domain.Message{
		ID: "m1", UserID: "u1", Sender: domain.SenderUser,
		Lines: []string{"hola"}, CreatedAt: time.Now().UTC(),
	})
	r := setupChatRouter(log, &noopFeed{}, &bot.MockClient{})

	rec := doRequest(r, http.MethodPost, "/session", "token-u1", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Messages []domain.Message `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Messages) != 1 || resp.Messages[0].ID != "m1" {
		t.Fatalf("expected hydrated history, got %+v", resp.Messages)
	}
}

func TestChatHandler_PostMessage(t *testing.T) {
	r := setupChatRouter(newFakeLog(), &noopFeed{}, &bot.MockClient{
		Reply: bot.Reply{Text: bot.ReplyText{Value: "Hi\nHow can I help?"}},
	})

	if rec := doRequest(r, http.MethodPost, "/session", "token-u1", nil); rec.Code != http.StatusCreated {
		t.Fatalf("open session: %d", rec.Code)
	}

	rec := doRequest(r, http.MethodPost, "/message", "token-u1", map[string]string{"text": "Hello"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		UserMessage domain.Message  `json:"user_message"`
		BotMessage  *domain.Message `json:"bot_message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UserMessage.JoinedText() != "Hello" {
		t.Fatalf("unexpected user message %+v", resp.UserMessage)
	}
	if resp.BotMessage == nil || len(resp.BotMessage.Lines) != 2 {
		t.Fatalf("expected normalized bot message, got %+v", resp.BotMessage)
	}
}

func TestChatHandler_PostMessageValidation(t *testing.T) {
	r := setupChatRouter(newFakeLog(), &noopFeed{}, &bot.MockClient{})
	if rec := doRequest(r, http.MethodPost, "/session", "token-u1", nil); rec.Code != http.StatusCreated {
		t.Fatalf("open session: %d", rec.Code)
	}

	rec := doRequest(r, http.MethodPost, "/message", "token-u1", map[string]string{"text": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank text, got %d", rec.Code)
	}

	rec = doRequest(r, http.MethodPost, "/message", "token-u1", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing text, got %d", rec.Code)
	}
}

func TestChatHandler_DeleteMessages(t *testing.T) {
	r := setupChatRouter(newFakeLog(), &noopFeed{}, &bot.MockClient{
		Reply: bot.Reply{Text: bot.ReplyText{Value: "ok"}},
	})
	if rec := doRequest(r, http.MethodPost, "/session", "token-u1", nil); rec.Code != http.StatusCreated {
		t.Fatalf("open session: %d", rec.Code)
	}
	if rec := doRequest(r, http.MethodPost, "/message", "token-u1", map[string]string{"text": "hola"}); rec.Code != http.StatusCreated {
		t.Fatalf("post message: %d", rec.Code)
	}

	rec := doRequest(r, http.MethodDelete, "/messages?period=quincena", "token-u1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown period, got %d", rec.Code)
	}

	rec = doRequest(r, http.MethodDelete, "/messages?period=all", "token-u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Messages []domain.Message `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Messages) != 0 {
		t.Fatalf("expected empty store after delete all, got %+v", resp.Messages)
	}
}

func TestChatHandler_CloseSessionReleasesSubscription(t *testing.T) {
	feed := &noopFeed{}
	r := setupChatRouter(newFakeLog(), feed, &bot.MockClient{})
	if rec := doRequest(r, http.MethodPost, "/session", "token-u1", nil); rec.Code != http.StatusCreated {
		t.Fatalf("open session: %d", rec.Code)
	}

	rec := doRequest(r, http.MethodDelete, "/session", "token-u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if feed.unsubscribes != 1 {
		t.Fatalf("expected subscription released, got %d", feed.unsubscribes)
	}
}
