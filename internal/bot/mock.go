package bot

import "context"

// MockClient permite tests sin contactar un responder real.
type MockClient struct {
	Reply    Reply
	Err      error
	LastText string
	Calls    int
}

func (m *MockClient) Submit(ctx context.Context, text string) (Reply, error) {
	m.LastText = text
	m.Calls++
	return m.Reply, m.Err
}
