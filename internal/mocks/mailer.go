package mocks

import (
	"context"
	"sync"

	"github.com/text-materials-api/internal/mail"
)

// MockMailer records sent messages
type MockMailer struct {
	mu       sync.Mutex
	Sent     []*mail.Message
	SendFunc func(ctx context.Context, msg *mail.Message) error
}

// Verify interface compliance
var _ mail.Mailer = (*MockMailer)(nil)

func NewMockMailer() *MockMailer {
	return &MockMailer{Sent: make([]*mail.Message, 0)}
}

func (m *MockMailer) Send(ctx context.Context, msg *mail.Message) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}

// Messages returns a snapshot of the sent messages
func (m *MockMailer) Messages() []*mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*mail.Message{}, m.Sent...)
}
