package testutils

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/tech-arch1tect/sparkauth/services/mail"
)

type MockMailService struct {
	mock.Mock
}

func (m *MockMailService) SendTemplate(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MailRecorder accepts every message and keeps it for inspection.
type MailRecorder struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (r *MailRecorder) SendTemplate(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *MailRecorder) Sent() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.Message(nil), r.sent...)
}

func (r *MailRecorder) Last() (mail.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return mail.Message{}, false
	}
	return r.sent[len(r.sent)-1], true
}

type MockRecorder struct {
	mu     sync.Mutex
	Events map[string]int
}

func NewMockRecorder() *MockRecorder {
	return &MockRecorder{Events: make(map[string]int)}
}

func (m *MockRecorder) AuthEvent(event, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events[event+":"+outcome]++
}

func (m *MockRecorder) Count(event, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Events[event+":"+outcome]
}
