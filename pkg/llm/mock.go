package llm

import (
	"context"
	"sync"
)

// MockProvider 固定应答的离线提供方，记录收到的提示
type MockProvider struct {
	Reply string
	Err   error

	mu      sync.Mutex
	prompts []string
}

// NewMockProvider 创建离线提供方
func NewMockProvider(reply string) *MockProvider {
	return &MockProvider{Reply: reply}
}

// Name 提供方名称
func (m *MockProvider) Name() string { return "mock" }

// Chat 返回固定应答
func (m *MockProvider) Chat(ctx context.Context, system, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// Prompts 已收到的用户提示
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
