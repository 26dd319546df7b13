package llm

import (
	"context"
	"sync"
)

// MockResponse is one canned answer of a MockProvider.
type MockResponse struct {
	Text  string
	Usage Usage
	Err   error
}

// Text is a MockResponse answering s, valid JSON or not.
func Text(s string) MockResponse {
	return MockResponse{Text: s}
}

// Fail is a MockResponse failing with err.
func Fail(err error) MockResponse {
	return MockResponse{Err: err}
}

// MockProvider answers from a FIFO queue of canned responses and records
// every request. An empty queue fails with ErrProviderUnavailable.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{}
	}

	next := m.responses[0]
	m.responses = m.responses[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Text: next.Text, Usage: next.Usage, Model: "mock", Stop: StopEnd}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse queues another canned response.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// User returns the user text of call i, or "" when there is no such call.
func (m *MockProvider) User(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.Calls) {
		return ""
	}
	return m.Calls[i].User
}
