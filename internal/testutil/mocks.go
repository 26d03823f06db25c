package testutil

import (
	"context"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// MockChatClient mocks the OpenAI chat completion API
type MockChatClient struct {
	// Replies are returned in order; the last one repeats once exhausted
	Replies []string
	// Err, when set, is returned instead of a reply
	Err error
	// NoChoices returns a response without any choices
	NoChoices bool

	mu    sync.Mutex
	Calls []openai.ChatCompletionRequest
}

// CreateChatCompletion records the request and returns the configured reply
func (m *MockChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if m.Err != nil {
		return openai.ChatCompletionResponse{}, m.Err
	}
	if err := ctx.Err(); err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	if m.NoChoices {
		return openai.ChatCompletionResponse{}, nil
	}

	reply := "mock translation"
	if n := len(m.Replies); n > 0 {
		idx := len(m.Calls) - 1
		if idx >= n {
			idx = n - 1
		}
		reply = m.Replies[idx]
	}

	return openai.ChatCompletionResponse{
		Model: req.Model,
		Choices: []openai.ChatCompletionChoice{
			{
				Index: 0,
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: reply,
				},
				FinishReason: openai.FinishReasonStop,
			},
		},
	}, nil
}

// LastCall returns the most recent request
func (m *MockChatClient) LastCall() (openai.ChatCompletionRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Calls) == 0 {
		return openai.ChatCompletionRequest{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}

// CallCount returns the number of recorded requests
func (m *MockChatClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
