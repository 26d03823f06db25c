package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"
)

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// AssertFileContent checks if a file has expected content
func AssertFileContent(t *testing.T, path string, expected []byte) {
	t.Helper()

	actual, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("File content mismatch in %s\nExpected: %q\nActual: %q", path, expected, actual)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// FakeOpenAI is an httptest server speaking the subset of the OpenAI API
// used by this module.
type FakeOpenAI struct {
	Server *httptest.Server

	// Reply is returned as the first choice of every chat completion
	Reply string
	// Status, when non-zero, makes chat completions fail with an API error
	Status int
	// Models is returned by the model list endpoint
	Models []string

	mu       sync.Mutex
	Requests []openai.ChatCompletionRequest
	Paths    []string
}

// NewFakeOpenAI starts a fake API server that is closed with the test
func NewFakeOpenAI(t *testing.T) *FakeOpenAI {
	t.Helper()

	f := &FakeOpenAI{Reply: "mock translation"}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the server root without any version suffix
func (f *FakeOpenAI) URL() string {
	return f.Server.URL
}

// LastRequest returns the most recent chat completion request
func (f *FakeOpenAI) LastRequest() (openai.ChatCompletionRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.Requests) == 0 {
		return openai.ChatCompletionRequest{}, false
	}
	return f.Requests[len(f.Requests)-1], true
}

func (f *FakeOpenAI) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.Paths = append(f.Paths, r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/chat/completions":
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeAPIError(w, http.StatusBadRequest, err.Error())
			return
		}

		f.mu.Lock()
		f.Requests = append(f.Requests, req)
		status, reply := f.Status, f.Reply
		f.mu.Unlock()

		if status != 0 {
			writeAPIError(w, status, "mock failure")
			return
		}

		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  req.Model,
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role:    openai.ChatMessageRoleAssistant,
						Content: reply,
					},
					FinishReason: openai.FinishReasonStop,
				},
			},
		})

	case r.Method == http.MethodGet && r.URL.Path == "/v1/models":
		list := openai.ModelsList{}
		for _, id := range f.Models {
			list.Models = append(list.Models, openai.Model{ID: id, Object: "model", OwnedBy: "test"})
		}
		_ = json.NewEncoder(w).Encode(list)

	default:
		writeAPIError(w, http.StatusNotFound, "unknown path "+r.URL.Path)
	}
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    "invalid_request_error",
		},
	})
}
