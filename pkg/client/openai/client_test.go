package openai

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/v2/option"
	"github.com/pkg/errors"

	"github.com/fpt/klein-relay/pkg/domain"
	"github.com/fpt/klein-relay/pkg/message"
)

func TestGetOpenAIModel(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"", "gpt-4o-mini"},
		{"gpt-4o", "gpt-4o"},
		{"gpt-4o-mini", "gpt-4o-mini"},
		{"some-future-model", "some-future-model"},
	}

	for _, tc := range testCases {
		result := getOpenAIModel(tc.input)
		if result != tc.expected {
			t.Errorf("getOpenAIModel(%q) = %q, expected %q", tc.input, result, tc.expected)
		}
	}
}

func TestNewOpenAIClient_NoAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewOpenAIClient("gpt-4o-mini", 0)
	if err == nil {
		t.Fatal("Expected an error without OPENAI_API_KEY")
	}
	if err.Error() != "OPENAI_API_KEY environment variable not set" {
		t.Errorf("Unexpected error %q", err.Error())
	}
}

// chatServer answers every request with body and records the last request.
func chatServer(t *testing.T, status int, body string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if captured != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const okBody = `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Oh, another genius question."}}]}`

func TestCompleteReturnsFirstChoice(t *testing.T) {
	var req map[string]any
	srv := chatServer(t, http.StatusOK, okBody, &req)
	c := NewOpenAIClientWithOptions("", 0, option.WithAPIKey("test"), option.WithBaseURL(srv.URL))

	got, err := c.Complete(t.Context(), domain.CompletionRequest{
		Messages: []message.Turn{
			message.NewSystemTurn("be sarcastic"),
			message.NewUserTurn("ana said: hi"),
		},
		MaxTokens: 100,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "Oh, another genius question." {
		t.Errorf("Unexpected reply %q", got)
	}

	if req["model"] != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %v", req["model"])
	}
	if req["max_tokens"] != float64(100) {
		t.Errorf("Expected max_tokens 100, got %v", req["max_tokens"])
	}
	msgs, _ := req["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" || first["content"] != "be sarcastic" {
		t.Errorf("Unexpected system message %v", first)
	}
}

func TestCompleteOmitsMaxTokensByDefault(t *testing.T) {
	var req map[string]any
	srv := chatServer(t, http.StatusOK, okBody, &req)
	c := NewOpenAIClientWithOptions("gpt-4o-mini", 0, option.WithAPIKey("test"), option.WithBaseURL(srv.URL))

	if _, err := c.Complete(t.Context(), domain.CompletionRequest{
		Messages: []message.Turn{message.NewUserTurn("hi")},
	}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if _, ok := req["max_tokens"]; ok {
		t.Errorf("max_tokens should be left to the provider, got %v", req["max_tokens"])
	}
}

func TestCompleteSendsImageURLPart(t *testing.T) {
	var req map[string]any
	srv := chatServer(t, http.StatusOK, okBody, &req)
	c := NewOpenAIClientWithOptions("gpt-4o-mini", 0, option.WithAPIKey("test"), option.WithBaseURL(srv.URL))

	_, err := c.Complete(t.Context(), domain.CompletionRequest{
		Messages: []message.Turn{message.NewImageTurn("what is this?", "https://cdn.example.com/cat.png")},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	msgs, _ := req["messages"].([]any)
	user, _ := msgs[0].(map[string]any)
	parts, ok := user["content"].([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("Expected 2 content parts, got %v", user["content"])
	}
	img, _ := parts[1].(map[string]any)
	if img["type"] != "image_url" {
		t.Errorf("Expected image_url part, got %v", img)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[]}`, nil)
	c := NewOpenAIClientWithOptions("", 0, option.WithAPIKey("test"), option.WithBaseURL(srv.URL))

	_, err := c.Complete(t.Context(), domain.CompletionRequest{Messages: []message.Turn{message.NewUserTurn("hi")}})
	if !errors.Is(err, domain.ErrNoContent) {
		t.Fatalf("Expected ErrNoContent, got %v", err)
	}
}

func TestCompleteAPIErrorIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer srv.Close()
	c := NewOpenAIClientWithOptions("", 0, option.WithAPIKey("test"), option.WithBaseURL(srv.URL))

	_, err := c.Complete(t.Context(), domain.CompletionRequest{Messages: []message.Turn{message.NewUserTurn("hi")}})
	if err == nil {
		t.Fatal("Expected an error")
	}
	if errors.Is(err, domain.ErrNoContent) {
		t.Error("Transport errors must not look like empty content")
	}
	if calls != 1 {
		t.Errorf("Expected exactly 1 call, got %d", calls)
	}
}

func TestToChatMessagesWithoutVisionInlinesURL(t *testing.T) {
	msgs := toChatMessages([]message.Turn{message.NewImageTurn("look", "https://x/y.png")}, false)
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(msgs))
	}
	if msgs[0].OfUser == nil {
		t.Fatal("Expected a user message")
	}
	if got := msgs[0].OfUser.Content.OfString.Value; !strings.Contains(got, "Image URL: https://x/y.png") {
		t.Errorf("Expected inlined URL, got %q", got)
	}
}
