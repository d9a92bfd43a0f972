package ai

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/scrawl/pkg/errors"
	"github.com/matzehuels/scrawl/pkg/httputil"
)

func writeCompletion(w http.ResponseWriter, content string) {
	json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{
				"message":       map[string]string{"content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 34, "total_tokens": 46},
	})
}

func testMessages() []Message {
	return []Message{
		{Role: RoleSystem, Content: "You are a test."},
		{Role: RoleUser, Content: "hello"},
	}
}

func TestClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q, want bearer token", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q, want gpt-4o-mini", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Errorf("message count = %d, want 2", len(req.Messages))
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Error("request missing json_object response format")
		}

		writeCompletion(w, `{"nodes":[]}`)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key", Model: "gpt-4o-mini"}, nil)

	completion, err := client.Complete(context.Background(), testMessages(), false)
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if completion.Content != `{"nodes":[]}` {
		t.Errorf("content = %q, want raw choice content", completion.Content)
	}
	if completion.FinishReason != "stop" {
		t.Errorf("finish reason = %q, want stop", completion.FinishReason)
	}
	if completion.Usage.TotalTokens != 46 {
		t.Errorf("total tokens = %d, want 46", completion.Usage.TotalTokens)
	}
}

func TestClientCompleteNoKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://example.invalid", Model: "gpt-4o-mini"}, nil)

	_, err := client.Complete(context.Background(), testMessages(), false)
	if err == nil {
		t.Fatal("Complete() should fail without an API key")
	}
	if !errors.Is(err, errors.ErrCodeAIKey) {
		t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeAIKey)
	}
}

func TestClientCompleteAuthRejected(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "bad-key", Model: "gpt-4o-mini"}, nil)

	_, err := client.Complete(context.Background(), testMessages(), false)
	if !errors.Is(err, errors.ErrCodeAIKey) {
		t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeAIKey)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (auth failures are not retried)", calls)
	}
}

func TestClientCompleteRetriesServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeCompletion(w, "recovered")
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key", Model: "gpt-4o-mini"}, nil)

	completion, err := client.Complete(context.Background(), testMessages(), false)
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (500 then success)", calls)
	}
	if completion.Content != "recovered" {
		t.Errorf("content = %q, want %q", completion.Content, "recovered")
	}
}

func TestClientCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "model overloaded", "type": "server_error"},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key", Model: "gpt-4o-mini"}, nil)

	_, err := client.Complete(context.Background(), testMessages(), false)
	if !errors.Is(err, errors.ErrCodeAIResponse) {
		t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeAIResponse)
	}
}

func TestClientCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key", Model: "gpt-4o-mini"}, nil)

	_, err := client.Complete(context.Background(), testMessages(), false)
	if !errors.Is(err, errors.ErrCodeAIResponse) {
		t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeAIResponse)
	}
}

func TestClientCompleteCached(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeCompletion(w, "cached answer")
	}))
	defer server.Close()

	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error: %v", err)
	}

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key", Model: "gpt-4o-mini"}, cache)

	first, err := client.Complete(context.Background(), testMessages(), false)
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	second, err := client.Complete(context.Background(), testMessages(), false)
	if err != nil {
		t.Fatalf("Complete() second call error: %v", err)
	}

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (second request served from cache)", calls)
	}
	if first.Content != second.Content {
		t.Errorf("cached content = %q, want %q", second.Content, first.Content)
	}

	// refresh bypasses the cache
	if _, err := client.Complete(context.Background(), testMessages(), true); err != nil {
		t.Fatalf("Complete() refresh error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 after refresh", calls)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantCode   errors.Code
		isRetryErr bool
	}{
		{"200 OK", http.StatusOK, "", false},
		{"401 Unauthorized", http.StatusUnauthorized, errors.ErrCodeAIKey, false},
		{"403 Forbidden", http.StatusForbidden, errors.ErrCodeAIKey, false},
		{"429 Too Many Requests", http.StatusTooManyRequests, errors.ErrCodeRateLimited, true},
		{"500 Internal Server Error", http.StatusInternalServerError, errors.ErrCodeNetwork, true},
		{"503 Service Unavailable", http.StatusServiceUnavailable, errors.ErrCodeNetwork, true},
		{"418 Teapot", http.StatusTeapot, errors.ErrCodeNetwork, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code, []byte("body"))

			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantCode) {
				t.Errorf("error code = %q, want %q", errors.GetCode(err), tt.wantCode)
			}

			var retryErr *httputil.RetryableError
			if got := stderrors.As(err, &retryErr); got != tt.isRetryErr {
				t.Errorf("retryable = %v, want %v", got, tt.isRetryErr)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate([]byte("short"), 10); got != "short" {
		t.Errorf("truncate() = %q, want passthrough", got)
	}
	got := truncate([]byte("0123456789abcdef"), 10)
	if got != "0123456789... (16 bytes)" {
		t.Errorf("truncate() = %q, want clipped with size note", got)
	}
}
