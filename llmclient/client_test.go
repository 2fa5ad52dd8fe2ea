package llmclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rfp-agent/config"
	apperrors "rfp-agent/errors"

	"go.uber.org/zap"
)

func testClient(host string) *Client {
	cfg := &config.Config{
		LLMHost:           host,
		EmbeddingHost:     host,
		LLMRequestTimeout: 5 * time.Second,
		MaxRetries:        3,
		RetryDelaySeconds: time.Millisecond,
	}
	return New(cfg, zap.NewNop())
}

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestCompleteJSON(t *testing.T) {
	srv := chatServer(t, `{"title": "Roof Replacement", "budget": 45000}`)
	defer srv.Close()

	var out struct {
		Title  string  `json:"title"`
		Budget float64 `json:"budget"`
	}
	c := testClient(srv.URL)
	if err := c.CompleteJSON(context.Background(), "sys", "user", nil, &out); err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if out.Title != "Roof Replacement" || out.Budget != 45000 {
		t.Errorf("unexpected decode: %+v", out)
	}
}

func TestCompleteJSONStripsFences(t *testing.T) {
	srv := chatServer(t, "Here is the result:\n```json\n{\"ok\": true}\n```\nDone.")
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	c := testClient(srv.URL)
	if err := c.CompleteJSON(context.Background(), "sys", "user", nil, &out); err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if !out.OK {
		t.Error("expected ok=true after fence stripping")
	}
}

func TestCompleteJSONNoJSON(t *testing.T) {
	srv := chatServer(t, "I could not produce an answer.")
	defer srv.Close()

	var out map[string]any
	err := testClient(srv.URL).CompleteJSON(context.Background(), "sys", "user", nil, &out)
	if !apperrors.IsCompletionFailure(err) {
		t.Errorf("expected completion failure, got %v", err)
	}
}

func TestChatRetriesOnServiceUnavailable(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "ready"}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Chat(context.Background(), "sys", "user", nil)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "ready" {
		t.Errorf("got %q, want ready", got)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prefix {\"a\": {\"b\": 2}} suffix", `{"a": {"b": 2}}`},
		{"no json here", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := extractJSON(tt.in); got != tt.want {
			t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
