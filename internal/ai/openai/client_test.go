package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voicewins/internal/ai"
	"voicewins/pkg/logger"
)

func testMessages() []ai.ChatMessage {
	return []ai.ChatMessage{
		{Role: "system", Content: "You are a helpful assistant."},
		{Role: "user", Content: "Summarize this transcript."},
	}
}

func testConfig() ai.ChatConfig {
	return ai.ChatConfig{Model: "gpt-3.5-turbo", Temperature: 0.2, MaxTokens: 256}
}

func TestChatCompletion(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"{\"Physical Win\": \"ran 5k\"}"}}]}`)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, 10, logger.NewNop())

	content, err := client.ChatCompletion(context.Background(), testMessages(), testConfig())
	if err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}
	if content != `{"Physical Win": "ran 5k"}` {
		t.Errorf("content = %q", content)
	}

	if gotPath != "/v1/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization = %q", gotAuth)
	}

	var req struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("unmarshaling request body: %v", err)
	}
	if req.Model != "gpt-3.5-turbo" {
		t.Errorf("model = %q", req.Model)
	}
	if req.MaxTokens != 256 {
		t.Errorf("max_tokens = %d", req.MaxTokens)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "Summarize this transcript." {
		t.Errorf("messages = %+v", req.Messages)
	}
}

func TestChatCompletion_NoAPIKey(t *testing.T) {
	var gotAuth string
	sawAuth := false

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		sawAuth = true
		io.WriteString(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer server.Close()

	client := NewClient("", server.URL, 10, logger.NewNop())
	if _, err := client.ChatCompletion(context.Background(), testMessages(), testConfig()); err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}
	if !sawAuth {
		t.Fatal("server never received the request")
	}
	if gotAuth != "" {
		t.Errorf("authorization header should be omitted without an api key, got %q", gotAuth)
	}
}

func TestChatCompletion_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, 10, logger.NewNop())
	_, err := client.ChatCompletion(context.Background(), testMessages(), testConfig())
	if err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
	if !strings.Contains(err.Error(), "chat completion failed") {
		t.Errorf("error = %v", err)
	}
}

func TestChatCompletion_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[]}`)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, 10, logger.NewNop())
	_, err := client.ChatCompletion(context.Background(), testMessages(), testConfig())
	if err == nil {
		t.Fatal("expected an error for an empty choices list")
	}
	if !strings.Contains(err.Error(), "no choices") {
		t.Errorf("error = %v", err)
	}
}
