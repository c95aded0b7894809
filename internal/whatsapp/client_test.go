package whatsapp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voicewins/pkg/logger"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return NewClient("test-token", "106540352242922", serverURL, t.TempDir(), 5, logger.NewNop())
}

func TestMediaURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("Authorization = %q", auth)
		}
		if r.URL.Path != "/media-123" {
			t.Errorf("path = %q, want /media-123", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"url":       "https://lookaside.example/media/abc",
			"mime_type": "audio/ogg",
		})
	}))
	defer server.Close()

	url, err := newTestClient(t, server.URL).MediaURL(context.Background(), "media-123")
	if err != nil {
		t.Fatalf("MediaURL: %v", err)
	}
	if url != "https://lookaside.example/media/abc" {
		t.Errorf("url = %q", url)
	}
}

func TestMediaURL_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"unknown media"}}`, http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := newTestClient(t, server.URL).MediaURL(context.Background(), "gone"); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
}

func TestDownloadMedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("Authorization = %q", auth)
		}
		w.Write([]byte("ogg audio payload"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	path, err := client.DownloadMedia(context.Background(), server.URL+"/media/abc", "audio/ogg; codecs=opus")
	if err != nil {
		t.Fatalf("DownloadMedia: %v", err)
	}
	defer os.Remove(path)

	if filepath.Ext(path) != ".ogg" {
		t.Errorf("downloaded file %q, want a .ogg extension", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(content) != "ogg audio payload" {
		t.Errorf("content = %q", content)
	}
}

func TestDownloadMedia_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusForbidden)
	}))
	defer server.Close()

	if _, err := newTestClient(t, server.URL).DownloadMedia(context.Background(), server.URL+"/media/abc", "audio/ogg"); err == nil {
		t.Fatal("expected an error for a 403 response")
	}
}

func TestSendText(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		json.NewEncoder(w).Encode(map[string]any{"messages": []map[string]string{{"id": "wamid.out"}}})
	}))
	defer server.Close()

	err := newTestClient(t, server.URL).SendText(context.Background(), "15551234567", "Data successfully appended to Google Sheet")
	if err != nil {
		t.Fatalf("SendText: %v", err)
	}

	if gotPath != "/106540352242922/messages" {
		t.Errorf("path = %q, want /106540352242922/messages", gotPath)
	}
	if gotBody["messaging_product"] != "whatsapp" || gotBody["to"] != "15551234567" || gotBody["type"] != "text" {
		t.Errorf("request body = %v", gotBody)
	}
	text, _ := gotBody["text"].(map[string]any)
	if text["body"] != "Data successfully appended to Google Sheet" {
		t.Errorf("text body = %v", text)
	}
}

func TestSendText_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid token"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	err := newTestClient(t, server.URL).SendText(context.Background(), "15551234567", "hello")
	if err == nil {
		t.Fatal("expected an error for a 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %v, want the status surfaced", err)
	}
}

func TestExtensionForMIME(t *testing.T) {
	cases := map[string]string{
		"audio/ogg; codecs=opus": ".ogg",
		"audio/ogg":              ".ogg",
		"audio/mpeg":             ".mp3",
		"audio/mp4":              ".m4a",
		"audio/amr":              ".amr",
		"application/pdf":        ".bin",
		"":                       ".bin",
	}
	for mime, want := range cases {
		if got := extensionForMIME(mime); got != want {
			t.Errorf("extensionForMIME(%q) = %q, want %q", mime, got, want)
		}
	}
}
