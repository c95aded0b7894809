package transcription

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"voicewins/pkg/logger"
)

func writeTestAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "note.ogg")
	if err := os.WriteFile(path, []byte("fake ogg bytes"), 0o644); err != nil {
		t.Fatalf("writing test audio: %v", err)
	}
	return path
}

func TestTranscribe_Success(t *testing.T) {
	var gotPath, gotLanguage, gotField string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLanguage = r.URL.Query().Get("language")

		file, header, err := r.FormFile("audio_file")
		if err != nil {
			t.Errorf("reading audio_file form field: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotField = header.Filename
		gotBody, _ = io.ReadAll(file)

		w.Write([]byte("  Went for a 5k run and caught up with my sister \n"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", 5, logger.NewNop())
	transcript := client.Transcribe(context.Background(), writeTestAudio(t))

	if transcript != "Went for a 5k run and caught up with my sister" {
		t.Errorf("transcript = %q, want trimmed response body", transcript)
	}
	if gotPath != "/asr" {
		t.Errorf("request path = %q, want /asr", gotPath)
	}
	if gotLanguage != "en" {
		t.Errorf("language = %q, want en", gotLanguage)
	}
	if gotField != "note.ogg" {
		t.Errorf("uploaded filename = %q, want note.ogg", gotField)
	}
	if string(gotBody) != "fake ogg bytes" {
		t.Errorf("uploaded body = %q, want the raw audio bytes", gotBody)
	}
}

func TestTranscribe_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", 5, logger.NewNop())
	if got := client.Transcribe(context.Background(), writeTestAudio(t)); got != "" {
		t.Errorf("transcript = %q, want the empty sentinel on non-200", got)
	}
}

func TestTranscribe_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Refuse all connections

	client := NewClient(server.URL, "en", 1, logger.NewNop())
	if got := client.Transcribe(context.Background(), writeTestAudio(t)); got != "" {
		t.Errorf("transcript = %q, want the empty sentinel on network failure", got)
	}
}

func TestTranscribe_MissingFile(t *testing.T) {
	client := NewClient("http://localhost:1", "en", 1, logger.NewNop())
	if got := client.Transcribe(context.Background(), "/nonexistent/audio.ogg"); got != "" {
		t.Errorf("transcript = %q, want the empty sentinel for a missing file", got)
	}
}
