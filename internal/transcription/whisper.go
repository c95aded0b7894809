package transcription

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voicewins/pkg/logger"
)

// Client sends audio files to a Whisper-compatible ASR service
type Client struct {
	baseURL    string // Stored without trailing slash
	language   string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new ASR client
func NewClient(baseURL, language string, timeoutSeconds int, log *logger.Logger) *Client {
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	if language == "" {
		language = "en"
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		logger:   log.Named("whisper"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Transcribe uploads the audio file at the given path and returns the
// transcript text. Any failure is converted to the empty-string sentinel;
// an empty result always means the stage failed, never a silent recording.
func (c *Client) Transcribe(ctx context.Context, audioPath string) string {
	f, err := os.Open(audioPath)
	if err != nil {
		c.logger.Error("Failed to open audio file", logger.Error(err), logger.String("path", audioPath))
		return ""
	}
	defer f.Close()

	// Build the multipart body with the raw audio bytes in the audio_file field
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("audio_file", filepath.Base(audioPath))
	if err != nil {
		c.logger.Error("Failed to create form file", logger.Error(err))
		return ""
	}
	if _, err := io.Copy(part, f); err != nil {
		c.logger.Error("Failed to read audio file", logger.Error(err), logger.String("path", audioPath))
		return ""
	}
	if err := writer.Close(); err != nil {
		c.logger.Error("Failed to finalize multipart body", logger.Error(err))
		return ""
	}

	apiURL := fmt.Sprintf("%s/asr?language=%s", c.baseURL, url.QueryEscape(c.language))

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, body)
	if err != nil {
		c.logger.Error("Failed to create request", logger.Error(err))
		return ""
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to reach ASR service", logger.Error(err), logger.String("url", apiURL))
		return ""
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("Failed to read ASR response", logger.Error(err))
		return ""
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("ASR service returned non-OK status",
			logger.Int("status_code", resp.StatusCode),
			logger.String("response", string(respBody)))
		return ""
	}

	return strings.TrimSpace(string(respBody))
}
