package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"voicewins/pkg/logger"
)

// Client handles communication with the WhatsApp Cloud (Graph) API
type Client struct {
	token         string
	phoneNumberID string
	baseURL       string // Stored without trailing slash
	mediaDir      string
	httpClient    *http.Client
	logger        *logger.Logger
}

// NewClient creates a new WhatsApp Cloud API client
func NewClient(token, phoneNumberID, baseURL, mediaDir string, timeoutSeconds int, log *logger.Logger) *Client {
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = "https://graph.facebook.com/v18.0"
	}

	if mediaDir == "" {
		mediaDir = os.TempDir()
	}

	return &Client{
		token:         token,
		phoneNumberID: phoneNumberID,
		baseURL:       base,
		mediaDir:      mediaDir,
		logger:        log.Named("whatsapp"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// MediaURL resolves a media id to a fetchable download URL
func (c *Client) MediaURL(ctx context.Context, mediaID string) (string, error) {
	apiURL := fmt.Sprintf("%s/%s", c.baseURL, mediaID)

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("media url lookup failed: %s %s", resp.Status, string(body))
	}

	var result struct {
		URL      string `json:"url"`
		MimeType string `json:"mime_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse media response: %w", err)
	}
	if result.URL == "" {
		return "", fmt.Errorf("no url in media response for id %s", mediaID)
	}

	return result.URL, nil
}

// DownloadMedia fetches platform-hosted media and stores it in a temp file
// under the configured media directory. The caller owns the returned path
// and is responsible for removing it.
func (c *Client) DownloadMedia(ctx context.Context, mediaURL, mimeType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", mediaURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("media download failed: %s %s", resp.Status, string(body))
	}

	f, err := os.CreateTemp(c.mediaDir, "wa-media-*"+extensionForMIME(mimeType))
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close media file: %w", err)
	}

	c.logger.Debug("Downloaded media file",
		logger.String("path", f.Name()),
		logger.String("mime_type", mimeType))

	return f.Name(), nil
}

// SendText sends a plain-text message to the given recipient
func (c *Client) SendText(ctx context.Context, to, body string) error {
	apiURL := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)

	reqBody := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "text",
		"text": map[string]string{
			"body": body,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("send message failed: %s %s", resp.Status, string(respBody))
	}

	c.logger.Info("Sent message",
		logger.String("to", to),
		logger.Int("body_length", len(body)))

	return nil
}

// extensionForMIME maps the audio MIME types the platform delivers to a
// file extension. Parameters such as "; codecs=opus" are ignored.
func extensionForMIME(mimeType string) string {
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	switch strings.TrimSpace(mimeType) {
	case "audio/ogg":
		return ".ogg"
	case "audio/mpeg":
		return ".mp3"
	case "audio/mp4":
		return ".m4a"
	case "audio/aac":
		return ".aac"
	case "audio/amr":
		return ".amr"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	default:
		return ".bin"
	}
}
