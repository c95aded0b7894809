package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server        ServerConfig        `toml:"server"`        // HTTP server settings
	Logging       LoggingConfig       `toml:"logging"`       // Application logging settings
	WhatsApp      WhatsAppConfig      `toml:"whatsapp"`      // WhatsApp Cloud API settings
	Transcription TranscriptionConfig `toml:"transcription"` // Speech recognition settings
	AI            AIConfig            `toml:"ai"`            // LLM chat completion settings
	Sheets        SheetsConfig        `toml:"sheets"`        // Google Sheets output settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port             int    `toml:"port"`                  // HTTP port for the webhook server
	Host             string `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	ReadTimeoutSecs  int    `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs int    `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout)
	IdleTimeoutSecs  int    `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// WhatsAppConfig contains WhatsApp Cloud API configuration
type WhatsAppConfig struct {
	Token           string `toml:"token"`              // Bearer token for the Graph API
	PhoneNumberID   string `toml:"phone_number_id"`    // Phone number id used to send outbound messages
	VerifyToken     string `toml:"verify_token"`       // Secret expected in the hub.verify_token webhook verification parameter
	GraphAPIBaseURL string `toml:"graph_api_base_url"` // Base URL for the Graph API. Defaults to https://graph.facebook.com/v18.0
	MediaDir        string `toml:"media_dir"`          // Directory for temporarily downloaded voice notes. Defaults to the OS temp dir
	TimeoutSeconds  int    `toml:"timeout_seconds"`    // HTTP timeout for Graph API requests in seconds
}

// TranscriptionConfig contains settings for the speech recognition service
type TranscriptionConfig struct {
	WhisperURL     string `toml:"whisper_url"`     // Base URL of the Whisper-compatible ASR service (required)
	Language       string `toml:"language"`        // Language passed to the ASR service (e.g., "en")
	TimeoutSeconds int    `toml:"timeout_seconds"` // HTTP timeout for ASR requests in seconds
}

// AIConfig contains LLM chat completion configuration
type AIConfig struct {
	Provider       string  `toml:"provider"`        // "openai" or "gemini"
	BaseURL        string  `toml:"base_url"`        // Optional base URL for an OpenAI-compatible endpoint (empty = default provider endpoint)
	APIKey         string  `toml:"api_key"`         // API key. May be empty for local OpenAI-compatible servers
	Model          string  `toml:"model"`           // Model identifier (e.g., "gpt-3.5-turbo")
	Temperature    float64 `toml:"temperature"`     // Sampling temperature
	MaxTokens      int     `toml:"max_tokens"`      // Maximum tokens in the completion
	TimeoutSeconds int     `toml:"timeout_seconds"` // HTTP timeout for chat completion requests in seconds
}

// SheetsConfig contains Google Sheets output configuration
type SheetsConfig struct {
	SpreadsheetID   string `toml:"spreadsheet_id"`   // Identifier of the target spreadsheet
	CredentialsFile string `toml:"credentials_file"` // Path to the service account credentials JSON
	SheetRange      string `toml:"sheet_range"`      // Target range on the first sheet. Defaults to A1:D1
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read the config file
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	// List of paths to check in order of preference
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // configs/ folder
		"config.toml",         // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == 0 {
		c.Server.Port = 6869
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSecs == 0 {
		c.Server.ReadTimeoutSecs = 30
	}
	if c.Server.WriteTimeoutSecs == 0 {
		// Each webhook delivery blocks on download, transcription, extraction
		// and the sheet append before a response is written.
		c.Server.WriteTimeoutSecs = 300
	}
	if c.Server.IdleTimeoutSecs == 0 {
		c.Server.IdleTimeoutSecs = 120
	}

	// Validate logging config
	switch c.Logging.Level {
	case "":
		c.Logging.Level = "info"
	case "debug", "info", "warn", "error":
		// Valid log level
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "":
		c.Logging.Format = "console"
	case "json", "console":
		// Valid log format
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	// Validate WhatsApp config
	if c.WhatsApp.Token == "" {
		return fmt.Errorf("whatsapp token is required")
	}
	if c.WhatsApp.PhoneNumberID == "" {
		return fmt.Errorf("whatsapp phone_number_id is required")
	}
	if c.WhatsApp.VerifyToken == "" {
		return fmt.Errorf("whatsapp verify_token is required")
	}
	if c.WhatsApp.GraphAPIBaseURL == "" {
		c.WhatsApp.GraphAPIBaseURL = "https://graph.facebook.com/v18.0"
	}
	if c.WhatsApp.MediaDir == "" {
		c.WhatsApp.MediaDir = os.TempDir()
	}
	if c.WhatsApp.TimeoutSeconds <= 0 {
		c.WhatsApp.TimeoutSeconds = 30
	}

	// Validate transcription config
	if c.Transcription.WhisperURL == "" {
		return fmt.Errorf("transcription whisper_url is required")
	}
	if c.Transcription.Language == "" {
		c.Transcription.Language = "en"
	}
	if c.Transcription.TimeoutSeconds <= 0 {
		c.Transcription.TimeoutSeconds = 120
	}

	// Validate AI config
	switch c.AI.Provider {
	case "":
		c.AI.Provider = "openai"
	case "openai", "gemini":
		// Valid provider
	default:
		return fmt.Errorf("invalid ai provider: %s (must be 'openai' or 'gemini')", c.AI.Provider)
	}
	if c.AI.Provider == "gemini" && c.AI.APIKey == "" {
		return fmt.Errorf("ai api_key is required when provider is gemini")
	}
	if c.AI.Model == "" {
		c.AI.Model = "gpt-3.5-turbo"
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = 1024
	}
	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = 120
	}

	// Validate sheets config
	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("sheets spreadsheet_id is required")
	}
	if c.Sheets.CredentialsFile == "" {
		return fmt.Errorf("sheets credentials_file is required")
	}
	if c.Sheets.SheetRange == "" {
		c.Sheets.SheetRange = "A1:D1"
	}

	return nil
}
