package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicewins/internal/ai"
	"voicewins/internal/ai/gemini"
	"voicewins/internal/ai/openai"
	"voicewins/internal/api"
	"voicewins/internal/config"
	"voicewins/internal/highlights"
	"voicewins/internal/pipeline"
	"voicewins/internal/sheets"
	"voicewins/internal/transcription"
	"voicewins/internal/whatsapp"
	"voicewins/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Load configuration with fallback logic
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting voicewins server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	// Long-lived clients are constructed once here and injected into the
	// pipeline; request handling never reaches for ambient globals.
	waClient := whatsapp.NewClient(
		cfg.WhatsApp.Token,
		cfg.WhatsApp.PhoneNumberID,
		cfg.WhatsApp.GraphAPIBaseURL,
		cfg.WhatsApp.MediaDir,
		cfg.WhatsApp.TimeoutSeconds,
		log,
	)

	whisperClient := transcription.NewClient(
		cfg.Transcription.WhisperURL,
		cfg.Transcription.Language,
		cfg.Transcription.TimeoutSeconds,
		log,
	)

	var chatProvider ai.ChatProvider
	switch cfg.AI.Provider {
	case "gemini":
		chatProvider = gemini.NewClient(cfg.AI.APIKey, cfg.AI.TimeoutSeconds, log)
	default:
		chatProvider = openai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.TimeoutSeconds, log)
	}

	extractor := highlights.NewExtractor(chatProvider, ai.ChatConfig{
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appender, err := sheets.NewAppender(
		ctx,
		cfg.Sheets.SpreadsheetID,
		cfg.Sheets.CredentialsFile,
		cfg.Sheets.SheetRange,
		log,
	)
	if err != nil {
		log.Error("Failed to create sheets appender", logger.Error(err))
		os.Exit(1)
	}

	pipelineService := pipeline.NewService(waClient, whisperClient, extractor, appender, log)

	// Create API router
	router := api.NewRouter(pipelineService, cfg.WhatsApp.VerifyToken, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error on startup", logger.String("addr", server.Addr), logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Error(err))
	}

	log.Info("Server fully stopped")
}
