package pipeline

import (
	"context"
	"os"

	"voicewins/internal/highlights"
	"voicewins/internal/whatsapp"
	"voicewins/pkg/logger"
)

// User-facing status messages sent back on the same channel
const (
	msgTranscribeFailed = "Failed to transcribe audio. Please try again later"
	msgExtractFailed    = "Failed to extract highlights from transcription. Please try again later"
	msgAppendOK         = "Data successfully appended to Google Sheet"
	msgAppendFailed     = "Failed to append data to Google Sheet. Please try again later"
)

// Messenger is the messaging-platform surface the pipeline consumes
type Messenger interface {
	MediaURL(ctx context.Context, mediaID string) (string, error)
	DownloadMedia(ctx context.Context, mediaURL, mimeType string) (string, error)
	SendText(ctx context.Context, to, body string) error
}

// Transcriber converts a local audio file to text. An empty string is the
// failure sentinel, never a valid transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) string
}

// Extractor derives the highlight pair from a transcript
type Extractor interface {
	Extract(ctx context.Context, transcript string) highlights.Pair
}

// Appender writes the pair to durable storage, reporting success as a bool
type Appender interface {
	Append(ctx context.Context, pair highlights.Pair) bool
}

// Outcome tells the webhook handler how to acknowledge the event
type Outcome int

const (
	// OutcomeIgnored means the event required no pipeline work
	OutcomeIgnored Outcome = iota
	// OutcomeProcessed means the audio pipeline ran to one of its terminal
	// branches and the sender was notified
	OutcomeProcessed
	// OutcomeBadRequest means the audio message could not be fetched
	// (missing attachment metadata, URL resolution or download failure)
	OutcomeBadRequest
)

// Service drives the message-intake pipeline: classify the webhook event,
// then download, transcribe, extract and append, notifying the sender at
// exactly one terminal branch
type Service struct {
	messenger   Messenger
	transcriber Transcriber
	extractor   Extractor
	appender    Appender
	logger      *logger.Logger
}

// NewService creates a new pipeline service with injected collaborators
func NewService(messenger Messenger, transcriber Transcriber, extractor Extractor, appender Appender, log *logger.Logger) *Service {
	return &Service{
		messenger:   messenger,
		transcriber: transcriber,
		extractor:   extractor,
		appender:    appender,
		logger:      log.Named("pipeline"),
	}
}

// HandleEvent processes one webhook envelope synchronously
func (s *Service) HandleEvent(ctx context.Context, env *whatsapp.Envelope) Outcome {
	if env == nil {
		return OutcomeIgnored
	}

	if env.ChangedField() != "messages" {
		s.logger.Debug("Ignoring non-message change", logger.String("field", env.ChangedField()))
		return OutcomeIgnored
	}

	msg := env.FirstMessage()
	if msg == nil {
		// A "messages" change with no message payload is a delivery receipt
		if status := env.FirstStatus(); status != nil {
			s.logger.Info("Message delivery status",
				logger.String("message_id", status.ID),
				logger.String("status", status.Status),
				logger.String("recipient", status.RecipientID))
		} else {
			s.logger.Info("No new message in webhook event")
		}
		return OutcomeIgnored
	}

	sender := msg.From
	s.logger.Info("New message",
		logger.String("sender", sender),
		logger.String("name", env.SenderName()),
		logger.String("type", msg.Type))

	if msg.Type != "audio" {
		// Intentionally unsupported, not an error
		s.logger.Info("Unsupported message type, dropping",
			logger.String("sender", sender),
			logger.String("type", msg.Type))
		return OutcomeIgnored
	}

	if msg.Audio == nil || msg.Audio.ID == "" {
		s.logger.Error("Audio message without attachment metadata", logger.String("sender", sender))
		return OutcomeBadRequest
	}

	mediaURL, err := s.messenger.MediaURL(ctx, msg.Audio.ID)
	if err != nil {
		s.logger.Error("Failed to resolve media URL",
			logger.Error(err),
			logger.String("media_id", msg.Audio.ID))
		return OutcomeBadRequest
	}

	audioPath, err := s.messenger.DownloadMedia(ctx, mediaURL, msg.Audio.MimeType)
	if err != nil {
		s.logger.Error("Failed to download media",
			logger.Error(err),
			logger.String("media_id", msg.Audio.ID))
		return OutcomeBadRequest
	}
	// The voice note is only needed for the transcription call; remove it on
	// every exit path so failed pipelines don't accumulate files on disk.
	defer func() {
		if err := os.Remove(audioPath); err != nil {
			s.logger.Warn("Failed to remove downloaded audio", logger.Error(err), logger.String("path", audioPath))
		}
	}()

	s.logger.Info("Downloaded audio message",
		logger.String("sender", sender),
		logger.String("path", audioPath))

	transcript := s.transcriber.Transcribe(ctx, audioPath)
	if transcript == "" {
		s.logger.Error("Failed to transcribe audio", logger.String("sender", sender))
		s.notify(ctx, sender, msgTranscribeFailed)
		return OutcomeProcessed
	}
	s.logger.Info("Transcription result", logger.String("transcript", transcript))

	pair := s.extractor.Extract(ctx, transcript)
	if pair.Empty() {
		s.logger.Error("No highlights extracted from transcript", logger.String("sender", sender))
		s.notify(ctx, sender, msgExtractFailed)
		return OutcomeProcessed
	}

	if s.appender.Append(ctx, pair) {
		s.notify(ctx, sender, msgAppendOK)
	} else {
		s.notify(ctx, sender, msgAppendFailed)
	}
	return OutcomeProcessed
}

func (s *Service) notify(ctx context.Context, to, body string) {
	if err := s.messenger.SendText(ctx, to, body); err != nil {
		s.logger.Error("Failed to send notification",
			logger.Error(err),
			logger.String("to", to))
	}
}
