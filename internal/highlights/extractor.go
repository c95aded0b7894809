package highlights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"voicewins/internal/ai"
	"voicewins/pkg/logger"
)

// JSON keys the model is instructed to return
const (
	keyPhysicalWin     = "Physical Win"
	keySocialHighlight = "Social Highlight"
)

const systemPrompt = "You are a helpful assistant."

// Pair holds the two structured fields extracted from a transcript.
// Either field may be empty; a pair with both fields empty is the
// failure sentinel.
type Pair struct {
	PhysicalWin     string
	SocialHighlight string
}

// Empty reports whether both fields are blank
func (p Pair) Empty() bool {
	return p.PhysicalWin == "" && p.SocialHighlight == ""
}

// Extractor derives a highlight Pair from a transcript using an LLM
type Extractor struct {
	provider ai.ChatProvider
	config   ai.ChatConfig
	logger   *logger.Logger
}

// NewExtractor creates a new highlight extractor
func NewExtractor(provider ai.ChatProvider, config ai.ChatConfig, log *logger.Logger) *Extractor {
	return &Extractor{
		provider: provider,
		config:   config,
		logger:   log.Named("highlights"),
	}
}

// buildPrompt embeds the transcript verbatim in the fixed instruction prompt
func buildPrompt(transcript string) string {
	return fmt.Sprintf(`
Extract the following details from the transcription:
1. Physical Win (any achievement related to fitness or physical activities).
2. Social Highlight (any notable social event, interaction, or highlight).

Return the result as a JSON object with keys 'Physical Win' and 'Social Highlight'.
Please do not format the response with any code blocks or markdown; just provide the JSON object.

Transcription: "%s"
`, transcript)
}

// Extract makes exactly one model call and parses the reply as a JSON
// object with the two expected keys. Every failure mode (provider error,
// empty reply, malformed JSON, JSON null) collapses to the empty Pair;
// missing keys default independently to the empty string.
func (e *Extractor) Extract(ctx context.Context, transcript string) Pair {
	messages := []ai.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(transcript)},
	}

	reply, err := e.provider.ChatCompletion(ctx, messages, e.config)
	if err != nil {
		e.logger.Error("Chat completion failed", logger.Error(err))
		return Pair{}
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		e.logger.Error("Empty reply from model")
		return Pair{}
	}

	e.logger.Info("Model reply", logger.String("reply", reply))

	var raw map[string]any
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		e.logger.Error("Failed to parse model reply as JSON",
			logger.Error(err),
			logger.String("reply", reply))
		return Pair{}
	}
	// A bare JSON null parses without error into a nil map
	if raw == nil {
		e.logger.Error("Model reply is JSON null", logger.String("reply", reply))
		return Pair{}
	}

	return Pair{
		PhysicalWin:     stringField(raw, keyPhysicalWin),
		SocialHighlight: stringField(raw, keySocialHighlight),
	}
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
