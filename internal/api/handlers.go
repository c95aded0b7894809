package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"voicewins/internal/pipeline"
	"voicewins/internal/whatsapp"
	"voicewins/pkg/logger"
)

// Dispatcher processes one classified webhook envelope
type Dispatcher interface {
	HandleEvent(ctx context.Context, env *whatsapp.Envelope) pipeline.Outcome
}

// Handler contains the webhook HTTP handlers
type Handler struct {
	dispatcher  Dispatcher
	verifyToken string
	logger      *logger.Logger
}

// NewHandler creates a new webhook handler
func NewHandler(dispatcher Dispatcher, verifyToken string, log *logger.Logger) *Handler {
	return &Handler{
		dispatcher:  dispatcher,
		verifyToken: verifyToken,
		logger:      log.Named("api-handler"),
	}
}

// VerifyWebhook answers the platform's webhook subscription handshake.
// A matching hub.verify_token echoes hub.challenge back; a mismatch
// returns an error body. Both cases respond 200, matching the platform's
// observed handshake behavior.
func (h *Handler) VerifyWebhook(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("hub.verify_token")
	if token != h.verifyToken {
		h.logger.Error("Webhook verification failed")
		w.Write([]byte("Invalid verification token"))
		return
	}

	h.logger.Info("Verified webhook")
	w.Write([]byte(r.URL.Query().Get("hub.challenge")))
}

// HandleWebhook accepts one webhook event POST and drives the pipeline.
// Pipeline failures never surface as server errors: the platform redelivers
// on non-2xx, and a redelivery storm helps nobody.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("Failed to read webhook body", logger.Error(err))
		w.WriteHeader(http.StatusOK)
		return
	}

	if len(body) == 0 {
		w.WriteHeader(http.StatusOK)
		return
	}

	var env whatsapp.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		h.logger.Warn("Unparseable webhook body", logger.Error(err), logger.Int("body_length", len(body)))
		w.WriteHeader(http.StatusOK)
		return
	}

	h.logger.Debug("Received webhook event", logger.String("changed_field", env.ChangedField()))

	outcome := h.dispatcher.HandleEvent(r.Context(), &env)
	if outcome == pipeline.OutcomeBadRequest {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	w.Write([]byte("OK"))
}

// Health reports service liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
