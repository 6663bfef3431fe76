package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/varsilias/persona-proxy/internal/buildinfo"
	"github.com/varsilias/persona-proxy/internal/models"
	"github.com/varsilias/persona-proxy/internal/requestid"
	"github.com/varsilias/persona-proxy/pkg/types"
	"github.com/varsilias/persona-proxy/pkg/utils"
)

// Chatter runs one conversation turn. *chat.Controller implements it.
type Chatter interface {
	Chat(ctx context.Context, conversation []types.Message) (string, error)
	Model() string
}

type Handlers struct {
	log    *slog.Logger
	chat   Chatter
	models models.Manager
}

func NewHandlers(log *slog.Logger, chat Chatter, manager models.Manager) *Handlers {
	return &Handlers{
		log:    log,
		chat:   chat,
		models: manager,
	}
}

// Health is a basic liveness endpoint.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	res := map[string]any{
		"status":    true,
		"message":   "persona-proxy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	utils.JSON(w, http.StatusOK, res)
}

// Ready reports whether the configured model is reachable at the provider.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	model := h.chat.Model()
	if err := h.models.Healthy(ctx, model); err != nil {
		h.log.Warn("readiness check failed", "model", model, "err", err)
		utils.JSON(w, http.StatusServiceUnavailable, map[string]any{
			"ready": false,
			"model": model,
			"error": err.Error(),
		})
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"ready": true, "model": model})
}

func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, buildinfo.Fields())
}

// Chat POST /api/chat { messages?: [{role, content}] }
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	conversation, dropped := decodeConversation(r.Body)
	if dropped > 0 {
		h.log.Warn("dropped undecodable messages",
			"dropped", dropped,
			"kept", len(conversation),
			"req_id", requestid.FromContext(r.Context()),
		)
	}

	reply, err := h.chat.Chat(r.Context(), conversation)
	if err != nil {
		utils.ServerError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, types.ChatResponse{Reply: reply})
}

// decodeConversation never fails: an absent or unreadable body, a missing
// "messages" field or one that is not an array all become an empty
// conversation. Inside an array, each element is decoded on its own; the ones
// that are not {role, content} objects are skipped and counted in dropped.
func decodeConversation(body io.Reader) (conversation []types.Message, dropped int) {
	if body == nil {
		return nil, 0
	}
	var req struct {
		Messages json.RawMessage `json:"messages"`
	}
	if err := json.NewDecoder(body).Decode(&req); err != nil || len(req.Messages) == 0 {
		return nil, 0
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(req.Messages, &elems); err != nil {
		return nil, 0
	}

	conversation = make([]types.Message, 0, len(elems))
	for _, raw := range elems {
		var m types.Message
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) || json.Unmarshal(raw, &m) != nil {
			dropped++
			continue
		}
		conversation = append(conversation, m)
	}
	return conversation, dropped
}
