package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"kaycrm/internal/automation/core"
	apperrors "kaycrm/pkg/errors"
	httputil "kaycrm/pkg/http"
	"kaycrm/pkg/logger"
	"kaycrm/pkg/middleware"
)

const WebhookPath = "/api/v1/webhooks/automation"

type WebhookHandler struct {
	engine *core.Engine
	log    *logger.Logger
}

func NewWebhookHandler(engine *core.Engine, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		engine: engine,
		log:    log,
	}
}

type WebhookRequest struct {
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload"`
}

type WebhookResponse struct {
	Success bool           `json:"success"`
	Action  string         `json:"action"`
	Output  map[string]any `json:"output,omitempty"`
}

type ListActionsResponse struct {
	Actions []string `json:"actions"`
}

func (h *WebhookHandler) Execute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("failed to decode webhook request", "error", err, "request_id", middleware.RequestIDFromContext(r.Context()))
		h.writeError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	if req.Action == "" {
		h.writeError(w, apperrors.InvalidInput("action is required"))
		return
	}

	h.log.Info("executing automation action", "action", req.Action, "request_id", middleware.RequestIDFromContext(r.Context()))

	fc := core.NewFlowContext(r.Context(), req.Payload)
	if err := h.engine.Run(req.Action, fc); err != nil {
		h.log.Warn("automation action failed", "action", req.Action, "error", err)
		h.writeError(w, toAppError(err))
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, WebhookResponse{
		Success: true,
		Action:  req.Action,
		Output:  fc.Output,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Execute", "operation", "WriteJSON", "error", err)
	}
}

func (h *WebhookHandler) ListActions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, ListActionsResponse{
		Actions: h.engine.Flows(),
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "ListActions", "operation", "WriteJSON", "error", err)
	}
}

// toAppError keeps coordinator errors as they are and turns engine errors
// into client errors.
func toAppError(err error) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, core.ErrUnknownFlow):
		return apperrors.InvalidInput("Unsupported action").WithCause(err)
	case errors.Is(err, core.ErrMissingParam):
		return apperrors.InvalidInput(err.Error()).WithCause(err)
	default:
		return apperrors.Internal("Automation action failed", err)
	}
}

func (h *WebhookHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Execute", "operation", "WriteError", "error", writeErr)
	}
}

func (h *WebhookHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(WebhookPath, h.Execute)
	router.GET(WebhookPath+"/actions", h.ListActions)
}
