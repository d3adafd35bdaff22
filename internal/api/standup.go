package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/huddle/internal/middleware"
	"github.com/lalith-99/huddle/internal/workspace"
	"go.uber.org/zap"
)

type StandupHandler struct {
	engine *workspace.Engine
	logger *zap.Logger
}

func NewStandupHandler(engine *workspace.Engine, logger *zap.Logger) *StandupHandler {
	return &StandupHandler{engine: engine, logger: logger}
}

// startStandupRequest.Length is in seconds. It is a pointer so that 0,
// which flushes immediately, is distinguishable from a missing field.
type startStandupRequest struct {
	Length *int `json:"length" binding:"required"`
}

// Start handles POST /v1/channels/:id/standup
func (h *StandupHandler) Start(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req startStandupRequest
	if !bindJSON(c, &req) {
		return
	}
	finish, err := h.engine.StartStandup(c.Request.Context(), middleware.GetUserID(c), channelID, *req.Length)
	if err != nil {
		respondError(c, h.logger, err, "start standup")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"time_finish": finish})
}

// Active handles GET /v1/channels/:id/standup
func (h *StandupHandler) Active(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	status, err := h.engine.StandupActive(c.Request.Context(), middleware.GetUserID(c), channelID)
	if err != nil {
		respondError(c, h.logger, err, "get standup")
		return
	}
	c.JSON(http.StatusOK, status)
}

// Send handles POST /v1/channels/:id/standup/messages
func (h *StandupHandler) Send(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req messageRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.engine.SendStandup(c.Request.Context(), middleware.GetUserID(c), channelID, req.Message); err != nil {
		respondError(c, h.logger, err, "send standup")
		return
	}
	c.Status(http.StatusNoContent)
}
