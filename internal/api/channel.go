package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/huddle/internal/middleware"
	"github.com/lalith-99/huddle/internal/workspace"
	"go.uber.org/zap"
)

// ChannelHandler serves channel creation and reads. Membership changes
// live in MembershipHandler.
type ChannelHandler struct {
	engine *workspace.Engine
	logger *zap.Logger
}

func NewChannelHandler(engine *workspace.Engine, logger *zap.Logger) *ChannelHandler {
	return &ChannelHandler{engine: engine, logger: logger}
}

// createChannelRequest is the body for POST /v1/channels. IsPublic is a
// pointer so an omitted field defaults to public rather than private.
type createChannelRequest struct {
	Name     string `json:"name" binding:"required"`
	IsPublic *bool  `json:"is_public"`
}

type createChannelResponse struct {
	ChannelID int `json:"channel_id"`
}

// Create handles POST /v1/channels
func (h *ChannelHandler) Create(c *gin.Context) {
	var req createChannelRequest
	if !bindJSON(c, &req) {
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	id, err := h.engine.CreateChannel(c.Request.Context(), middleware.GetUserID(c), req.Name, isPublic)
	if err != nil {
		respondError(c, h.logger, err, "create channel")
		return
	}
	c.JSON(http.StatusCreated, createChannelResponse{ChannelID: id})
}

// List handles GET /v1/channels?all=true
//
// Without all, only the caller's channels are returned.
func (h *ChannelHandler) List(c *gin.Context) {
	all := c.Query("all") == "true"
	channels, err := h.engine.ListChannels(c.Request.Context(), middleware.GetUserID(c), all)
	if err != nil {
		respondError(c, h.logger, err, "list channels")
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

// Details handles GET /v1/channels/:id
func (h *ChannelHandler) Details(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	details, err := h.engine.ChannelDetails(c.Request.Context(), middleware.GetUserID(c), channelID)
	if err != nil {
		respondError(c, h.logger, err, "get channel")
		return
	}
	c.JSON(http.StatusOK, details)
}
