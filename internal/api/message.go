package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/huddle/internal/middleware"
	"github.com/lalith-99/huddle/internal/models"
	"github.com/lalith-99/huddle/internal/workspace"
	"go.uber.org/zap"
)

type MessageHandler struct {
	engine *workspace.Engine
	logger *zap.Logger
}

func NewMessageHandler(engine *workspace.Engine, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{engine: engine, logger: logger}
}

// Bodies are not marked required: an empty edit removes the message, and
// an empty send is rejected by the engine with its own message.
type messageRequest struct {
	Message string `json:"message"`
}

type shareRequest struct {
	Comment string              `json:"message"`
	Target  models.ContainerRef `json:"target"`
}

type reactRequest struct {
	ReactID int `json:"react_id" binding:"required"`
}

type messageIDResponse struct {
	MessageID int `json:"message_id"`
}

// Send returns the handler for POST /v1/channels/:id/messages or
// POST /v1/dms/:id/messages, depending on kind.
func (h *MessageHandler) Send(kind models.ContainerKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		containerID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req messageRequest
		if !bindJSON(c, &req) {
			return
		}
		ref := models.ContainerRef{Kind: kind, ID: containerID}
		id, err := h.engine.SendMessage(c.Request.Context(), middleware.GetUserID(c), ref, req.Message)
		if err != nil {
			respondError(c, h.logger, err, "send message")
			return
		}
		c.JSON(http.StatusCreated, messageIDResponse{MessageID: id})
	}
}

// List returns the handler for GET /v1/{channels,dms}/:id/messages?start=0
//
// Pages hold up to 50 messages, newest first. The response's "end" is the
// next start, or -1 once the oldest message has been returned.
func (h *MessageHandler) List(kind models.ContainerKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		containerID, ok := paramID(c, "id")
		if !ok {
			return
		}
		start := 0
		if s := c.Query("start"); s != "" {
			var err error
			start, err = strconv.Atoi(s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'start' parameter"})
				return
			}
		}
		ref := models.ContainerRef{Kind: kind, ID: containerID}
		page, err := h.engine.Messages(c.Request.Context(), middleware.GetUserID(c), ref, start)
		if err != nil {
			respondError(c, h.logger, err, "list messages")
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// Get handles GET /v1/messages/:id
func (h *MessageHandler) Get(c *gin.Context) {
	messageID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	located, err := h.engine.LookupMessage(ctx, messageID)
	if err != nil {
		respondError(c, h.logger, err, "get message")
		return
	}
	member, err := h.engine.IsMember(ctx, middleware.GetUserID(c), located.Container)
	if err != nil {
		respondError(c, h.logger, err, "get message")
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "user is not a member of this " + string(located.Container.Kind)})
		return
	}
	c.JSON(http.StatusOK, located)
}

// Edit handles PATCH /v1/messages/:id
func (h *MessageHandler) Edit(c *gin.Context) {
	messageID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req messageRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.engine.EditMessage(c.Request.Context(), middleware.GetUserID(c), messageID, req.Message); err != nil {
		respondError(c, h.logger, err, "edit message")
		return
	}
	c.Status(http.StatusNoContent)
}

// Remove handles DELETE /v1/messages/:id
func (h *MessageHandler) Remove(c *gin.Context) {
	messageID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.engine.RemoveMessage(c.Request.Context(), middleware.GetUserID(c), messageID); err != nil {
		respondError(c, h.logger, err, "remove message")
		return
	}
	c.Status(http.StatusNoContent)
}

// Share handles POST /v1/messages/:id/share
func (h *MessageHandler) Share(c *gin.Context) {
	messageID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req shareRequest
	if !bindJSON(c, &req) {
		return
	}
	id, err := h.engine.ShareMessage(c.Request.Context(), middleware.GetUserID(c), messageID, req.Comment, req.Target)
	if err != nil {
		respondError(c, h.logger, err, "share message")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"shared_message_id": id})
}

// Pin handles POST /v1/messages/:id/pin
func (h *MessageHandler) Pin(c *gin.Context) {
	h.simple(c, "pin message", h.engine.PinMessage)
}

// Unpin handles POST /v1/messages/:id/unpin
func (h *MessageHandler) Unpin(c *gin.Context) {
	h.simple(c, "unpin message", h.engine.UnpinMessage)
}

func (h *MessageHandler) simple(c *gin.Context, action string, op func(ctx context.Context, actorID, messageID int) error) {
	messageID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := op(c.Request.Context(), middleware.GetUserID(c), messageID); err != nil {
		respondError(c, h.logger, err, action)
		return
	}
	c.Status(http.StatusNoContent)
}

// React handles POST /v1/messages/:id/react
func (h *MessageHandler) React(c *gin.Context) {
	h.react(c, "react", h.engine.React)
}

// Unreact handles POST /v1/messages/:id/unreact
func (h *MessageHandler) Unreact(c *gin.Context) {
	h.react(c, "unreact", h.engine.Unreact)
}

func (h *MessageHandler) react(c *gin.Context, action string, op func(ctx context.Context, uid, messageID, reactID int) error) {
	messageID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req reactRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := op(c.Request.Context(), middleware.GetUserID(c), messageID, req.ReactID); err != nil {
		respondError(c, h.logger, err, action)
		return
	}
	c.Status(http.StatusNoContent)
}
