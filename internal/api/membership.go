package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/huddle/internal/middleware"
	"github.com/lalith-99/huddle/internal/workspace"
	"go.uber.org/zap"
)

// MembershipHandler serves joining, inviting, leaving and channel
// ownership changes.
type MembershipHandler struct {
	engine *workspace.Engine
	logger *zap.Logger
}

func NewMembershipHandler(engine *workspace.Engine, logger *zap.Logger) *MembershipHandler {
	return &MembershipHandler{engine: engine, logger: logger}
}

type targetUserRequest struct {
	UserID int `json:"u_id" binding:"required"`
}

// Join handles POST /v1/channels/:id/join
//
// Join is a user acting on themselves; Invite is a member adding someone
// else. Private channels only accept the second, except for global owners.
func (h *MembershipHandler) Join(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.engine.JoinChannel(c.Request.Context(), middleware.GetUserID(c), channelID); err != nil {
		respondError(c, h.logger, err, "join channel")
		return
	}
	c.Status(http.StatusNoContent)
}

// Invite handles POST /v1/channels/:id/invite
func (h *MembershipHandler) Invite(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req targetUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.engine.InviteToChannel(c.Request.Context(), middleware.GetUserID(c), channelID, req.UserID); err != nil {
		respondError(c, h.logger, err, "invite to channel")
		return
	}
	c.Status(http.StatusNoContent)
}

// Leave handles POST /v1/channels/:id/leave
func (h *MembershipHandler) Leave(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.engine.LeaveChannel(c.Request.Context(), middleware.GetUserID(c), channelID); err != nil {
		respondError(c, h.logger, err, "leave channel")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddOwner handles POST /v1/channels/:id/owners
func (h *MembershipHandler) AddOwner(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req targetUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.engine.AddChannelOwner(c.Request.Context(), middleware.GetUserID(c), channelID, req.UserID); err != nil {
		respondError(c, h.logger, err, "add channel owner")
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveOwner handles DELETE /v1/channels/:id/owners/:uid
func (h *MembershipHandler) RemoveOwner(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	targetID, ok := paramID(c, "uid")
	if !ok {
		return
	}
	if err := h.engine.RemoveChannelOwner(c.Request.Context(), middleware.GetUserID(c), channelID, targetID); err != nil {
		respondError(c, h.logger, err, "remove channel owner")
		return
	}
	c.Status(http.StatusNoContent)
}

// LeaveDm handles POST /v1/dms/:id/leave
func (h *MembershipHandler) LeaveDm(c *gin.Context) {
	dmID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.engine.LeaveDm(c.Request.Context(), middleware.GetUserID(c), dmID); err != nil {
		respondError(c, h.logger, err, "leave dm")
		return
	}
	c.Status(http.StatusNoContent)
}
