package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/huddle/internal/middleware"
	"github.com/lalith-99/huddle/internal/workspace"
	"go.uber.org/zap"
)

// UserHandler serves profiles and the caller's notification feed.
type UserHandler struct {
	engine *workspace.Engine
	logger *zap.Logger
}

func NewUserHandler(engine *workspace.Engine, logger *zap.Logger) *UserHandler {
	return &UserHandler{engine: engine, logger: logger}
}

// GetMe handles GET /v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	uid := middleware.GetUserID(c)
	h.respondProfile(c, uid, uid)
}

// Get handles GET /v1/users/:id
//
// Removed users still resolve, with their anonymized fields, so old
// messages can show who sent them.
func (h *UserHandler) Get(c *gin.Context) {
	uid, ok := paramID(c, "id")
	if !ok {
		return
	}
	h.respondProfile(c, middleware.GetUserID(c), uid)
}

func (h *UserHandler) respondProfile(c *gin.Context, actorID, uid int) {
	profile, err := h.engine.Profile(c.Request.Context(), actorID, uid)
	if err != nil {
		respondError(c, h.logger, err, "get user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": profile})
}

// List handles GET /v1/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.engine.ListUsers(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err, "list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Notifications handles GET /v1/notifications
//
// Returns the 20 most recent notifications, newest first. Reading does
// not clear the feed.
func (h *UserHandler) Notifications(c *gin.Context) {
	notes, err := h.engine.Notifications(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err, "get notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notes})
}
