package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/huddle/internal/middleware"
	"github.com/lalith-99/huddle/internal/models"
	"github.com/lalith-99/huddle/internal/workspace"
	"go.uber.org/zap"
)

// AdminHandler serves global-owner operations. The engine checks the
// caller's role; the routes are only grouped for readability.
type AdminHandler struct {
	engine *workspace.Engine
	logger *zap.Logger
}

func NewAdminHandler(engine *workspace.Engine, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{engine: engine, logger: logger}
}

type permissionRequest struct {
	PermissionID int `json:"permission_id" binding:"required"`
}

// RemoveUser handles DELETE /v1/admin/users/:id
func (h *AdminHandler) RemoveUser(c *gin.Context) {
	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.engine.RemoveUser(c.Request.Context(), middleware.GetUserID(c), targetID); err != nil {
		respondError(c, h.logger, err, "remove user")
		return
	}
	c.Status(http.StatusNoContent)
}

// SetPermission handles PUT /v1/admin/users/:id/permission
func (h *AdminHandler) SetPermission(c *gin.Context) {
	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req permissionRequest
	if !bindJSON(c, &req) {
		return
	}
	role := models.GlobalRole(req.PermissionID)
	if err := h.engine.SetPermission(c.Request.Context(), middleware.GetUserID(c), targetID, role); err != nil {
		respondError(c, h.logger, err, "set permission")
		return
	}
	c.Status(http.StatusNoContent)
}
