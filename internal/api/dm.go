package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/huddle/internal/middleware"
	"github.com/lalith-99/huddle/internal/workspace"
	"go.uber.org/zap"
)

type DmHandler struct {
	engine *workspace.Engine
	logger *zap.Logger
}

func NewDmHandler(engine *workspace.Engine, logger *zap.Logger) *DmHandler {
	return &DmHandler{engine: engine, logger: logger}
}

// createDmRequest lists the invitees; the caller is always a member.
type createDmRequest struct {
	UserIDs []int `json:"u_ids"`
}

// Create handles POST /v1/dms
func (h *DmHandler) Create(c *gin.Context) {
	var req createDmRequest
	if !bindJSON(c, &req) {
		return
	}
	id, err := h.engine.CreateDm(c.Request.Context(), middleware.GetUserID(c), req.UserIDs)
	if err != nil {
		respondError(c, h.logger, err, "create dm")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"dm_id": id})
}

// List handles GET /v1/dms
func (h *DmHandler) List(c *gin.Context) {
	dms, err := h.engine.ListDms(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err, "list dms")
		return
	}
	c.JSON(http.StatusOK, gin.H{"dms": dms})
}

// Details handles GET /v1/dms/:id
func (h *DmHandler) Details(c *gin.Context) {
	dmID, ok := paramID(c, "id")
	if !ok {
		return
	}
	details, err := h.engine.DmDetails(c.Request.Context(), middleware.GetUserID(c), dmID)
	if err != nil {
		respondError(c, h.logger, err, "get dm")
		return
	}
	c.JSON(http.StatusOK, details)
}
