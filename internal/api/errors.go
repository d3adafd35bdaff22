package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/huddle/internal/middleware"
	"github.com/lalith-99/huddle/internal/workspace"
	"go.uber.org/zap"
)

// statusFor maps an engine error kind to its HTTP status.
func statusFor(kind workspace.Kind) int {
	switch kind {
	case workspace.KindNotFound:
		return http.StatusNotFound
	case workspace.KindForbidden:
		return http.StatusForbidden
	case workspace.KindInvalidArgument:
		return http.StatusBadRequest
	case workspace.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err to the client. Expected failures carry their
// own message; anything else is logged and hidden behind "failed to
// <action>".
func respondError(c *gin.Context, logger *zap.Logger, err error, action string) {
	var werr *workspace.Error
	if errors.As(err, &werr) {
		c.JSON(statusFor(werr.Kind), gin.H{"error": werr.Msg})
		return
	}
	logger.Error("failed to "+action,
		zap.Error(err),
		zap.String("request_id", middleware.GetRequestID(c)),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + action})
}

// paramID parses the integer path parameter name, writing a 400 if it is
// not one.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// bindJSON decodes the body into req, writing a 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
