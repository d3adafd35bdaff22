package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/huddle/internal/middleware"
	"github.com/lalith-99/huddle/internal/models"
	"github.com/lalith-99/huddle/internal/workspace"
	"go.uber.org/zap"
)

// RouterConfig carries everything NewRouter needs beyond the engine.
type RouterConfig struct {
	JWTSecret string
	TokenTTL  time.Duration

	// Stream serves the notification WebSocket. Nil leaves the route out.
	Stream gin.HandlerFunc

	// Health reports storage reachability for /v1/health. Nil always
	// reports ok.
	Health func(ctx context.Context) error
}

// NewRouter wires every handler onto a gin engine.
//
// Health, register and login are public; every other /v1 route goes
// through AuthMiddleware and reaches the handler with a resolved user ID.
func NewRouter(engine *workspace.Engine, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(logger), gin.Recovery())

	r.GET("/v1/health", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health(c.Request.Context()); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(engine, cfg.JWTSecret, cfg.TokenTTL, logger)
	r.POST("/v1/auth/register", authHandler.Register)
	r.POST("/v1/auth/login", authHandler.Login)

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	users := NewUserHandler(engine, logger)
	v1.GET("/users", users.List)
	v1.GET("/users/me", users.GetMe)
	v1.GET("/users/:id", users.Get)
	v1.GET("/notifications", users.Notifications)
	if cfg.Stream != nil {
		v1.GET("/notifications/stream", cfg.Stream)
	}

	channels := NewChannelHandler(engine, logger)
	membership := NewMembershipHandler(engine, logger)
	messages := NewMessageHandler(engine, logger)
	standups := NewStandupHandler(engine, logger)
	v1.POST("/channels", channels.Create)
	v1.GET("/channels", channels.List)
	v1.GET("/channels/:id", channels.Details)
	v1.POST("/channels/:id/join", membership.Join)
	v1.POST("/channels/:id/invite", membership.Invite)
	v1.POST("/channels/:id/leave", membership.Leave)
	v1.POST("/channels/:id/owners", membership.AddOwner)
	v1.DELETE("/channels/:id/owners/:uid", membership.RemoveOwner)
	v1.GET("/channels/:id/messages", messages.List(models.KindChannel))
	v1.POST("/channels/:id/messages", messages.Send(models.KindChannel))
	v1.POST("/channels/:id/standup", standups.Start)
	v1.GET("/channels/:id/standup", standups.Active)
	v1.POST("/channels/:id/standup/messages", standups.Send)

	dms := NewDmHandler(engine, logger)
	v1.POST("/dms", dms.Create)
	v1.GET("/dms", dms.List)
	v1.GET("/dms/:id", dms.Details)
	v1.POST("/dms/:id/leave", membership.LeaveDm)
	v1.GET("/dms/:id/messages", messages.List(models.KindDm))
	v1.POST("/dms/:id/messages", messages.Send(models.KindDm))

	v1.GET("/messages/:id", messages.Get)
	v1.PATCH("/messages/:id", messages.Edit)
	v1.DELETE("/messages/:id", messages.Remove)
	v1.POST("/messages/:id/share", messages.Share)
	v1.POST("/messages/:id/pin", messages.Pin)
	v1.POST("/messages/:id/unpin", messages.Unpin)
	v1.POST("/messages/:id/react", messages.React)
	v1.POST("/messages/:id/unreact", messages.Unreact)

	admin := NewAdminHandler(engine, logger)
	v1.DELETE("/admin/users/:id", admin.RemoveUser)
	v1.PUT("/admin/users/:id/permission", admin.SetPermission)

	return r
}
