package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/huddle/internal/auth"
	"github.com/lalith-99/huddle/internal/workspace"
	"go.uber.org/zap"
)

// AuthHandler serves register and login, the only public endpoints. They
// sit outside AuthMiddleware because the caller has no token yet.
type AuthHandler struct {
	engine    *workspace.Engine
	jwtSecret string
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewAuthHandler(engine *workspace.Engine, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		engine:    engine,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Field rules (email shape, password length, name length) are checked by
// the engine so every transport gets the same errors.
type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	NameFirst string `json:"name_first"`
	NameLast  string `json:"name_last"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// authResponse is what both register and login return. The client sends
// the token as "Authorization: Bearer <token>" from then on.
type authResponse struct {
	Token  string `json:"token"`
	UserID int    `json:"auth_user_id"`
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	uid, err := h.engine.Register(c.Request.Context(), workspace.RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		NameFirst: req.NameFirst,
		NameLast:  req.NameLast,
	})
	if err != nil {
		respondError(c, h.logger, err, "register")
		return
	}
	h.respondToken(c, http.StatusCreated, uid)
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	uid, err := h.engine.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err, "log in")
		return
	}
	h.respondToken(c, http.StatusOK, uid)
}

func (h *AuthHandler) respondToken(c *gin.Context, status, uid int) {
	token, err := auth.GenerateToken(uid, h.jwtSecret, h.tokenTTL)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err), zap.Int("u_id", uid))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(status, authResponse{Token: token, UserID: uid})
}
