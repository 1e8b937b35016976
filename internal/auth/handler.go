package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vivenda/marketplace-backend/internal/accounts"
	"github.com/vivenda/marketplace-backend/internal/web"
)

// Handler exposes the authenticated user's own profile. It lives here
// rather than in accounts because it works on the request principal.
type Handler struct {
	users  *accounts.Service
	logger *zap.Logger
}

func NewHandler(users *accounts.Service, logger *zap.Logger) *Handler {
	return &Handler{users: users, logger: logger}
}

// RegisterMyRoutes mounts the profile endpoints; the group must carry
// Authenticate.
func (h *Handler) RegisterMyRoutes(router *gin.RouterGroup) {
	router.GET("/me", h.me)
	router.PATCH("/me", h.updateProfile)
}

func (h *Handler) me(c *gin.Context) {
	principal := PrincipalFrom(c)
	user, err := h.users.GetByID(c.Request.Context(), principal.UserID)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, user)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req accounts.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	principal := PrincipalFrom(c)
	user, err := h.users.UpdateProfile(c.Request.Context(), principal.UserID, req)
	if err != nil {
		h.logger.Warn("profile update failed", zap.Error(err))
		web.Error(c, err)
		return
	}
	web.OK(c, user)
}
