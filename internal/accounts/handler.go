package accounts

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vivenda/marketplace-backend/internal/web"
)

// Handler exposes the public agent directory. The authenticated profile
// endpoints live in internal/auth, which owns the request principal.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublicRoutes mounts the agent directory.
func (h *Handler) RegisterPublicRoutes(router *gin.RouterGroup) {
	agents := router.Group("/agents")
	{
		agents.GET("", h.listAgents)
		agents.GET("/:slug", h.getAgent)
	}
}

func (h *Handler) listAgents(c *gin.Context) {
	filter := AgentFilter{
		AgentType: AgentType(c.Query("agent_type")),
		Search:    c.Query("search"),
		Page:      intQuery(c, "page", 1),
		PageSize:  intQuery(c, "page_size", 20),
	}
	agents, total, err := h.service.ListAgents(c.Request.Context(), filter)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.Paginated(c, agents, total, filter.Page, filter.PageSize)
}

func (h *Handler) getAgent(c *gin.Context) {
	agent, err := h.service.GetAgentBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, agent)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
