package inquiries

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vivenda/marketplace-backend/internal/auth"
	"github.com/vivenda/marketplace-backend/internal/web"
)

// Handler exposes public inquiry submission and the agent inbox.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublicRoutes mounts the unauthenticated submission endpoint.
func (h *Handler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.POST("/inquiries", h.submit)
}

// RegisterAgentRoutes mounts the agent inbox.
func (h *Handler) RegisterAgentRoutes(router *gin.RouterGroup) {
	inbox := router.Group("/inquiries")
	{
		inbox.GET("", h.list)
		inbox.GET("/stats", h.stats)
		inbox.GET("/:id", h.get)
		inbox.POST("/:id/contact", h.advance(TransitionContact))
		inbox.POST("/:id/start_progress", h.advance(TransitionStartProgress))
		inbox.POST("/:id/qualify", h.advance(TransitionQualify))
		inbox.POST("/:id/close", h.advance(TransitionClose))
		inbox.POST("/:id/mark_spam", h.advance(TransitionMarkSpam))
		inbox.POST("/:id/notes", h.addNote)
	}
}

func (h *Handler) submit(c *gin.Context) {
	var req CreateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	// Principal is optional here: the endpoint is public.
	principal := auth.PrincipalFrom(c)
	inquiry, err := h.service.Submit(c.Request.Context(), principal, req,
		c.ClientIP(), c.Request.UserAgent(), c.Request.Referer())
	if err != nil {
		h.logger.Warn("inquiry rejected", zap.Error(err))
		web.Error(c, err)
		return
	}
	web.Created(c, inquiry)
}

func (h *Handler) list(c *gin.Context) {
	filter := Filter{
		Status:   InquiryStatus(c.Query("status")),
		Search:   c.Query("search"),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}
	if v := c.Query("property_id"); v != "" {
		if propertyID, err := uuid.Parse(v); err == nil {
			filter.PropertyID = propertyID
		}
	}
	items, total, err := h.service.Inbox(c.Request.Context(), auth.PrincipalFrom(c), filter)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.Paginated(c, items, total, filter.Page, filter.PageSize)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.service.InboxStats(c.Request.Context(), auth.PrincipalFrom(c))
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, stats)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	inquiry, err := h.service.Get(c.Request.Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, inquiry)
}

func (h *Handler) advance(transition string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		inquiry, err := h.service.Advance(c.Request.Context(), auth.PrincipalFrom(c), id, transition)
		if err != nil {
			web.Error(c, err)
			return
		}
		web.OK(c, gin.H{"status": inquiry.Status})
	}
}

func (h *Handler) addNote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "content is required")
		return
	}
	note, err := h.service.AddNote(c.Request.Context(), auth.PrincipalFrom(c), id, req.Content)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.Created(c, note)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		web.Fail(c, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
