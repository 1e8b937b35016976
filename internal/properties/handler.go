package properties

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vivenda/marketplace-backend/internal/auth"
	"github.com/vivenda/marketplace-backend/internal/web"
)

// Handler exposes the listing surface: public browsing, agent management
// and the staff review queue.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublicRoutes mounts unauthenticated browsing endpoints.
func (h *Handler) RegisterPublicRoutes(router *gin.RouterGroup) {
	props := router.Group("/properties")
	{
		props.GET("", h.list)
		props.GET("/featured", h.featured)
		props.GET("/cities", h.cities)
		props.GET("/:slug", h.get)
	}
}

// RegisterAgentRoutes mounts listing management for verified agents.
func (h *Handler) RegisterAgentRoutes(router *gin.RouterGroup) {
	props := router.Group("/properties")
	{
		props.POST("", h.create)
		props.GET("", h.listMine)
		props.GET("/:id", h.getOwned)
		props.PATCH("/:id", h.update)
		props.DELETE("/:id", h.delete)

		props.POST("/:id/submit_for_review", h.transition(func(s *Service) transitionFunc { return s.SubmitForReview }))
		props.POST("/:id/deactivate", h.transition(func(s *Service) transitionFunc { return s.Deactivate }))
		props.POST("/:id/reactivate", h.transition(func(s *Service) transitionFunc { return s.Reactivate }))
		props.POST("/:id/mark_sold", h.transition(func(s *Service) transitionFunc { return s.MarkAsSold }))
		props.POST("/:id/mark_rented", h.transition(func(s *Service) transitionFunc { return s.MarkAsRented }))

		props.POST("/:id/images", h.addImage)
		props.DELETE("/:id/images/:imageID", h.removeImage)
	}
}

// RegisterAdminRoutes mounts the staff review queue.
func (h *Handler) RegisterAdminRoutes(router *gin.RouterGroup) {
	props := router.Group("/properties")
	{
		props.GET("/review_queue", h.reviewQueue)
		props.POST("/:id/approve", h.transition(func(s *Service) transitionFunc { return s.Approve }))
		props.POST("/:id/reject", h.reject)
		props.POST("/:id/relist", h.transition(func(s *Service) transitionFunc { return s.Relist }))
	}
}

// RegisterSavedRoutes mounts favorites for any authenticated user.
func (h *Handler) RegisterSavedRoutes(router *gin.RouterGroup) {
	saved := router.Group("/saved_properties")
	{
		saved.GET("", h.listSaved)
		saved.POST("/toggle", h.toggleSave)
	}
}

func (h *Handler) list(c *gin.Context) {
	filter := filterFromQuery(c)
	items, total, err := h.service.ListPublic(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list properties", zap.Error(err))
		web.Error(c, err)
		return
	}
	web.Paginated(c, items, total, filter.Page, filter.PageSize)
}

func (h *Handler) featured(c *gin.Context) {
	items, err := h.service.Featured(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load featured properties", zap.Error(err))
		web.Error(c, err)
		return
	}
	web.OK(c, items)
}

func (h *Handler) cities(c *gin.Context) {
	counts, err := h.service.Cities(c.Request.Context())
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, counts)
}

func (h *Handler) get(c *gin.Context) {
	property, err := h.service.GetPublicBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, property)
}

func (h *Handler) create(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	property, err := h.service.Create(c.Request.Context(), auth.PrincipalFrom(c), req)
	if err != nil {
		h.logger.Error("failed to create property", zap.Error(err))
		web.Error(c, err)
		return
	}
	web.Created(c, property)
}

func (h *Handler) listMine(c *gin.Context) {
	filter := filterFromQuery(c)
	if status := c.Query("status"); status != "" {
		filter.Status = PropertyStatus(status)
	}
	items, total, err := h.service.ListMine(c.Request.Context(), auth.PrincipalFrom(c), filter)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.Paginated(c, items, total, filter.Page, filter.PageSize)
}

func (h *Handler) getOwned(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	property, err := h.service.GetOwned(c.Request.Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, property)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	property, err := h.service.Update(c.Request.Context(), auth.PrincipalFrom(c), id, req)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, property)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), auth.PrincipalFrom(c), id); err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, gin.H{"deleted": true})
}

type transitionFunc = func(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Property, error)

func (h *Handler) transition(pick func(*Service) transitionFunc) gin.HandlerFunc {
	fire := pick(h.service)
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		property, err := fire(c.Request.Context(), auth.PrincipalFrom(c), id)
		if err != nil {
			web.Error(c, err)
			return
		}
		web.OK(c, gin.H{"status": property.Status})
	}
}

func (h *Handler) reject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	property, err := h.service.Reject(c.Request.Context(), auth.PrincipalFrom(c), id, req.Reason)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, gin.H{"status": property.Status, "rejection_reason": property.RejectionReason})
}

func (h *Handler) reviewQueue(c *gin.Context) {
	filter := filterFromQuery(c)
	items, total, err := h.service.ReviewQueue(c.Request.Context(), filter)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.Paginated(c, items, total, filter.Page, filter.PageSize)
}

func (h *Handler) addImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AddImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	image, err := h.service.AttachImage(c.Request.Context(), auth.PrincipalFrom(c), id, req)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.Created(c, image)
}

func (h *Handler) removeImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	imageID, err := uuid.Parse(c.Param("imageID"))
	if err != nil {
		web.Fail(c, http.StatusBadRequest, "invalid image id")
		return
	}
	if err := h.service.RemoveImage(c.Request.Context(), auth.PrincipalFrom(c), id, imageID); err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, gin.H{"deleted": true})
}

func (h *Handler) toggleSave(c *gin.Context) {
	var req struct {
		PropertyID uuid.UUID `json:"property_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "property_id is required")
		return
	}
	isSaved, err := h.service.ToggleSave(c.Request.Context(), auth.PrincipalFrom(c), req.PropertyID)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, gin.H{"is_saved": isSaved})
}

func (h *Handler) listSaved(c *gin.Context) {
	saved, err := h.service.ListSaved(c.Request.Context(), auth.PrincipalFrom(c))
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, saved)
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		web.Fail(c, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func filterFromQuery(c *gin.Context) Filter {
	filter := Filter{
		City:         c.Query("city"),
		State:        c.Query("state"),
		PropertyType: PropertyType(c.Query("property_type")),
		ListingType:  ListingType(c.Query("listing_type")),
		Search:       c.Query("search"),
		OrderBy:      c.Query("ordering"),
		Page:         intQuery(c, "page", 1),
		PageSize:     intQuery(c, "page_size", 20),
	}
	if v := c.Query("min_price"); v != "" {
		filter.MinPrice, _ = strconv.ParseFloat(v, 64)
	}
	if v := c.Query("max_price"); v != "" {
		filter.MaxPrice, _ = strconv.ParseFloat(v, 64)
	}
	if v := c.Query("min_bedrooms"); v != "" {
		filter.MinBedrooms, _ = strconv.Atoi(v)
	}
	if v := c.Query("is_featured"); v != "" {
		featured := v == "true"
		filter.Featured = &featured
	}
	return filter
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
