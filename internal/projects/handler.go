package projects

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

// Handler exposes the development surface: public browsing plus management
// for project admins.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublicRoutes mounts unauthenticated browsing endpoints.
func (h *Handler) RegisterPublicRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("", h.list)
		projects.GET("/featured", h.featured)
		projects.GET("/:slug", h.get)
		projects.GET("/:slug/updates", h.publicUpdates)
	}
}

// RegisterAdminRoutes mounts project management for project admins and
// staff.
func (h *Handler) RegisterAdminRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.POST("", h.create)
		projects.GET("", h.listManaged)
		projects.GET("/:id", h.getManaged)
		projects.PATCH("/:id", h.update)

		projects.POST("/:id/start_presale", h.transition(func(s *Service) projectTransition { return s.StartPresale }))
		projects.POST("/:id/start_construction", h.transition(func(s *Service) projectTransition { return s.StartConstruction }))
		projects.POST("/:id/mark_delivered", h.transition(func(s *Service) projectTransition { return s.MarkDelivered }))
		projects.POST("/:id/cancel", h.transition(func(s *Service) projectTransition { return s.Cancel }))

		projects.GET("/:id/assets", h.listAssets)
		projects.POST("/:id/assets", h.createAsset)
		projects.GET("/:id/assets/export", h.exportInventory)
		projects.PATCH("/:id/assets/:assetID", h.updateAsset)
		projects.DELETE("/:id/assets/:assetID", h.deleteAsset)

		projects.POST("/:id/assets/:assetID/reserve", h.assetTransition(func(s *Service) assetTransitionFn { return s.ReserveAsset }))
		projects.POST("/:id/assets/:assetID/mark_sold", h.assetTransition(func(s *Service) assetTransitionFn { return s.MarkAssetSold }))
		projects.POST("/:id/assets/:assetID/deliver", h.assetTransition(func(s *Service) assetTransitionFn { return s.DeliverAsset }))
		projects.POST("/:id/assets/:assetID/release", h.assetTransition(func(s *Service) assetTransitionFn { return s.ReleaseAsset }))

		projects.POST("/:id/milestones", h.addMilestone)
		projects.PUT("/:id/milestones/:milestoneID", h.updateMilestone)
		projects.DELETE("/:id/milestones/:milestoneID", h.removeMilestone)

		projects.POST("/:id/updates", h.publishUpdate)

		projects.POST("/:id/images", h.addImage)
		projects.DELETE("/:id/images/:imageID", h.removeImage)
	}
}

func (h *Handler) list(c *gin.Context) {
	filter := projectFilterFromQuery(c)
	items, total, err := h.service.ListPublic(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		web.Error(c, err)
		return
	}
	web.Paginated(c, items, total, filter.Page, filter.PageSize)
}

func (h *Handler) featured(c *gin.Context) {
	items, err := h.service.Featured(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load featured projects", zap.Error(err))
		web.Error(c, err)
		return
	}
	web.OK(c, items)
}

func (h *Handler) get(c *gin.Context) {
	project, availableAssets, err := h.service.GetPublicBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, gin.H{
		"project":          project,
		"available_assets": availableAssets,
		"progress":         project.ProgressPercentage(),
	})
}

func (h *Handler) publicUpdates(c *gin.Context) {
	posts, err := h.service.PublicUpdates(c.Request.Context(), c.Param("slug"))
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, posts)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	principal := auth.PrincipalFrom(c)
	if !principal.IsStaff {
		// Project admins always own what they create.
		req.ManagerID = &principal.UserID
	}
	project, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("failed to create project", zap.Error(err))
		web.Error(c, err)
		return
	}
	web.Created(c, project)
}

func (h *Handler) listManaged(c *gin.Context) {
	filter := projectFilterFromQuery(c)
	if status := c.Query("status"); status != "" {
		filter.Statuses = []ProjectStatus{ProjectStatus(status)}
	}
	items, total, err := h.service.ListManaged(c.Request.Context(), auth.PrincipalFrom(c), filter)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.Paginated(c, items, total, filter.Page, filter.PageSize)
}

func (h *Handler) getManaged(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	project, err := h.service.GetManaged(c.Request.Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, project)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	project, err := h.service.Update(c.Request.Context(), auth.PrincipalFrom(c), id, req)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, project)
}

type projectTransition = func(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*Project, error)

func (h *Handler) transition(pick func(*Service) projectTransition) gin.HandlerFunc {
	fire := pick(h.service)
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}
		project, err := fire(c.Request.Context(), auth.PrincipalFrom(c), id)
		if err != nil {
			web.Error(c, err)
			return
		}
		web.OK(c, gin.H{"status": project.Status})
	}
}

func (h *Handler) listAssets(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	filter := AssetFilter{
		Status:    AssetStatus(c.Query("status")),
		AssetType: AssetType(c.Query("asset_type")),
	}
	if v := c.Query("min_price"); v != "" {
		filter.MinPrice, _ = strconv.ParseFloat(v, 64)
	}
	if v := c.Query("max_price"); v != "" {
		filter.MaxPrice, _ = strconv.ParseFloat(v, 64)
	}
	if v := c.Query("bedrooms"); v != "" {
		filter.Bedrooms, _ = strconv.Atoi(v)
	}
	assets, err := h.service.ListAssets(c.Request.Context(), auth.PrincipalFrom(c), id, filter)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, assets)
}

func (h *Handler) createAsset(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	asset, err := h.service.CreateAsset(c.Request.Context(), auth.PrincipalFrom(c), id, req)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.Created(c, asset)
}

func (h *Handler) updateAsset(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	assetID, ok := pathUUID(c, "assetID")
	if !ok {
		return
	}
	var req UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	asset, err := h.service.UpdateAsset(c.Request.Context(), auth.PrincipalFrom(c), id, assetID, req)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, asset)
}

func (h *Handler) deleteAsset(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	assetID, ok := pathUUID(c, "assetID")
	if !ok {
		return
	}
	if err := h.service.DeleteAsset(c.Request.Context(), auth.PrincipalFrom(c), id, assetID); err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, gin.H{"deleted": true})
}

type assetTransitionFn = func(ctx context.Context, principal *auth.Principal, projectID, assetID uuid.UUID) (*SellableAsset, error)

func (h *Handler) assetTransition(pick func(*Service) assetTransitionFn) gin.HandlerFunc {
	fire := pick(h.service)
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}
		assetID, ok := pathUUID(c, "assetID")
		if !ok {
			return
		}
		asset, err := fire(c.Request.Context(), auth.PrincipalFrom(c), id, assetID)
		if err != nil {
			web.Error(c, err)
			return
		}
		web.OK(c, gin.H{"status": asset.Status})
	}
}

func (h *Handler) exportInventory(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	buf, name, err := h.service.ExportInventory(c.Request.Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		h.logger.Error("failed to export inventory", zap.Error(err))
		web.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *Handler) addMilestone(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req MilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	milestone, err := h.service.AddMilestone(c.Request.Context(), auth.PrincipalFrom(c), id, req)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.Created(c, milestone)
}

func (h *Handler) updateMilestone(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	milestoneID, ok := pathUUID(c, "milestoneID")
	if !ok {
		return
	}
	var req MilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	milestone, err := h.service.UpdateMilestone(c.Request.Context(), auth.PrincipalFrom(c), id, milestoneID, req)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, milestone)
}

func (h *Handler) removeMilestone(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	milestoneID, ok := pathUUID(c, "milestoneID")
	if !ok {
		return
	}
	if err := h.service.RemoveMilestone(c.Request.Context(), auth.PrincipalFrom(c), id, milestoneID); err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, gin.H{"deleted": true})
}

func (h *Handler) publishUpdate(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	post, err := h.service.PublishUpdate(c.Request.Context(), auth.PrincipalFrom(c), id, req)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.Created(c, post)
}

func (h *Handler) addImage(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req GalleryImageRequest
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
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	imageID, ok := pathUUID(c, "imageID")
	if !ok {
		return
	}
	if err := h.service.RemoveImage(c.Request.Context(), auth.PrincipalFrom(c), id, imageID); err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, gin.H{"deleted": true})
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		web.Fail(c, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func projectFilterFromQuery(c *gin.Context) Filter {
	filter := Filter{
		City:     c.Query("city"),
		Search:   c.Query("search"),
		OrderBy:  c.Query("ordering"),
		Page:     pageQuery(c, "page", 1),
		PageSize: pageQuery(c, "page_size", 20),
	}
	if v := c.Query("is_featured"); v != "" {
		featured := v == "true"
		filter.Featured = &featured
	}
	return filter
}

func pageQuery(c *gin.Context, name string, fallback int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
