package contracts

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

// Handler exposes contract management nested under projects, plus the
// buyer's own read-only surface.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdminRoutes mounts contract management for project admins and
// staff, nested under a project.
func (h *Handler) RegisterAdminRoutes(router *gin.RouterGroup) {
	contracts := router.Group("/projects/:id/contracts")
	{
		contracts.POST("", h.create)
		contracts.GET("", h.list)
		contracts.GET("/:contractID", h.get)
		contracts.PATCH("/:contractID", h.update)

		contracts.POST("/:contractID/sign", h.transition(func(s *Service) contractTransition { return s.Sign }))
		contracts.POST("/:contractID/activate", h.transition(func(s *Service) contractTransition { return s.Activate }))
		contracts.POST("/:contractID/complete", h.transition(func(s *Service) contractTransition { return s.Complete }))
		contracts.POST("/:contractID/cancel", h.transition(func(s *Service) contractTransition { return s.Cancel }))

		contracts.GET("/:contractID/statement", h.projectStatement)

		contracts.POST("/:contractID/payments", h.addPayment)
		contracts.POST("/:contractID/payments/generate", h.generateSchedule)
		contracts.POST("/:contractID/payments/:paymentID/mark_paid", h.markPaid)
		contracts.POST("/:contractID/payments/:paymentID/waive", h.waive)
		contracts.DELETE("/:contractID/payments/:paymentID", h.removePayment)
	}
}

// RegisterBuyerRoutes mounts the buyer's own contracts for any
// authenticated user.
func (h *Handler) RegisterBuyerRoutes(router *gin.RouterGroup) {
	mine := router.Group("/my/contracts")
	{
		mine.GET("", h.listMine)
		mine.GET("/:id", h.getMine)
		mine.GET("/:id/payments", h.minePayments)
		mine.GET("/:id/statement", h.statement)
	}
}

func (h *Handler) create(c *gin.Context) {
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	contract, err := h.service.Create(c.Request.Context(), auth.PrincipalFrom(c), projectID, req)
	if err != nil {
		h.logger.Warn("contract creation refused", zap.Error(err))
		web.Error(c, err)
		return
	}
	web.Created(c, contract)
}

func (h *Handler) list(c *gin.Context) {
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	filter := Filter{
		Status:   ContractStatus(c.Query("status")),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}
	if v := c.Query("buyer_id"); v != "" {
		if buyerID, err := uuid.Parse(v); err == nil {
			filter.BuyerID = buyerID
		}
	}
	items, total, err := h.service.ListByProject(c.Request.Context(), auth.PrincipalFrom(c), projectID, filter)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.Paginated(c, items, total, filter.Page, filter.PageSize)
}

func (h *Handler) get(c *gin.Context) {
	projectID, contractID, ok := pathPair(c)
	if !ok {
		return
	}
	contract, err := h.service.Get(c.Request.Context(), auth.PrincipalFrom(c), projectID, contractID)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, contract)
}

func (h *Handler) update(c *gin.Context) {
	projectID, contractID, ok := pathPair(c)
	if !ok {
		return
	}
	var req UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	contract, err := h.service.Update(c.Request.Context(), auth.PrincipalFrom(c), projectID, contractID, req)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, contract)
}

type contractTransition = func(ctx context.Context, principal *auth.Principal, projectID, contractID uuid.UUID) (*BuyerContract, error)

func (h *Handler) transition(pick func(*Service) contractTransition) gin.HandlerFunc {
	fire := pick(h.service)
	return func(c *gin.Context) {
		projectID, contractID, ok := pathPair(c)
		if !ok {
			return
		}
		contract, err := fire(c.Request.Context(), auth.PrincipalFrom(c), projectID, contractID)
		if err != nil {
			web.Error(c, err)
			return
		}
		web.OK(c, gin.H{"status": contract.Status})
	}
}

func (h *Handler) projectStatement(c *gin.Context) {
	projectID, contractID, ok := pathPair(c)
	if !ok {
		return
	}
	buf, name, err := h.service.ProjectStatement(c.Request.Context(), auth.PrincipalFrom(c), projectID, contractID)
	if err != nil {
		web.Error(c, err)
		return
	}
	servePDF(c, buf.Bytes(), name)
}

func (h *Handler) addPayment(c *gin.Context) {
	projectID, contractID, ok := pathPair(c)
	if !ok {
		return
	}
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.service.AddPayment(c.Request.Context(), auth.PrincipalFrom(c), projectID, contractID, req)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.Created(c, item)
}

func (h *Handler) generateSchedule(c *gin.Context) {
	projectID, contractID, ok := pathPair(c)
	if !ok {
		return
	}
	items, err := h.service.GenerateSchedule(c.Request.Context(), auth.PrincipalFrom(c), projectID, contractID)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.Created(c, items)
}

func (h *Handler) markPaid(c *gin.Context) {
	projectID, contractID, ok := pathPair(c)
	if !ok {
		return
	}
	paymentID, ok := pathUUID(c, "paymentID")
	if !ok {
		return
	}
	var req struct {
		PaymentReference string `json:"payment_reference"`
	}
	// Body is optional for mark_paid.
	_ = c.ShouldBindJSON(&req)
	item, err := h.service.MarkPaymentPaid(c.Request.Context(), auth.PrincipalFrom(c), projectID, contractID, paymentID, req.PaymentReference)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, item)
}

func (h *Handler) waive(c *gin.Context) {
	projectID, contractID, ok := pathPair(c)
	if !ok {
		return
	}
	paymentID, ok := pathUUID(c, "paymentID")
	if !ok {
		return
	}
	item, err := h.service.WaivePayment(c.Request.Context(), auth.PrincipalFrom(c), projectID, contractID, paymentID)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, item)
}

func (h *Handler) removePayment(c *gin.Context) {
	projectID, contractID, ok := pathPair(c)
	if !ok {
		return
	}
	paymentID, ok := pathUUID(c, "paymentID")
	if !ok {
		return
	}
	if err := h.service.RemovePayment(c.Request.Context(), auth.PrincipalFrom(c), projectID, contractID, paymentID); err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, gin.H{"deleted": true})
}

func (h *Handler) listMine(c *gin.Context) {
	filter := Filter{
		Status:   ContractStatus(c.Query("status")),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}
	items, total, err := h.service.ListMine(c.Request.Context(), auth.PrincipalFrom(c), filter)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.Paginated(c, items, total, filter.Page, filter.PageSize)
}

func (h *Handler) getMine(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	contract, err := h.service.GetMine(c.Request.Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, contract)
}

func (h *Handler) minePayments(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	contract, err := h.service.GetMine(c.Request.Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		web.Error(c, err)
		return
	}
	web.OK(c, contract.Payments)
}

func (h *Handler) statement(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	buf, name, err := h.service.Statement(c.Request.Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		web.Error(c, err)
		return
	}
	servePDF(c, buf.Bytes(), name)
}

func servePDF(c *gin.Context, data []byte, name string) {
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		web.Fail(c, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func pathPair(c *gin.Context) (projectID, contractID uuid.UUID, ok bool) {
	projectID, ok = pathUUID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	contractID, ok = pathUUID(c, "contractID")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return projectID, contractID, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
