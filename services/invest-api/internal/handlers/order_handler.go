package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
	middleware "github.com/fundlane/fundlane/pkg/middlewares"
	"github.com/fundlane/fundlane/pkg/models"
	"github.com/fundlane/fundlane/pkg/utils"
	"github.com/fundlane/fundlane/services/invest-api/internal/services"
	"github.com/fundlane/fundlane/services/invest-api/internal/views"
)

type OrderHandler struct {
	logger  *zap.Logger
	service services.OrderService
}

func NewOrderHandler(logger *zap.Logger, svc services.OrderService) *OrderHandler {
	return &OrderHandler{logger: logger, service: svc}
}

// RegisterRoutes registers customer order routes on the provided group.
func (h *OrderHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/orders", h.PlaceOrder)
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.PUT("/orders/:id/status", h.UpdateStatus)
}

// RegisterSellerRoutes exposes the cross-customer order book.
func (h *OrderHandler) RegisterSellerRoutes(r *gin.RouterGroup) {
	r.GET("/orders", h.ListAllOrders)
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		respondError(c, h.logger, pkg.NewAppError(pkg.ErrUnauthorizedCode, "missing identity", nil))
		return
	}

	var req views.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.service.PlaceOrder(c.Request.Context(), traceID, identity.UserID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		respondError(c, h.logger, pkg.NewAppError(pkg.ErrUnauthorizedCode, "missing identity", nil))
		return
	}

	filter := models.OrderFilter{UserID: identity.UserID}
	if status := c.Query("status"); status != "" {
		filter.Status = pkg.OrderStatus(status)
	}
	orders, err := h.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListAllOrders serves the seller order book across customers.
func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	filter := models.OrderFilter{}
	if status := c.Query("status"); status != "" {
		filter.Status = pkg.OrderStatus(status)
	}
	orders, err := h.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		respondError(c, h.logger, pkg.NewAppError(pkg.ErrUnauthorizedCode, "missing identity", nil))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, pkg.NewAppError(pkg.ErrInvalidInputCode, "order id must be a uuid", err))
		return
	}

	// Sellers see any order; customers only their own.
	userID := identity.UserID
	if identity.Role == pkg.RoleSeller {
		userID = uuid.Nil
	}
	order, err := h.service.GetOrder(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		respondError(c, h.logger, pkg.NewAppError(pkg.ErrUnauthorizedCode, "missing identity", nil))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, pkg.NewAppError(pkg.ErrInvalidInputCode, "order id must be a uuid", err))
		return
	}

	var req views.OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	// Sellers may settle any order; customers only their own.
	userID := identity.UserID
	if identity.Role == pkg.RoleSeller {
		userID = uuid.Nil
	}
	order, err := h.service.UpdateStatus(c.Request.Context(), traceID, userID, id, views.ParseOrderStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
