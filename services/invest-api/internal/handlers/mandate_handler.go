package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
	middleware "github.com/fundlane/fundlane/pkg/middlewares"
	"github.com/fundlane/fundlane/services/invest-api/internal/services"
	"github.com/fundlane/fundlane/services/invest-api/internal/views"
)

type MandateHandler struct {
	logger  *zap.Logger
	service services.MandateService
}

func NewMandateHandler(logger *zap.Logger, svc services.MandateService) *MandateHandler {
	return &MandateHandler{logger: logger, service: svc}
}

// RegisterRoutes mounts mandates under the orders prefix.
func (h *MandateHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/orders/mandates", h.ListMandates)
	r.PUT("/orders/mandates", h.ToggleMandate)
	r.POST("/orders/mandates", h.CreateMandate)
}

func (h *MandateHandler) ListMandates(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		respondError(c, h.logger, pkg.NewAppError(pkg.ErrUnauthorizedCode, "missing identity", nil))
		return
	}

	mandates, err := h.service.ListMandates(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	// Empty list, not null, when the user has no mandates.
	if mandates == nil {
		mandates = []views.MandateResponse{}
	}
	c.JSON(http.StatusOK, mandates)
}

func (h *MandateHandler) ToggleMandate(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		respondError(c, h.logger, pkg.NewAppError(pkg.ErrUnauthorizedCode, "missing identity", nil))
		return
	}

	var req views.MandateToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		respondError(c, h.logger, pkg.NewAppError(pkg.ErrInvalidInputCode, "mandate id must be a uuid", err))
		return
	}

	mandate, err := h.service.ToggleMandate(c.Request.Context(), identity.UserID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, mandate)
}

func (h *MandateHandler) CreateMandate(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		respondError(c, h.logger, pkg.NewAppError(pkg.ErrUnauthorizedCode, "missing identity", nil))
		return
	}

	var req views.MandateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	mandate, err := h.service.CreateMandate(c.Request.Context(), identity.UserID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, mandate)
}
