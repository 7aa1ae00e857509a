package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/models"
	"github.com/fundlane/fundlane/services/invest-api/internal/services"
	"github.com/fundlane/fundlane/services/invest-api/internal/views"
)

type FundHandler struct {
	logger  *zap.Logger
	service services.FundService
}

func NewFundHandler(logger *zap.Logger, svc services.FundService) *FundHandler {
	return &FundHandler{logger: logger, service: svc}
}

func (h *FundHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/funds", h.ListSchemes)
	r.GET("/funds/:code", h.GetScheme)
	r.GET("/funds/:code/nav", h.NavHistory)
}

// RegisterInternalRoutes mounts the operational refresh endpoint; the caller
// is expected to guard the group with the internal token middleware.
func (h *FundHandler) RegisterInternalRoutes(r *gin.RouterGroup) {
	r.POST("/funds/refresh", h.Refresh)
}

func (h *FundHandler) ListSchemes(c *gin.Context) {
	filter := models.SchemeFilter{
		FundHouse: c.Query("fundHouse"),
		Search:    c.Query("search"),
	}
	schemes, err := h.service.ListSchemes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if schemes == nil {
		schemes = []views.SchemeResponse{}
	}
	c.JSON(http.StatusOK, schemes)
}

func (h *FundHandler) GetScheme(c *gin.Context) {
	code, err := schemeCode(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	scheme, err := h.service.GetScheme(c.Request.Context(), code)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, scheme)
}

func (h *FundHandler) NavHistory(c *gin.Context) {
	code, err := schemeCode(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	history, err := h.service.NavHistory(c.Request.Context(), code)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *FundHandler) Refresh(c *gin.Context) {
	var req views.RefreshRequest
	// Empty body means refresh everything.
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		badRequest(c, err)
		return
	}
	resp, err := h.service.Refresh(c.Request.Context(), req.SchemeCodes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func schemeCode(c *gin.Context) (int, error) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil || code <= 0 {
		return 0, pkg.NewAppError(pkg.ErrInvalidInputCode, "scheme code must be a positive integer", err)
	}
	return code, nil
}
