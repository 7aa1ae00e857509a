package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/services/invest-api/internal/services"
	"github.com/fundlane/fundlane/services/invest-api/internal/views"
)

type CalculatorHandler struct {
	logger  *zap.Logger
	service services.CalculatorService
}

func NewCalculatorHandler(logger *zap.Logger, svc services.CalculatorService) *CalculatorHandler {
	return &CalculatorHandler{logger: logger, service: svc}
}

func (h *CalculatorHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/calculators/sip", h.SIP)
	r.POST("/calculators/lumpsum", h.Lumpsum)
}

func (h *CalculatorHandler) SIP(c *gin.Context) {
	var req views.SIPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.service.SIPFutureValue(req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CalculatorHandler) Lumpsum(c *gin.Context) {
	var req views.LumpsumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.service.LumpsumFutureValue(req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
