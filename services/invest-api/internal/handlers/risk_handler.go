package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/services/invest-api/internal/services"
	"github.com/fundlane/fundlane/services/invest-api/internal/views"
)

type RiskHandler struct {
	logger  *zap.Logger
	service services.RiskService
}

func NewRiskHandler(logger *zap.Logger, svc services.RiskService) *RiskHandler {
	return &RiskHandler{logger: logger, service: svc}
}

func (h *RiskHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/risk/questions", h.GetQuestions)
	r.POST("/risk/profile", h.ScoreProfile)
}

func (h *RiskHandler) GetQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Questions())
}

func (h *RiskHandler) ScoreProfile(c *gin.Context) {
	var req views.RiskProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	profile, err := h.service.ScoreProfile(req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
