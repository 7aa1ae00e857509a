package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/utils"
)

type BaseHandler struct {
	logger *zap.Logger
}

func NewBaseHandler(logger *zap.Logger) *BaseHandler {
	return &BaseHandler{logger: logger}
}

func (b *BaseHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", b.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (b *BaseHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// respondError renders any service error through the shared mapping.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	traceID, _ := utils.GetTraceID(c)
	resp := pkg.ToErrorResponse(logger, traceID, err)
	c.JSON(resp.Status, resp)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
		Status:  http.StatusBadRequest,
		Code:    pkg.ErrInvalidInputCode.Code,
		Message: "invalid request body",
		Details: err.Error(),
	})
}
