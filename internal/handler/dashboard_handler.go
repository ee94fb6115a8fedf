package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/OsasDev/qirllo-api/internal/service"
	"github.com/OsasDev/qirllo-api/pkg/response"
)

// DashboardHandler exposes the role-specific dashboard.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats godoc
// @Summary Aggregate counts for the caller's role
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	stats, err := h.dashboard.Stats(c.Request.Context(), auth)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}
