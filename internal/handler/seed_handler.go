package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/OsasDev/qirllo-api/internal/service"
	"github.com/OsasDev/qirllo-api/pkg/response"
)

// SeedHandler exposes the demo-data bootstrap. It is only mounted when
// seeding is enabled in configuration.
type SeedHandler struct {
	seeder *service.SeedService
}

// NewSeedHandler constructs SeedHandler.
func NewSeedHandler(seeder *service.SeedService) *SeedHandler {
	return &SeedHandler{seeder: seeder}
}

// Seed creates the demo dataset. Running it again is a no-op.
func (h *SeedHandler) Seed(c *gin.Context) {
	created, err := h.seeder.Seed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"created": created})
}
