package server

import (
	"planora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAdminStats handles GET /api/admin/stats
// @Summary Admin dashboard statistics
// @Description Aggregate counters for the admin dashboard
// @Tags admin
// @Produce json
// @Success 200 {object} service.AdminStats
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/stats [get]
func (s *Server) GetAdminStats(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	stats, err := s.statsService.GetAdminStats(c.Context(), principal)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stats)
}
