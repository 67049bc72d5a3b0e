package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/service"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := c.QueryInt("days", service.DefaultMovementDays)
	if days <= 0 {
		days = service.DefaultMovementDays
	}

	data, err := h.service.GetStockMovement(c.UserContext(), actor(c), days)
	if err != nil {
		return err
	}

	return ok(c, fiber.Map{
		"period": days,
		"items":  data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return ok(c, stats)
}
