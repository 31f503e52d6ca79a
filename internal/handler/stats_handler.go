package handler

import (
	"perfume-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StatsHandler struct {
	service service.StatsService
}

func NewStatsHandler(s service.StatsService) *StatsHandler {
	return &StatsHandler{service: s}
}

// GetDaily returns the summary of one day (default today)
// Query params: date
func (h *StatsHandler) GetDaily(c *fiber.Ctx) error {
	report, err := h.service.Daily(c.UserContext(), c.Query("date"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// GetMonthly returns the summary of one month (default this month)
// Query params: month (YYYY-MM)
func (h *StatsHandler) GetMonthly(c *fiber.Ctx) error {
	report, err := h.service.Monthly(c.UserContext(), c.Query("month"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// GetRange returns the summary between two days (default last 7 days)
// Query params: from, to
func (h *StatsHandler) GetRange(c *fiber.Ctx) error {
	report, err := h.service.Range(c.UserContext(), c.Query("from"), c.Query("to"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

func (h *StatsHandler) GetInventory(c *fiber.Ctx) error {
	summary, err := h.service.Inventory(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch inventory summary"})
	}
	return c.JSON(summary)
}
