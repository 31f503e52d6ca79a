package handler

import (
	"perfume-pos/internal/model"
	"perfume-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleHandler struct {
	sales  service.SaleService
	credit service.CreditLedger
	orders service.OrderFlow
}

func NewSaleHandler(sales service.SaleService, credit service.CreditLedger, orders service.OrderFlow) *SaleHandler {
	return &SaleHandler{sales: sales, credit: credit, orders: orders}
}

type CreditPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type EcommerceStatusRequest struct {
	Status model.EcommerceStatus `json:"status"`
}

func toResponses(sales []model.Sale) []model.SaleResponse {
	out := make([]model.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, sales[i].ToResponse())
	}
	return out
}

// CreateSale records a sale and consumes its stock.
// POST /api/v1/sales
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.sales.CreateSale(c.UserContext(), req, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Sale recorded", "data": sale.ToResponse()})
}

// GetSales lists sales of one day or one month, newest first.
// Query params: date (YYYY-MM-DD) or month (YYYY-MM)
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	sales, err := h.sales.ListSales(c.UserContext(), c.Query("date"), c.Query("month"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toResponses(sales))
}

// GetEcommerceSales lists e-commerce orders.
// Query params: status (pending|delivered|returned), date
func (h *SaleHandler) GetEcommerceSales(c *fiber.Ctx) error {
	status := model.EcommerceStatus(c.Query("status"))
	sales, err := h.sales.ListEcommerce(c.UserContext(), status, c.Query("date"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toResponses(sales))
}

func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	sale, err := h.sales.GetSale(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale.ToResponse())
}

// ApplyCreditPayment records an instalment on a credit sale.
// PATCH /api/v1/sales/:id/credit
func (h *SaleHandler) ApplyCreditPayment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	var req CreditPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.credit.ApplyPayment(c.UserContext(), id, req.Amount, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Payment applied", "data": sale.ToResponse()})
}

// UpdateEcommerceStatus marks a pending order delivered or returned.
// PATCH /api/v1/sales/:id/ecommerce-status
func (h *SaleHandler) UpdateEcommerceStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	var req EcommerceStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.orders.UpdateStatus(c.UserContext(), id, req.Status, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Status updated", "data": sale.ToResponse()})
}
