package handler

import (
	"errors"

	"perfume-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// getUserID returns the caller set by middleware.RequireAuth.
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return "system"
	}
	return userID
}

// statusFor maps a service error category to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidDecantRequest),
		errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrInsufficientStock):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrStateConflict):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserInactive):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Internal errors are not echoed
// back; a failing sale line adds the item it stopped at.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		return c.Status(status).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	body := fiber.Map{"error": err.Error()}
	var lineErr *service.LineError
	if errors.As(err, &lineErr) {
		body["item_index"] = lineErr.Index
		body["product_id"] = lineErr.ProductID
		if lineErr.ProductName != "" {
			body["product_name"] = lineErr.ProductName
		}
	}
	return c.Status(status).JSON(body)
}
