package handler

import (
	"errors"

	"hypermarket-pos/internal/catalog"
	"hypermarket-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CheckoutHandler struct {
	service service.CheckoutService
}

func NewCheckoutHandler(s service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: s}
}

// checkoutStatus maps checkout errors to HTTP statuses. Validation and stock
// guards are 400; state conflicts are 409.
func checkoutStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrProductNotFound), errors.Is(err, catalog.ErrCodeNotFound):
		return 404
	case errors.Is(err, service.ErrAwaitingConfirm),
		errors.Is(err, service.ErrNothingToConfirm),
		errors.Is(err, service.ErrFinalizing):
		return 409
	default:
		return 400
	}
}

// GetSession returns the cashier's current checkout session
// GET /api/v1/checkout/session
func (h *CheckoutHandler) GetSession(c *fiber.Ctx) error {
	return c.JSON(h.service.Session(getUserID(c)))
}

// AddToCartRequest carries the product to add
type AddToCartRequest struct {
	ProductID string `json:"product_id"`
}

// AddToCart adds one unit of a product to the cart
// POST /api/v1/checkout/cart
func (h *CheckoutHandler) AddToCart(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	productID, err := parseUUID(req.ProductID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	view, err := h.service.AddToCart(getUserID(c), productID)
	if err != nil {
		return c.Status(checkoutStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(view)
}

// ScanRequest carries one scanned barcode/id/name fragment
type ScanRequest struct {
	Code string `json:"code"`
}

// Scan resolves a scanned code and adds the first match to the cart
// POST /api/v1/checkout/scan
func (h *CheckoutHandler) Scan(c *fiber.Ctx) error {
	var req ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Code is required"})
	}

	view, err := h.service.Scan(getUserID(c), req.Code)
	if err != nil {
		return c.Status(checkoutStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(view)
}

// UpdateQuantityRequest carries the new line quantity
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity sets a cart line's quantity (0 removes the line)
// PUT /api/v1/checkout/cart/:productId
func (h *CheckoutHandler) UpdateQuantity(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("productId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	view, err := h.service.UpdateQuantity(getUserID(c), productID, req.Quantity)
	if err != nil {
		return c.Status(checkoutStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(view)
}

// RemoveFromCart deletes a cart line unconditionally
// DELETE /api/v1/checkout/cart/:productId
func (h *CheckoutHandler) RemoveFromCart(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("productId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	view, err := h.service.RemoveFromCart(getUserID(c), productID)
	if err != nil {
		return c.Status(checkoutStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(view)
}

// CompleteSale runs the pre-confirmation guard and opens the confirmation step
// POST /api/v1/checkout/complete
func (h *CheckoutHandler) CompleteSale(c *fiber.Ctx) error {
	var req service.CompleteSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	view, err := h.service.CompleteSale(getUserID(c), &req)
	if err != nil {
		return c.Status(checkoutStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(view)
}

// ConfirmSale commits the pending sale and returns the receipt
// POST /api/v1/checkout/confirm  (Idempotency-Key header recommended)
func (h *CheckoutHandler) ConfirmSale(c *fiber.Ctx) error {
	receipt, err := h.service.ConfirmSale(
		getUserID(c),
		getUserName(c),
		getUserBranchID(c),
		c.Get("Idempotency-Key"),
	)
	if err != nil {
		return c.Status(checkoutStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Sale completed", "data": receipt})
}

// CancelSale steps back from the confirmation dialog
// POST /api/v1/checkout/cancel
func (h *CheckoutHandler) CancelSale(c *fiber.Ctx) error {
	view, err := h.service.CancelSale(getUserID(c))
	if err != nil {
		return c.Status(checkoutStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(view)
}

// AbandonSale drops the whole session, cart included
// DELETE /api/v1/checkout/session
func (h *CheckoutHandler) AbandonSale(c *fiber.Ctx) error {
	return c.JSON(h.service.AbandonSale(getUserID(c)))
}
