package handler

import (
	"hypermarket-pos/internal/model"
	"hypermarket-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	userID := getUserID(c)
	userName := getUserName(c)

	if err := h.service.CreateProduct(&product, userID, userName); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	userID := getUserID(c)
	userName := getUserName(c)

	productID, err := parseUUID(id)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	updated, err := h.service.UpdateProduct(productID, &product, userID, userName)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *InventoryHandler) CreateMovement(c *fiber.Ctx) error {
	var movement model.StockMovement
	if err := c.BodyParser(&movement); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	userID := getUserID(c)
	userName := getUserName(c)

	if err := h.service.RecordMovement(&movement, userID, userName); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Movement recorded"})
}

func (h *InventoryHandler) GetMovements(c *fiber.Ctx) error {
	movements, err := h.service.GetAllMovements()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(movements)
}

func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	id := c.Params("id")
	movementID, err := parseUUID(id)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid movement ID"})
	}

	movement, err := h.service.GetMovementByID(movementID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Movement not found"})
	}
	return c.JSON(movement)
}
