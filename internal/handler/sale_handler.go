package handler

import (
	"hypermarket-pos/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SaleHandler struct {
	saleRepo repository.SaleRepository
}

func NewSaleHandler(saleRepo repository.SaleRepository) *SaleHandler {
	return &SaleHandler{saleRepo: saleRepo}
}

// GetSales lists sales, optionally scoped to a branch
// GET /api/v1/sales?branch_id=
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	var branchFilter *uuid.UUID
	if branchParam := c.Query("branch_id"); branchParam != "" {
		branchID, err := parseUUID(branchParam)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
		}
		branchFilter = &branchID
	}

	sales, err := h.saleRepo.FindAll(branchFilter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(sales)
}

// GetSale returns one sale with its receipt
// GET /api/v1/sales/:id
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	saleID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	sale, err := h.saleRepo.FindByID(saleID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Sale not found"})
	}
	return c.JSON(sale)
}
