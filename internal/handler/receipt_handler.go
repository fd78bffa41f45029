package handler

import (
	"fmt"

	"hypermarket-pos/internal/receipt"
	"hypermarket-pos/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReceiptHandler struct {
	receiptRepo repository.ReceiptRepository
}

func NewReceiptHandler(receiptRepo repository.ReceiptRepository) *ReceiptHandler {
	return &ReceiptHandler{receiptRepo: receiptRepo}
}

// GetReceipts lists receipts, optionally scoped to a branch
// GET /api/v1/receipts?branch_id=
func (h *ReceiptHandler) GetReceipts(c *fiber.Ctx) error {
	var branchFilter *uuid.UUID
	if branchParam := c.Query("branch_id"); branchParam != "" {
		branchID, err := parseUUID(branchParam)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
		}
		branchFilter = &branchID
	}

	receipts, err := h.receiptRepo.FindAll(branchFilter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(receipts)
}

// GetReceipt returns one receipt as JSON
// GET /api/v1/receipts/:id
func (h *ReceiptHandler) GetReceipt(c *fiber.Ctx) error {
	receiptID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid receipt ID"})
	}

	r, err := h.receiptRepo.FindByID(receiptID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Receipt not found"})
	}
	return c.JSON(r)
}

// PrintReceipt returns the printable HTML document
// GET /api/v1/receipts/:id/print
func (h *ReceiptHandler) PrintReceipt(c *fiber.Ctx) error {
	receiptID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid receipt ID"})
	}

	r, err := h.receiptRepo.FindByID(receiptID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Receipt not found"})
	}

	html, err := receipt.RenderHTML(r)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to render receipt"})
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(html)
}

// DownloadReceiptPDF returns the PDF representation as a download
// GET /api/v1/receipts/:id/pdf
func (h *ReceiptHandler) DownloadReceiptPDF(c *fiber.Ctx) error {
	receiptID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid receipt ID"})
	}

	r, err := h.receiptRepo.FindByID(receiptID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Receipt not found"})
	}

	pdf, err := receipt.RenderPDF(r)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to render PDF"})
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, receipt.PDFFileName(r)))
	return c.Send(pdf)
}
