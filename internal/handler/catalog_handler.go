package handler

import (
	"hypermarket-pos/internal/catalog"
	"hypermarket-pos/internal/model"
	"hypermarket-pos/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the cached product/category views the register works
// from, plus category/branch administration.
type CatalogHandler struct {
	cache        *catalog.Cache
	categoryRepo repository.CategoryRepository
	branchRepo   repository.BranchRepository
}

func NewCatalogHandler(cache *catalog.Cache, categoryRepo repository.CategoryRepository, branchRepo repository.BranchRepository) *CatalogHandler {
	return &CatalogHandler{cache: cache, categoryRepo: categoryRepo, branchRepo: branchRepo}
}

// GetProducts returns the catalog snapshot, optionally filtered
// Query params: search, category_id, branch_id
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	filter := catalog.Filter{Search: c.Query("search")}

	if categoryParam := c.Query("category_id"); categoryParam != "" {
		categoryID, err := parseUUID(categoryParam)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid category ID"})
		}
		filter.CategoryID = &categoryID
	}

	if branchParam := c.Query("branch_id"); branchParam != "" {
		branchID, err := parseUUID(branchParam)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
		}
		filter.BranchID = &branchID
	}

	return c.JSON(h.cache.Products(filter))
}

// GetCategories returns all categories from the snapshot
func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	return c.JSON(h.cache.Categories())
}

// CreateCategory adds a new category and refreshes the snapshot
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var category model.Category
	if err := c.BodyParser(&category); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if category.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Name is required"})
	}

	category.CreatedBy = getUserID(c)
	category.UpdatedBy = getUserID(c)

	if err := h.categoryRepo.Create(&category); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.cache.Refresh(); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Category created but catalog refresh failed"})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Category created", "data": category})
}

// GetBranches returns all branches
func (h *CatalogHandler) GetBranches(c *fiber.Ctx) error {
	branches, err := h.branchRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(branches)
}

// CreateBranch adds a new branch
func (h *CatalogHandler) CreateBranch(c *fiber.Ctx) error {
	var branch model.Branch
	if err := c.BodyParser(&branch); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if branch.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Name is required"})
	}

	branch.CreatedBy = getUserID(c)
	branch.UpdatedBy = getUserID(c)

	if err := h.branchRepo.Create(&branch); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Branch created", "data": branch})
}
