package catalog

import (
	"errors"
	"strings"
	"sync"

	"hypermarket-pos/internal/model"
	"hypermarket-pos/internal/repository"

	"github.com/google/uuid"
)

var ErrCodeNotFound = errors.New("no product matches the scanned code")

// Filter narrows the cached product view. Zero value matches everything.
type Filter struct {
	Search     string
	CategoryID *uuid.UUID
	BranchID   *uuid.UUID
}

// Cache is the in-memory catalog snapshot for one branch scope. It is shared
// read-only by the register views; only checkout mirrors quantity decrements
// back after server-side confirmation.
type Cache struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository

	mu         sync.RWMutex
	branchID   *uuid.UUID
	products   []model.Product
	categories []model.Category
	byID       map[uuid.UUID]int
}

func NewCache(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository, branchID *uuid.UUID) *Cache {
	return &Cache{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		branchID:     branchID,
		byID:         make(map[uuid.UUID]int),
	}
}

// Refresh reloads the snapshot from the repositories.
func (c *Cache) Refresh() error {
	products, err := c.productRepo.FindAll(c.branchID)
	if err != nil {
		return err
	}
	categories, err := c.categoryRepo.FindAll()
	if err != nil {
		return err
	}

	byID := make(map[uuid.UUID]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}

	c.mu.Lock()
	c.products = products
	c.categories = categories
	c.byID = byID
	c.mu.Unlock()
	return nil
}

// Products returns a filtered copy of the cached product list.
func (c *Cache) Products(f Filter) []model.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Product, 0, len(c.products))
	for _, p := range c.products {
		if f.CategoryID != nil {
			if p.CategoryID == nil || *p.CategoryID != *f.CategoryID {
				continue
			}
		}
		if f.BranchID != nil {
			if p.BranchID == nil || *p.BranchID != *f.BranchID {
				continue
			}
		}
		if !p.MatchesSearch(f.Search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories returns a copy of the cached category list.
func (c *Cache) Categories() []model.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Get returns a copy of the cached product, or false when absent.
func (c *Cache) Get(id uuid.UUID) (model.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return c.products[i], true
}

// Resolve maps a scanned code to a product. Precedence: exact barcode match,
// exact id match, then case-insensitive substring of the name (first match in
// catalog order).
func (c *Cache) Resolve(code string) (*model.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCodeNotFound
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.products {
		p := &c.products[i]
		if p.Barcode != nil && *p.Barcode == code {
			match := *p
			return &match, nil
		}
	}
	if id, err := uuid.Parse(code); err == nil {
		if i, ok := c.byID[id]; ok {
			match := c.products[i]
			return &match, nil
		}
	}
	needle := strings.ToLower(code)
	for i := range c.products {
		if strings.Contains(strings.ToLower(c.products[i].Name), needle) {
			match := c.products[i]
			return &match, nil
		}
	}
	return nil, ErrCodeNotFound
}

// ApplyDecrement mirrors a confirmed stock decrement into the snapshot.
// Status comes from the server-side transaction; it is never derived here.
func (c *Cache) ApplyDecrement(id uuid.UUID, qty int, status model.ProductStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.byID[id]
	if !ok {
		return
	}
	c.products[i].Quantity -= qty
	if c.products[i].Quantity < 0 {
		c.products[i].Quantity = 0
	}
	c.products[i].Status = status
}

// Upsert replaces or appends one product in the snapshot after a create or
// update committed.
func (c *Cache) Upsert(p model.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.byID[p.ID]; ok {
		c.products[i] = p
		return
	}
	c.byID[p.ID] = len(c.products)
	c.products = append(c.products, p)
}
