package service

import (
	"errors"
	"fmt"

	"hypermarket-pos/internal/catalog"
	"hypermarket-pos/internal/model"
	"hypermarket-pos/internal/repository"
	"hypermarket-pos/internal/ws"
	"hypermarket-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrBarcodeExists     = errors.New("barcode already exists")
	ErrInsufficientStock = errors.New("insufficient stock remaining")
)

type InventoryService interface {
	CreateProduct(req *model.Product, userID, userName string) error
	UpdateProduct(id uuid.UUID, req *model.Product, userID, userName string) (*model.Product, error)
	RecordMovement(req *model.StockMovement, userID, userName string) error
	GetAllMovements() ([]model.StockMovement, error)
	GetMovementByID(id uuid.UUID) (*model.StockMovement, error)
}

type inventoryService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	db           *gorm.DB
	cache        *catalog.Cache
	wsHub        *ws.Hub
}

func NewInventoryService(pRepo repository.ProductRepository, mRepo repository.MovementRepository, db *gorm.DB, cache *catalog.Cache, hub *ws.Hub) InventoryService {
	return &inventoryService{
		productRepo:  pRepo,
		movementRepo: mRepo,
		db:           db,
		cache:        cache,
		wsHub:        hub,
	}
}

func (s *inventoryService) CreateProduct(req *model.Product, userID, userName string) error {
	// 1. Basic struct validation
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	// 2. Barcode uniqueness (business logic validation)
	if req.Barcode != nil && *req.Barcode != "" {
		existing, _ := s.productRepo.FindByBarcode(*req.Barcode)
		if existing != nil && existing.ID != uuid.Nil {
			return ErrBarcodeExists
		}
	}

	// 3. Set audit fields
	req.CreatedBy = userID
	req.UpdatedBy = userID
	req.CreatedByUserID = &userID
	req.UpdatedByUserID = &userID

	// 4. Save to database
	if err := s.productRepo.Create(req); err != nil {
		return err
	}

	// 5. Mirror into the catalog snapshot and broadcast
	if created, err := s.productRepo.FindByID(req.ID); err == nil {
		s.cache.Upsert(*created)
	}

	go func() {
		s.wsHub.BroadcastJSON(map[string]interface{}{
			"type":   "stock_update",
			"action": "product_created",
			"product": map[string]interface{}{
				"id":       req.ID,
				"name":     req.Name,
				"barcode":  req.Barcode,
				"quantity": req.Quantity,
				"status":   req.Status,
				"price":    req.Price,
			},
			"user": map[string]interface{}{
				"id":   userID,
				"name": userName,
			},
			"message": fmt.Sprintf("%s created product '%s'", userName, req.Name),
		})
	}()

	return nil
}

func (s *inventoryService) UpdateProduct(id uuid.UUID, req *model.Product, userID, userName string) (*model.Product, error) {
	var updatedProduct *model.Product

	// Transaction block with row locking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.LockByID(tx, id)
		if err != nil {
			return errors.New("product not found")
		}

		oldQuantity := existing.Quantity

		existing.Name = req.Name
		existing.Barcode = req.Barcode
		existing.CategoryID = req.CategoryID
		existing.BranchID = req.BranchID
		existing.Price = req.Price
		existing.MarketPrice = req.MarketPrice
		existing.Quantity = req.Quantity
		existing.Status = req.Status
		existing.UpdatedBy = userID
		existing.UpdatedByUserID = &userID

		if err := tx.Save(existing).Error; err != nil {
			return err
		}

		updatedProduct = existing

		go func() {
			s.wsHub.BroadcastJSON(map[string]interface{}{
				"type":   "stock_update",
				"action": "product_updated",
				"product": map[string]interface{}{
					"id":           existing.ID,
					"name":         existing.Name,
					"old_quantity": oldQuantity,
					"new_quantity": existing.Quantity,
					"status":       existing.Status,
					"price":        existing.Price,
				},
				"user": map[string]interface{}{
					"id":   userID,
					"name": userName,
				},
				"message": fmt.Sprintf("%s updated product '%s'", userName, existing.Name),
			})
		}()

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.cache.Upsert(*updatedProduct)
	return updatedProduct, nil
}

// RecordMovement books a warehouse inflow (IN) or outflow (OUT) and adjusts
// the product quantity atomically.
func (s *inventoryService) RecordMovement(req *model.StockMovement, userID, userName string) error {
	// 1. Validate input
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	var mirror model.Product

	// Transaction block (atomic operation)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.LockByID(tx, req.ProductID)
		if err != nil {
			return errors.New("product not found")
		}

		// Stock math
		newQuantity := product.Quantity
		if req.Type == model.MoveIn {
			newQuantity += req.Quantity
		} else if req.Type == model.MoveOut {
			if product.Quantity < req.Quantity {
				return ErrInsufficientStock
			}
			newQuantity -= req.Quantity
		}

		status := product.Status
		if newQuantity == 0 {
			status = model.StatusSold
		} else if product.Status == model.StatusSold && newQuantity > 0 {
			// Restocking a sold-out product puts it back on the floor
			status = model.StatusInStore
		}

		if err := s.productRepo.UpdateStock(tx, product.ID, newQuantity, status, userID); err != nil {
			return err
		}

		// Snapshot the movement value at current unit price
		req.TotalAmount = product.UnitPrice().Mul(decimal.NewFromInt(int64(req.Quantity)))
		req.CreatedBy = userID
		req.UpdatedBy = userID
		req.CreatedByUserID = &userID
		if err := s.movementRepo.CreateTx(tx, req); err != nil {
			return err
		}

		mirror = *product
		mirror.Quantity = newQuantity
		mirror.Status = status

		go func(p model.Product, newQty int) {
			actionVerb := "added"
			if req.Type == model.MoveOut {
				actionVerb = "removed"
			}
			s.wsHub.BroadcastJSON(map[string]interface{}{
				"type":   "stock_update",
				"action": "movement_recorded",
				"movement": map[string]interface{}{
					"id":           req.ID,
					"type":         req.Type,
					"quantity":     req.Quantity,
					"product_id":   p.ID,
					"product":      map[string]interface{}{"name": p.Name},
					"new_quantity": newQty,
				},
				"user": map[string]interface{}{
					"id":   userID,
					"name": userName,
				},
				"message": fmt.Sprintf("%s %s %d units of '%s' (%s)", userName, actionVerb, req.Quantity, p.Name, req.Type),
			})
		}(*product, newQuantity)

		return nil
	})

	if err != nil {
		return err
	}

	s.cache.Upsert(mirror)
	return nil
}

func (s *inventoryService) GetAllMovements() ([]model.StockMovement, error) {
	return s.movementRepo.FindAll()
}

func (s *inventoryService) GetMovementByID(id uuid.UUID) (*model.StockMovement, error) {
	return s.movementRepo.FindByID(id)
}
