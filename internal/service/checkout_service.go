package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"hypermarket-pos/internal/cart"
	"hypermarket-pos/internal/catalog"
	"hypermarket-pos/internal/model"
	"hypermarket-pos/internal/repository"
	"hypermarket-pos/internal/ws"
	"hypermarket-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Checkout session states. The register advances Idle -> SaleOpen ->
// ConfirmPending -> Finalizing, then back to Idle on success or SaleOpen on
// failure. The cart survives every failure so the operator can retry.
type SessionState string

const (
	StateIdle           SessionState = "idle"
	StateSaleOpen       SessionState = "sale_open"
	StateConfirmPending SessionState = "confirm_pending"
	StateFinalizing     SessionState = "finalizing"
)

var (
	ErrCartEmpty        = errors.New("cart is empty")
	ErrProductNotFound  = errors.New("product not found in catalog")
	ErrAwaitingConfirm  = errors.New("sale is awaiting confirmation, cancel it to edit the cart")
	ErrNothingToConfirm = errors.New("no sale is awaiting confirmation")
	ErrFinalizing       = errors.New("checkout is already finalizing")
)

// CompleteSaleRequest carries the customer/delivery/payment selection made in
// the sale review step.
type CompleteSaleRequest struct {
	Customer       string               `json:"customer"`
	DeliveryMethod model.DeliveryMethod `json:"delivery_method" validate:"required,oneof=self_pickup delivery"`
	PaymentMethod  model.PaymentMethod  `json:"payment_method" validate:"required,oneof=cash card credit"`
}

// SessionView is the JSON snapshot of a cashier's checkout session.
type SessionView struct {
	State          SessionState         `json:"state"`
	Lines          []cart.Line          `json:"lines"`
	LineCount      int                  `json:"line_count"`
	Total          decimal.Decimal      `json:"total"`
	Customer       string               `json:"customer,omitempty"`
	DeliveryMethod model.DeliveryMethod `json:"delivery_method"`
	PaymentMethod  model.PaymentMethod  `json:"payment_method"`
}

type CheckoutService interface {
	Session(cashierID string) *SessionView
	AddToCart(cashierID string, productID uuid.UUID) (*SessionView, error)
	Scan(cashierID string, code string) (*SessionView, error)
	UpdateQuantity(cashierID string, productID uuid.UUID, quantity int) (*SessionView, error)
	RemoveFromCart(cashierID string, productID uuid.UUID) (*SessionView, error)
	CompleteSale(cashierID string, req *CompleteSaleRequest) (*SessionView, error)
	ConfirmSale(cashierID, cashierName string, branchID *uuid.UUID, idempotencyKey string) (*model.Receipt, error)
	CancelSale(cashierID string) (*SessionView, error)
	AbandonSale(cashierID string) *SessionView
}

// session is one cashier's in-progress checkout. Exclusively owned by the
// checkout flow; no other screen reads or mutates it.
type session struct {
	mu             sync.Mutex
	state          SessionState
	cart           *cart.Cart
	customer       string
	deliveryMethod model.DeliveryMethod
	paymentMethod  model.PaymentMethod
}

func newSession() *session {
	return &session{
		state:          StateIdle,
		cart:           cart.New(),
		deliveryMethod: model.DeliverySelfPickup,
		paymentMethod:  model.PaymentCash,
	}
}

// resetLocked returns the session to its defaults. Caller holds s.mu.
func (s *session) resetLocked() {
	s.cart.Clear()
	s.customer = ""
	s.deliveryMethod = model.DeliverySelfPickup
	s.paymentMethod = model.PaymentCash
	s.state = StateIdle
}

func (s *session) viewLocked() *SessionView {
	return &SessionView{
		State:          s.state,
		Lines:          s.cart.Lines(),
		LineCount:      s.cart.Len(),
		Total:          s.cart.TotalAmount(),
		Customer:       s.customer,
		DeliveryMethod: s.deliveryMethod,
		PaymentMethod:  s.paymentMethod,
	}
}

type checkoutService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	receiptRepo  repository.ReceiptRepository
	saleRepo     repository.SaleRepository
	movementRepo repository.MovementRepository
	cache        *catalog.Cache
	wsHub        *ws.Hub

	mu       sync.Mutex
	sessions map[string]*session
}

func NewCheckoutService(
	db *gorm.DB,
	pRepo repository.ProductRepository,
	rRepo repository.ReceiptRepository,
	sRepo repository.SaleRepository,
	mRepo repository.MovementRepository,
	cache *catalog.Cache,
	hub *ws.Hub,
) CheckoutService {
	return &checkoutService{
		db:           db,
		productRepo:  pRepo,
		receiptRepo:  rRepo,
		saleRepo:     sRepo,
		movementRepo: mRepo,
		cache:        cache,
		wsHub:        hub,
		sessions:     make(map[string]*session),
	}
}

func (s *checkoutService) session(cashierID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[cashierID]
	if !ok {
		sess = newSession()
		s.sessions[cashierID] = sess
	}
	return sess
}

func (s *checkoutService) Session(cashierID string) *SessionView {
	sess := s.session(cashierID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.viewLocked()
}

// editableLocked guards cart mutations: allowed in Idle (opens the sale) and
// SaleOpen, rejected once a confirmation is pending or finalizing.
func (s *session) editableLocked() error {
	switch s.state {
	case StateConfirmPending:
		return ErrAwaitingConfirm
	case StateFinalizing:
		return ErrFinalizing
	}
	return nil
}

func (s *checkoutService) AddToCart(cashierID string, productID uuid.UUID) (*SessionView, error) {
	product, ok := s.cache.Get(productID)
	if !ok {
		return nil, ErrProductNotFound
	}

	sess := s.session(cashierID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.editableLocked(); err != nil {
		return nil, err
	}
	if err := sess.cart.Add(product); err != nil {
		return nil, err
	}
	sess.state = StateSaleOpen
	return sess.viewLocked(), nil
}

// Scan resolves a scanned code against the catalog and adds the first match
// to the cart.
func (s *checkoutService) Scan(cashierID string, code string) (*SessionView, error) {
	product, err := s.cache.Resolve(code)
	if err != nil {
		return nil, err
	}
	return s.AddToCart(cashierID, product.ID)
}

func (s *checkoutService) UpdateQuantity(cashierID string, productID uuid.UUID, quantity int) (*SessionView, error) {
	sess := s.session(cashierID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.editableLocked(); err != nil {
		return nil, err
	}
	if err := sess.cart.UpdateQuantity(productID, quantity); err != nil {
		return nil, err
	}
	return sess.viewLocked(), nil
}

func (s *checkoutService) RemoveFromCart(cashierID string, productID uuid.UUID) (*SessionView, error) {
	sess := s.session(cashierID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.editableLocked(); err != nil {
		return nil, err
	}
	sess.cart.Remove(productID)
	return sess.viewLocked(), nil
}

// CompleteSale is the guard before the confirmation dialog: the cart must be
// non-empty and every line must still fit the live on-hand quantity (the
// stock may have moved since the line was added). The state machine does not
// advance past this guard on failure, and no network/DB work happens here.
func (s *checkoutService) CompleteSale(cashierID string, req *CompleteSaleRequest) (*SessionView, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	sess := s.session(cashierID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state == StateFinalizing {
		return nil, ErrFinalizing
	}
	if sess.cart.IsEmpty() {
		return nil, ErrCartEmpty
	}

	// Staleness re-check against the catalog snapshot
	for _, line := range sess.cart.Lines() {
		live, ok := s.cache.Get(line.Product.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.Product.Name)
		}
		if !live.Status.Sellable() {
			return nil, fmt.Errorf("'%s': %w", live.Name, cart.ErrNotSellable)
		}
		if line.Quantity > live.Quantity {
			return nil, fmt.Errorf("'%s': %w", live.Name, cart.ErrInsufficientStock)
		}
	}

	sess.customer = req.Customer
	sess.deliveryMethod = req.DeliveryMethod
	sess.paymentMethod = req.PaymentMethod
	sess.state = StateConfirmPending
	return sess.viewLocked(), nil
}

// CancelSale steps back from the confirmation dialog to cart review.
func (s *checkoutService) CancelSale(cashierID string) (*SessionView, error) {
	sess := s.session(cashierID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state != StateConfirmPending {
		return nil, ErrNothingToConfirm
	}
	sess.state = StateSaleOpen
	return sess.viewLocked(), nil
}

// AbandonSale drops the whole session, cart included.
func (s *checkoutService) AbandonSale(cashierID string) *SessionView {
	sess := s.session(cashierID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.resetLocked()
	return sess.viewLocked()
}

// newReturnCode generates the random return code printed on the receipt.
func newReturnCode() string {
	return strings.ToUpper(strings.SplitN(uuid.New().String(), "-", 2)[0])
}

// newReceiptNumber derives the receipt identifier from the current timestamp.
func newReceiptNumber(now time.Time) string {
	return fmt.Sprintf("RCP-%d", now.UnixNano())
}

// ConfirmSale commits the pending sale: all per-line stock decrements, the
// receipt and the sale row run in one DB transaction, so a failing line rolls
// the whole checkout back. The idempotency key makes operator retries safe: a
// key that already produced a receipt returns that receipt instead of
// creating a duplicate.
func (s *checkoutService) ConfirmSale(cashierID, cashierName string, branchID *uuid.UUID, idempotencyKey string) (*model.Receipt, error) {
	sess := s.session(cashierID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	// Replay check first, valid in any state: after a commit whose response
	// was lost the session is already back to Idle, and the retried confirm
	// must still return the committed receipt.
	if idempotencyKey != "" {
		if existing, err := s.receiptRepo.FindByIdempotencyKey(idempotencyKey); err == nil {
			if sess.state == StateConfirmPending {
				// The retry arrived before the session moved on
				sess.resetLocked()
			}
			return existing, nil
		}
	}

	switch sess.state {
	case StateConfirmPending:
		// proceed
	case StateFinalizing:
		return nil, ErrFinalizing
	default:
		return nil, ErrNothingToConfirm
	}

	sess.state = StateFinalizing

	now := time.Now()
	lines := sess.cart.Lines()

	receipt := &model.Receipt{
		Number:         newReceiptNumber(now),
		CashierName:    cashierName,
		CashierID:      &cashierID,
		Customer:       sess.customer,
		BranchID:       branchID,
		DeliveryMethod: sess.deliveryMethod,
		PaymentMethod:  sess.paymentMethod,
		Total:          sess.cart.TotalAmount(),
		ReturnCode:     newReturnCode(),
		IssuedAt:       now,
	}
	receipt.ID = uuid.New()
	receipt.CreatedBy = cashierID
	receipt.UpdatedBy = cashierID
	if idempotencyKey != "" {
		key := idempotencyKey
		receipt.IdempotencyKey = &key
	}
	for i, line := range lines {
		receipt.Items = append(receipt.Items, model.ReceiptItem{
			ReceiptID: receipt.ID,
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Category:  line.Product.CategoryName(),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice(),
			LineTotal: line.Total(),
			Position:  i + 1,
		})
	}

	// Mirror of status after decrement, applied to the cache only on commit
	statusAfter := make(map[uuid.UUID]model.ProductStatus, len(lines))

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Serialized per-line decrement under row locks; any failure rolls
		// back every line
		for _, line := range lines {
			product, err := s.productRepo.LockByID(tx, line.Product.ID)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrProductNotFound, line.Product.Name)
			}
			if !product.Status.Sellable() {
				return fmt.Errorf("'%s': %w", product.Name, cart.ErrNotSellable)
			}
			if product.Quantity < line.Quantity {
				return fmt.Errorf("'%s': %w", product.Name, cart.ErrInsufficientStock)
			}

			newQuantity := product.Quantity - line.Quantity
			status := product.Status
			if newQuantity == 0 {
				status = model.StatusSold
			}
			statusAfter[product.ID] = status

			if err := s.productRepo.UpdateStock(tx, product.ID, newQuantity, status, cashierID); err != nil {
				return err
			}

			movement := &model.StockMovement{
				ProductID:       product.ID,
				Type:            model.MoveOut,
				Quantity:        line.Quantity,
				TotalAmount:     line.Total(),
				ReceiptID:       &receipt.ID,
				Note:            fmt.Sprintf("sold under receipt %s", receipt.Number),
				CreatedByUserID: &cashierID,
			}
			movement.CreatedBy = cashierID
			movement.UpdatedBy = cashierID
			if err := s.movementRepo.CreateTx(tx, movement); err != nil {
				return err
			}
		}

		if err := s.receiptRepo.CreateTx(tx, receipt); err != nil {
			return err
		}

		sale := &model.Sale{
			ReceiptID:       receipt.ID,
			ReceiptNumber:   receipt.Number,
			Customer:        receipt.Customer,
			Total:           receipt.Total,
			Date:            now,
			BranchID:        branchID,
			DeliveryMethod:  receipt.DeliveryMethod,
			PaymentMethod:   receipt.PaymentMethod,
			CreatedByUserID: &cashierID,
		}
		sale.CreatedBy = cashierID
		sale.UpdatedBy = cashierID
		return s.saleRepo.CreateTx(tx, sale)
	})

	if err != nil {
		// Back to the confirmation dialog's parent; cart deliberately kept
		// so the operator can retry
		sess.state = StateSaleOpen
		return nil, err
	}

	// Mirror the committed decrements into the catalog snapshot
	for _, line := range lines {
		s.cache.ApplyDecrement(line.Product.ID, line.Quantity, statusAfter[line.Product.ID])
	}

	sess.resetLocked()

	go func() {
		s.wsHub.BroadcastJSON(map[string]interface{}{
			"type":   "sale_completed",
			"action": "receipt_created",
			"receipt": map[string]interface{}{
				"id":     receipt.ID,
				"number": receipt.Number,
				"total":  receipt.Total,
				"items":  len(receipt.Items),
			},
			"cashier": map[string]interface{}{
				"id":   cashierID,
				"name": cashierName,
			},
			"message": fmt.Sprintf("%s completed sale %s", cashierName, receipt.Number),
		})
	}()

	return receipt, nil
}
