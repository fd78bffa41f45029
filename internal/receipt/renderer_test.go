package receipt

import (
	"testing"
	"time"

	"hypermarket-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReceipt() *model.Receipt {
	r := &model.Receipt{
		Number:         "RCP-1700000000000000000",
		CashierName:    "Jane Cashier",
		Customer:       "Walk-in",
		DeliveryMethod: model.DeliverySelfPickup,
		PaymentMethod:  model.PaymentCash,
		Total:          decimal.NewFromInt(250),
		ReturnCode:     "A1B2C3D4",
		IssuedAt:       time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC),
		Items: []model.ReceiptItem{
			{
				ProductID: uuid.New(),
				Name:      "Item A",
				Category:  "Grocery",
				Quantity:  2,
				UnitPrice: decimal.NewFromInt(100),
				LineTotal: decimal.NewFromInt(200),
				Position:  1,
			},
			{
				ProductID: uuid.New(),
				Name:      "Item B",
				Quantity:  1,
				UnitPrice: decimal.NewFromInt(50),
				LineTotal: decimal.NewFromInt(50),
				Position:  2,
			},
		},
	}
	r.ID = uuid.New()
	return r
}

func TestRenderHTML(t *testing.T) {
	r := sampleReceipt()

	html, err := RenderHTML(r)
	require.NoError(t, err)

	assert.Contains(t, html, r.Number)
	assert.Contains(t, html, "Jane Cashier")
	assert.Contains(t, html, "Walk-in")
	assert.Contains(t, html, "Item A")
	assert.Contains(t, html, "Item B")
	assert.Contains(t, html, "100.00")
	assert.Contains(t, html, "250.00")
	assert.Contains(t, html, "A1B2C3D4")
	assert.Contains(t, html, "2025-03-14 15:09:26")
	// The print view triggers the browser's print dialog on load
	assert.Contains(t, html, "window.print()")
}

func TestRenderHTMLOmitsEmptyCustomer(t *testing.T) {
	r := sampleReceipt()
	r.Customer = ""

	html, err := RenderHTML(r)
	require.NoError(t, err)

	assert.NotContains(t, html, "Customer:")
}

func TestRenderPDF(t *testing.T) {
	r := sampleReceipt()

	pdf, err := RenderPDF(r)
	require.NoError(t, err)

	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestPDFFileName(t *testing.T) {
	r := sampleReceipt()
	assert.Equal(t, "receipt_RCP-1700000000000000000.pdf", PDFFileName(r))
}
