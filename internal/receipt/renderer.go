package receipt

import (
	"bytes"
	"fmt"
	"html/template"

	"hypermarket-pos/internal/model"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Renderer produces print/PDF representations of a finalized receipt.
// All methods are pure formatting; they never mutate cart or catalog state.

const printTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Receipt {{.Number}}</title>
<style>
body { font-family: monospace; width: 320px; margin: 0 auto; }
h1 { font-size: 16px; text-align: center; }
table { width: 100%; border-collapse: collapse; font-size: 12px; }
th, td { text-align: left; padding: 2px 4px; }
td.num, th.num { text-align: right; }
.total { font-weight: bold; border-top: 1px dashed #000; }
.meta { font-size: 12px; }
</style>
</head>
<body onload="window.print()">
<h1>SALES RECEIPT</h1>
<div class="meta">
<p>Receipt: {{.Number}}<br>
Date: {{.IssuedAt.Format "2006-01-02 15:04:05"}}<br>
Cashier: {{.CashierName}}<br>
{{if .Customer}}Customer: {{.Customer}}<br>{{end}}
Delivery: {{.DeliveryMethod}}<br>
Payment: {{.PaymentMethod}}</p>
</div>
<table>
<tr><th>#</th><th>Item</th><th>Category</th><th class="num">Price</th><th class="num">Qty</th><th class="num">Total</th></tr>
{{range $i, $item := .Items}}
<tr>
<td>{{inc $i}}</td>
<td>{{$item.Name}}</td>
<td>{{$item.Category}}</td>
<td class="num">{{money $item.UnitPrice}}</td>
<td class="num">{{$item.Quantity}}</td>
<td class="num">{{money $item.LineTotal}}</td>
</tr>
{{end}}
<tr class="total"><td colspan="5">GRAND TOTAL</td><td class="num">{{money .Total}}</td></tr>
</table>
<p class="meta">Return code: {{.ReturnCode}}</p>
</body>
</html>`

var printTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"inc":   func(i int) int { return i + 1 },
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).Parse(printTemplate))

// RenderHTML returns the printable HTML document for the receipt.
func RenderHTML(r *model.Receipt) (string, error) {
	var buf bytes.Buffer
	if err := printTmpl.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PDFFileName is the download name for the receipt's PDF representation.
func PDFFileName(r *model.Receipt) string {
	return fmt.Sprintf("receipt_%s.pdf", r.Number)
}

// RenderPDF returns the PDF representation with the same line items and
// totals as the printable document.
func RenderPDF(r *model.Receipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "SALES RECEIPT", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Receipt: %s", r.Number), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Date: %s", r.IssuedAt.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Cashier: %s", r.CashierName), "", 1, "L", false, 0, "")
	if r.Customer != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Customer: %s", r.Customer), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 5, fmt.Sprintf("Delivery: %s", r.DeliveryMethod), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Payment: %s", r.PaymentMethod), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Line item table
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(10, 6, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, "Category", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(15, 6, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for i, item := range r.Items {
		pdf.CellFormat(10, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, item.Category, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(15, 6, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, item.LineTotal.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(145, 7, "GRAND TOTAL", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, r.Total.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Return code: %s", r.ReturnCode), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
