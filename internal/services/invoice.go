package services

import (
	"github.com/shopspring/decimal"

	"github.com/efactura/efactura/internal/models"
)

// TaxRate is the fixed 21% IVA applied to every invoice. It lives here and
// nowhere else.
var TaxRate = decimal.NewFromFloat(0.21)

// Totals are always recomputed from the line items, never stored.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals derives subtotal, tax and total for an invoice from its line
// items: subtotal = sum(quantity x unitPrice), tax = subtotal x TaxRate.
func ComputeTotals(inv *models.Invoice) Totals {
	sub := decimal.Zero
	for _, it := range inv.LineItems {
		line := decimal.NewFromFloat(it.Quantity).Mul(decimal.NewFromFloat(it.UnitPrice))
		sub = sub.Add(line)
	}
	sub = sub.Round(2)
	tax := sub.Mul(TaxRate).Round(2)
	return Totals{Subtotal: sub, Tax: tax, Total: sub.Add(tax)}
}

// StatusSummary aggregates one invoice status for the dashboard.
type StatusSummary struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"` // tax included
}

type DashboardStats struct {
	Paid    StatusSummary `json:"paid"`
	Pending StatusSummary `json:"pending"`
	Overdue StatusSummary `json:"overdue"`
}

// Summarize buckets invoices by status and totals each bucket with tax
// included, matching what the dashboard cards display.
func Summarize(invoices []models.Invoice) DashboardStats {
	var stats DashboardStats
	for i := range invoices {
		t := ComputeTotals(&invoices[i])
		switch invoices[i].Status {
		case models.InvoiceStatusPaid:
			stats.Paid.Count++
			stats.Paid.Total = stats.Paid.Total.Add(t.Total)
		case models.InvoiceStatusOverdue:
			stats.Overdue.Count++
			stats.Overdue.Total = stats.Overdue.Total.Add(t.Total)
		default:
			stats.Pending.Count++
			stats.Pending.Total = stats.Pending.Total.Add(t.Total)
		}
	}
	return stats
}
