package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/efactura/efactura/internal/httpx"
	"github.com/efactura/efactura/internal/models"
	"github.com/efactura/efactura/internal/repository"
	"github.com/efactura/efactura/internal/services"
	"github.com/efactura/efactura/internal/view"
)

type InvoiceHandler struct {
	Invoices  *repository.InvoiceRepository
	Customers *repository.CustomerRepository
	Products  *repository.ProductRepository
	Log       *zap.Logger
}

func NewInvoiceHandler(invoices *repository.InvoiceRepository, customers *repository.CustomerRepository, products *repository.ProductRepository, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{Invoices: invoices, Customers: customers, Products: products, Log: log}
}

// invoiceRow pairs an invoice with its recomputed totals for lists and JSON.
type invoiceRow struct {
	models.Invoice
	Totals services.Totals `json:"totals"`
}

func rows(invoices []models.Invoice) []invoiceRow {
	out := make([]invoiceRow, 0, len(invoices))
	for i := range invoices {
		out = append(out, invoiceRow{Invoice: invoices[i], Totals: services.ComputeTotals(&invoices[i])})
	}
	return out
}

// List: GET /invoices - newest first, totals recomputed per row.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Invoices.List(r.Context())
	if err != nil {
		writeRepoError(w, h.Log, "list_invoices", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": rows(invoices), "total": len(invoices)})
		return
	}
	h.render(w, "invoices.html", map[string]any{"Invoices": rows(invoices)})
}

// New: GET /invoices/new - creation form with the usual defaults: number
// prefixed FACT-<year>-, due date 30 days out, one empty line.
func (h *InvoiceHandler) New(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Customers.List(r.Context())
	if err != nil {
		writeRepoError(w, h.Log, "list_customers", err)
		return
	}
	products, err := h.Products.List(r.Context())
	if err != nil {
		writeRepoError(w, h.Log, "list_products", err)
		return
	}
	now := time.Now()
	draft := models.Invoice{
		InvoiceNumber: fmt.Sprintf("FACT-%d-", now.Year()),
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, 30),
		Status:        models.InvoiceStatusDraft,
		LineItems:     []models.LineItem{{Quantity: 1}},
	}
	h.render(w, "invoice_form.html", map[string]any{
		"Invoice":   draft,
		"Customers": customers,
		"Products":  products,
	})
}

// Create: POST /invoices - JSON body or form.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.Invoices.Create(r.Context(), inv)
	if err != nil {
		writeRepoError(w, h.Log, "create_invoice", err)
		return
	}
	if isJSONBody(r) {
		httpx.JSON(w, http.StatusCreated, invoiceRow{Invoice: *created, Totals: services.ComputeTotals(created)})
		return
	}
	http.Redirect(w, r, "/invoices/"+created.ID, http.StatusSeeOther)
}

// Detail: GET /invoices/{id} - invoice with its customer and totals.
func (h *InvoiceHandler) Detail(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Invoices.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeRepoError(w, h.Log, "get_invoice", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, invoiceRow{Invoice: *inv, Totals: services.ComputeTotals(inv)})
		return
	}
	data := map[string]any{
		"Invoice": inv,
		"Totals":  services.ComputeTotals(inv),
	}
	// The customer may have been deleted since; the invoice still renders.
	if c, cerr := h.Customers.Get(r.Context(), inv.CustomerID); cerr == nil {
		data["Customer"] = c
	}
	h.render(w, "invoice_detail.html", data)
}

// Edit: GET /invoices/{id}/edit - edit form.
func (h *InvoiceHandler) Edit(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Invoices.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeRepoError(w, h.Log, "get_invoice", err)
		return
	}
	customers, err := h.Customers.List(r.Context())
	if err != nil {
		writeRepoError(w, h.Log, "list_customers", err)
		return
	}
	products, err := h.Products.List(r.Context())
	if err != nil {
		writeRepoError(w, h.Log, "list_products", err)
		return
	}
	h.render(w, "invoice_form.html", map[string]any{
		"Invoice":   inv,
		"Customers": customers,
		"Products":  products,
	})
}

// Update: PUT /invoices/{id} (JSON) or POST /invoices/{id} (form). The whole
// line-item set is replaced.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.decode(w, r)
	if !ok {
		return
	}
	inv.ID = r.PathValue("id")
	updated, err := h.Invoices.Update(r.Context(), inv)
	if err != nil {
		writeRepoError(w, h.Log, "update_invoice", err)
		return
	}
	if isJSONBody(r) {
		httpx.JSON(w, http.StatusOK, invoiceRow{Invoice: *updated, Totals: services.ComputeTotals(updated)})
		return
	}
	http.Redirect(w, r, "/invoices/"+updated.ID, http.StatusSeeOther)
}

// Delete: DELETE /invoices/{id} or POST /invoices/{id}/delete (form).
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Invoices.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeRepoError(w, h.Log, "delete_invoice", err)
		return
	}
	if r.Method == http.MethodDelete {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		return
	}
	http.Redirect(w, r, "/invoices", http.StatusSeeOther)
}

func (h *InvoiceHandler) render(w http.ResponseWriter, name string, data map[string]any) {
	if err := view.Render(w, name, data); err != nil {
		h.Log.Error("template render failed", zap.String("template", name), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (h *InvoiceHandler) decode(w http.ResponseWriter, r *http.Request) (models.Invoice, bool) {
	var inv models.Invoice
	if isJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return inv, false
		}
		return inv, true
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return inv, false
	}
	return invoiceFromForm(w, r)
}

// invoiceFromForm builds an invoice from the parallel item_* form arrays the
// form submits, one entry per line row.
func invoiceFromForm(w http.ResponseWriter, r *http.Request) (models.Invoice, bool) {
	var inv models.Invoice
	inv.InvoiceNumber = strings.TrimSpace(r.FormValue("invoice_number"))
	inv.CustomerID = strings.TrimSpace(r.FormValue("customer_id"))
	inv.Status = models.InvoiceStatus(r.FormValue("status"))

	issue, err := time.Parse("2006-01-02", r.FormValue("issue_date"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"issueDate": "invalid_date"})
		return inv, false
	}
	due, err := time.Parse("2006-01-02", r.FormValue("due_date"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"dueDate": "invalid_date"})
		return inv, false
	}
	inv.IssueDate, inv.DueDate = issue, due

	descriptions := r.Form["item_description"]
	quantities := r.Form["item_quantity"]
	prices := r.Form["item_unit_price"]
	productIDs := r.Form["item_product_id"]
	for i := range descriptions {
		item := models.LineItem{Description: strings.TrimSpace(descriptions[i])}
		if i < len(quantities) {
			item.Quantity, _ = strconv.ParseFloat(quantities[i], 64)
		}
		if i < len(prices) {
			item.UnitPrice, _ = strconv.ParseFloat(prices[i], 64)
		}
		if i < len(productIDs) && productIDs[i] != "" {
			pid := productIDs[i]
			item.ProductID = &pid
		}
		inv.LineItems = append(inv.LineItems, item)
	}
	return inv, true
}
