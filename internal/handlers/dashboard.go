package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/efactura/efactura/internal/httpx"
	"github.com/efactura/efactura/internal/repository"
	"github.com/efactura/efactura/internal/services"
	"github.com/efactura/efactura/internal/view"
)

type DashboardHandler struct {
	Invoices *repository.InvoiceRepository
	Log      *zap.Logger
}

func NewDashboardHandler(invoices *repository.InvoiceRepository, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{Invoices: invoices, Log: log}
}

// Show: GET /dashboard - revenue cards per status, tax included.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Invoices.List(r.Context())
	if err != nil {
		writeRepoError(w, h.Log, "list_invoices", err)
		return
	}
	stats := services.Summarize(invoices)
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, stats)
		return
	}
	recent := invoices
	if len(recent) > 5 {
		recent = recent[:5]
	}
	data := map[string]any{
		"Stats":  stats,
		"Recent": rows(recent),
	}
	if err := view.Render(w, "dashboard.html", data); err != nil {
		h.Log.Error("template render failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}
