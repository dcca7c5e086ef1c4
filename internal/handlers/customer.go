package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/efactura/efactura/internal/httpx"
	"github.com/efactura/efactura/internal/models"
	"github.com/efactura/efactura/internal/repository"
	"github.com/efactura/efactura/internal/view"
)

type CustomerHandler struct {
	Repo *repository.CustomerRepository
	Log  *zap.Logger
}

func NewCustomerHandler(repo *repository.CustomerRepository, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{Repo: repo, Log: log}
}

// List: GET /customers - HTML table or JSON.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Repo.List(r.Context())
	if err != nil {
		writeRepoError(w, h.Log, "list_customers", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": customers, "total": len(customers)})
		return
	}
	if err := view.Render(w, "customers.html", map[string]any{"Customers": customers}); err != nil {
		h.Log.Error("template render failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// Create: POST /customers - JSON body or form.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c models.Customer
	if isJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		c = customerFromForm(r)
	}
	created, err := h.Repo.Add(r.Context(), c)
	if err != nil {
		writeRepoError(w, h.Log, "add_customer", err)
		return
	}
	if isJSONBody(r) {
		httpx.JSON(w, http.StatusCreated, created)
		return
	}
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

// Update: PUT /customers/{id} (JSON) or POST /customers/{id} (form).
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var c models.Customer
	if isJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		c = customerFromForm(r)
	}
	c.ID = id
	updated, err := h.Repo.Update(r.Context(), c)
	if err != nil {
		writeRepoError(w, h.Log, "update_customer", err)
		return
	}
	if isJSONBody(r) {
		httpx.JSON(w, http.StatusOK, updated)
		return
	}
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

// Delete: DELETE /customers/{id} or POST /customers/{id}/delete (form).
// Invoices referencing the customer are left alone.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeRepoError(w, h.Log, "delete_customer", err)
		return
	}
	if r.Method == http.MethodDelete {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		return
	}
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

func customerFromForm(r *http.Request) models.Customer {
	return models.Customer{
		Name:      strings.TrimSpace(r.FormValue("name")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		Address:   strings.TrimSpace(r.FormValue("address")),
		VATNumber: strings.TrimSpace(r.FormValue("vat_number")),
	}
}
