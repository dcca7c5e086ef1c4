package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/efactura/efactura/internal/httpx"
	"github.com/efactura/efactura/internal/models"
	"github.com/efactura/efactura/internal/repository"
	"github.com/efactura/efactura/internal/view"
)

type ProductHandler struct {
	Repo *repository.ProductRepository
	Log  *zap.Logger
}

func NewProductHandler(repo *repository.ProductRepository, log *zap.Logger) *ProductHandler {
	return &ProductHandler{Repo: repo, Log: log}
}

// List: GET /products - HTML table or JSON.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.Repo.List(r.Context())
	if err != nil {
		writeRepoError(w, h.Log, "list_products", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": len(products)})
		return
	}
	if err := view.Render(w, "products.html", map[string]any{"Products": products}); err != nil {
		h.Log.Error("template render failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// Create: POST /products - JSON body or form.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.Repo.Add(r.Context(), p)
	if err != nil {
		writeRepoError(w, h.Log, "add_product", err)
		return
	}
	if isJSONBody(r) {
		httpx.JSON(w, http.StatusCreated, created)
		return
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

// Update: PUT /products/{id} (JSON) or POST /products/{id} (form).
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.decode(w, r)
	if !ok {
		return
	}
	p.ID = r.PathValue("id")
	updated, err := h.Repo.Update(r.Context(), p)
	if err != nil {
		writeRepoError(w, h.Log, "update_product", err)
		return
	}
	if isJSONBody(r) {
		httpx.JSON(w, http.StatusOK, updated)
		return
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

// Delete: DELETE /products/{id} or POST /products/{id}/delete (form).
// Line items pointing at the product keep their row; the database clears the
// reference.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeRepoError(w, h.Log, "delete_product", err)
		return
	}
	if r.Method == http.MethodDelete {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		return
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (h *ProductHandler) decode(w http.ResponseWriter, r *http.Request) (models.Product, bool) {
	var p models.Product
	if isJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return p, false
		}
		return p, true
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return p, false
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"price": "invalid_number"})
		return p, false
	}
	p = models.Product{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       price,
	}
	return p, true
}
