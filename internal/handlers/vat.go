package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/efactura/efactura/internal/httpx"
	"github.com/efactura/efactura/internal/vat"
)

type VATHandler struct {
	Validator vat.Validator
	Log       *zap.Logger
}

func NewVATHandler(validator vat.Validator, log *zap.Logger) *VATHandler {
	return &VATHandler{Validator: validator, Log: log}
}

// vatEnvelope is the success/error discriminant callers branch on; gateway
// failures never surface as a non-200 status.
type vatEnvelope struct {
	Success bool        `json:"success"`
	Data    *vat.Result `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Validate: POST /vat/validate - forwards the VAT number to the validation
// gateway. Empty input is rejected here, before the gateway is reached.
func (h *VATHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var vatNumber string
	if isJSONBody(r) {
		var req struct {
			VATNumber string `json:"vatNumber"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		vatNumber = req.VATNumber
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		vatNumber = r.FormValue("vat_number")
	}
	vatNumber = strings.TrimSpace(vatNumber)
	if vatNumber == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"vatNumber": "required"})
		return
	}

	result, err := h.Validator.Validate(r.Context(), vatNumber)
	if err != nil {
		h.Log.Warn("vat validation failed", zap.Error(err))
		httpx.JSON(w, http.StatusOK, vatEnvelope{Success: false, Error: "Fallo al validar el IVA: " + err.Error()})
		return
	}
	httpx.JSON(w, http.StatusOK, vatEnvelope{Success: true, Data: result})
}
