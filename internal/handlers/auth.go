package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/efactura/efactura/internal/auth"
	"github.com/efactura/efactura/internal/httpx"
	"github.com/efactura/efactura/internal/models"
	"github.com/efactura/efactura/internal/view"
)

type AuthHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewAuthHandler(db *gorm.DB, log *zap.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Log: log}
}

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/signup", h.signup)
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/logout", h.logout)
}

func (h *AuthHandler) renderPage(w http.ResponseWriter, name string, data map[string]any) {
	if err := view.Render(w, name+".html", data); err != nil {
		h.Log.Error("template render failed", zap.String("template", name), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.renderPage(w, "signup", nil)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	pass := r.FormValue("password")
	name := strings.TrimSpace(r.FormValue("name"))
	if email == "" || pass == "" {
		h.renderPage(w, "signup", map[string]any{"Error": "Correo y contraseña son obligatorios"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		h.renderPage(w, "signup", map[string]any{"Error": "No se pudo crear la cuenta"})
		return
	}
	user := models.User{Email: email, Name: name, Password: string(hash)}
	if err := h.DB.Create(&user).Error; err != nil {
		h.renderPage(w, "signup", map[string]any{"Error": "No se pudo crear la cuenta"})
		return
	}
	auth.CreateSession(w, user.ID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.renderPage(w, "login", nil)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	pass := r.FormValue("password")
	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.Log.Error("login lookup failed", zap.Error(err))
		}
		h.renderPage(w, "login", map[string]any{"Error": "Credenciales inválidas"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(pass)) != nil {
		h.renderPage(w, "login", map[string]any{"Error": "Credenciales inválidas"})
		return
	}
	auth.CreateSession(w, user.ID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
