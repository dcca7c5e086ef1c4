package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/efactura/efactura/internal/auth"
	"github.com/efactura/efactura/internal/handlers"
	"github.com/efactura/efactura/internal/httpx"
	"github.com/efactura/efactura/internal/models"
	"github.com/efactura/efactura/internal/repository"
	"github.com/efactura/efactura/internal/vat"
)

// New constructs the root http.Handler with all routes and middlewares
// applied. Everything except login/signup/health is behind the session.
func New(db *gorm.DB, validator vat.Validator, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth verifies the session still maps to an existing user.
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authHandler := handlers.NewAuthHandler(db, log)
	authHandler.Register(mux)

	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}

	mux.Handle("GET /{$}", protected(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}))

	dash := handlers.NewDashboardHandler(invoiceRepo, log)
	mux.Handle("GET /dashboard", protected(dash.Show))

	ch := handlers.NewCustomerHandler(customerRepo, log)
	mux.Handle("GET /customers", protected(ch.List))
	mux.Handle("POST /customers", protected(ch.Create))
	mux.Handle("PUT /customers/{id}", protected(ch.Update))
	mux.Handle("POST /customers/{id}", protected(ch.Update))
	mux.Handle("DELETE /customers/{id}", protected(ch.Delete))
	mux.Handle("POST /customers/{id}/delete", protected(ch.Delete))

	ph := handlers.NewProductHandler(productRepo, log)
	mux.Handle("GET /products", protected(ph.List))
	mux.Handle("POST /products", protected(ph.Create))
	mux.Handle("PUT /products/{id}", protected(ph.Update))
	mux.Handle("POST /products/{id}", protected(ph.Update))
	mux.Handle("DELETE /products/{id}", protected(ph.Delete))
	mux.Handle("POST /products/{id}/delete", protected(ph.Delete))

	ih := handlers.NewInvoiceHandler(invoiceRepo, customerRepo, productRepo, log)
	mux.Handle("GET /invoices", protected(ih.List))
	mux.Handle("POST /invoices", protected(ih.Create))
	mux.Handle("GET /invoices/new", protected(ih.New))
	mux.Handle("GET /invoices/{id}", protected(ih.Detail))
	mux.Handle("GET /invoices/{id}/edit", protected(ih.Edit))
	mux.Handle("PUT /invoices/{id}", protected(ih.Update))
	mux.Handle("POST /invoices/{id}", protected(ih.Update))
	mux.Handle("DELETE /invoices/{id}", protected(ih.Delete))
	mux.Handle("POST /invoices/{id}/delete", protected(ih.Delete))

	vh := handlers.NewVATHandler(validator, log)
	mux.Handle("POST /vat/validate", protected(vh.Validate))

	return auth.Middleware(withRecover(withLogging(mux, log), log))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func withRecover(next http.Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered", zap.Any("panic", rec))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
