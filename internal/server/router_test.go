package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/efactura/efactura/internal/db"
	"github.com/efactura/efactura/internal/vat"
)

type fakeValidator struct {
	result *vat.Result
	err    error
}

func (f *fakeValidator) Validate(context.Context, string) (*vat.Result, error) {
	return f.result, f.err
}

func setupServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	validator := &fakeValidator{result: &vat.Result{IsValid: true, ValidationDetails: "ok"}}
	srv := httptest.NewServer(New(conn, validator, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv, conn
}

// client with a cookie jar that does not follow redirects, so tests can
// assert on Location headers.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func signup(t *testing.T, c *http.Client, base, email, pass string) {
	t.Helper()
	form := url.Values{"email": {email}, "password": {pass}, "name": {"Tester"}}
	resp, err := c.PostForm(base+"/signup", form)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("signup: expected 303, got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := setupServer(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestUnauthenticatedBrowserRedirectsToLogin(t *testing.T) {
	srv, _ := setupServer(t)
	c := newClient(t)

	resp, err := c.Get(srv.URL + "/dashboard")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Fatalf("unexpected redirect: %s", loc)
	}
}

func TestUnauthenticatedAPIGets401(t *testing.T) {
	srv, _ := setupServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/customers", nil)
	req.Header.Set("Accept", "application/json")
	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestSignupLoginLogoutFlow(t *testing.T) {
	srv, _ := setupServer(t)
	c := newClient(t)

	signup(t, c, srv.URL, "admin@efactura.es", "secreta123")

	// Authenticated now: dashboard serves JSON stats.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/dashboard", nil)
	req.Header.Set("Accept", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	var stats struct {
		Paid struct {
			Count int `json:"count"`
		} `json:"paid"`
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	resp.Body.Close()

	// Logout drops the session.
	resp, err = c.PostForm(srv.URL+"/logout", nil)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	resp.Body.Close()

	resp, err = c.Get(srv.URL + "/dashboard")
	if err != nil {
		t.Fatalf("dashboard after logout: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 after logout, got %d", resp.StatusCode)
	}

	// Log back in with the same credentials.
	form := url.Values{"email": {"admin@efactura.es"}, "password": {"secreta123"}}
	resp, err = c.PostForm(srv.URL+"/login", form)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login: expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Fatalf("unexpected redirect: %s", loc)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := setupServer(t)
	c := newClient(t)
	signup(t, c, srv.URL, "user@efactura.es", "correcta")

	fresh := newClient(t)
	form := url.Values{"email": {"user@efactura.es"}, "password": {"incorrecta"}}
	resp, err := fresh.PostForm(srv.URL+"/login", form)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected login page again, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Credenciales inválidas") {
		t.Fatal("error message missing from login page")
	}
}

func TestInvoiceLifecycleOverHTTP(t *testing.T) {
	srv, _ := setupServer(t)
	c := newClient(t)
	signup(t, c, srv.URL, "facturas@efactura.es", "secreta123")

	// Create a customer first.
	customerBody := `{"name":"Acme SL","email":"facturas@acme.es","address":"Calle Mayor 1, Madrid","vatNumber":"ESB12345678"}`
	resp, err := c.Post(srv.URL+"/customers", "application/json", strings.NewReader(customerBody))
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	var customer struct {
		ID string `json:"id"`
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create customer: expected 201, got %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&customer); err != nil {
		t.Fatalf("decode customer: %v", err)
	}
	resp.Body.Close()

	invoiceBody := fmt.Sprintf(`{
		"invoiceNumber": "FACT-2026-100",
		"customerId": %q,
		"issueDate": "2026-03-01T00:00:00Z",
		"dueDate": "2026-03-31T00:00:00Z",
		"status": "paid",
		"lineItems": [{"description": "Consultoría", "quantity": 2, "unitPrice": 10}]
	}`, customer.ID)
	resp, err = c.Post(srv.URL+"/invoices", "application/json", strings.NewReader(invoiceBody))
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	var invoice struct {
		ID     string `json:"id"`
		Totals struct {
			Total string `json:"total"`
		} `json:"totals"`
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create invoice: expected 201, got %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&invoice); err != nil {
		t.Fatalf("decode invoice: %v", err)
	}
	resp.Body.Close()
	if invoice.Totals.Total != "24.2" {
		t.Fatalf("unexpected total: %s", invoice.Totals.Total)
	}

	// The paid invoice shows up in the dashboard stats.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/dashboard", nil)
	req.Header.Set("Accept", "application/json")
	resp, err = c.Do(req)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	var stats struct {
		Paid struct {
			Count int    `json:"count"`
			Total string `json:"total"`
		} `json:"paid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	resp.Body.Close()
	if stats.Paid.Count != 1 || stats.Paid.Total != "24.2" {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	// Delete through the API.
	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/invoices/"+invoice.ID, nil)
	resp, err = c.Do(req)
	if err != nil {
		t.Fatalf("delete invoice: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete invoice: expected 200, got %d", resp.StatusCode)
	}
}

func TestVATValidateOverHTTP(t *testing.T) {
	srv, _ := setupServer(t)
	c := newClient(t)
	signup(t, c, srv.URL, "vat@efactura.es", "secreta123")

	resp, err := c.Post(srv.URL+"/vat/validate", "application/json", strings.NewReader(`{"vatNumber":"ESB12345678"}`))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			IsValid bool `json:"isValid"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !envelope.Success || !envelope.Data.IsValid {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
}
