package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/efactura/efactura/internal/models"
)

func testProduct() models.Product {
	return models.Product{Name: "Consultoría", Description: "Hora de consultoría", Price: 60}
}

func TestProductCRUD(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewProductRepository(conn)
	ctx := context.Background()

	created, err := repo.Add(ctx, testProduct())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if created.ID == "" {
		t.Fatal("no id generated")
	}

	created.Price = 75
	updated, err := repo.Update(ctx, *created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != 75 {
		t.Fatalf("price not updated: %v", updated.Price)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProductAddRejectsNegativePrice(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewProductRepository(conn)

	p := testProduct()
	p.Price = -1
	_, err := repo.Add(context.Background(), p)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Violations["price"] != "must_not_be_negative" {
		t.Fatalf("unexpected violations: %v", verr.Violations)
	}
}

// Removing a product clears the reference on line items (SET NULL) but keeps
// the lines and their frozen description and price.
func TestProductDeleteClearsLineItemReference(t *testing.T) {
	conn := setupTestDB(t)
	products := NewProductRepository(conn)
	invoices := NewInvoiceRepository(conn)
	ctx := context.Background()

	p, err := products.Add(ctx, testProduct())
	if err != nil {
		t.Fatalf("add product: %v", err)
	}

	inv := testInvoice("cust-1")
	inv.LineItems = []models.LineItem{
		{ProductID: &p.ID, Description: p.Name, Quantity: 2, UnitPrice: p.Price},
	}
	created, err := invoices.Create(ctx, inv)
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if created.LineItems[0].ProductID == nil || *created.LineItems[0].ProductID != p.ID {
		t.Fatalf("product reference not stored: %+v", created.LineItems[0])
	}

	if err := products.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	got, err := invoices.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if len(got.LineItems) != 1 {
		t.Fatalf("line item lost: %d", len(got.LineItems))
	}
	item := got.LineItems[0]
	if item.ProductID != nil {
		t.Errorf("product reference not cleared: %v", *item.ProductID)
	}
	if item.Description != "Consultoría" || item.UnitPrice != 60 {
		t.Errorf("frozen line data changed: %+v", item)
	}
}
