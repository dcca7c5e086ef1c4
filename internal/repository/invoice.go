package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/efactura/efactura/internal/models"
)

// InvoiceRepository keeps an invoice and its line items consistent even
// though they live in two tables: every multi-row write runs inside one
// transaction, so readers never observe a header without its items.
type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func withItems(tx *gorm.DB) *gorm.DB {
	return tx.Preload("LineItems", func(q *gorm.DB) *gorm.DB {
		return q.Order("position asc")
	})
}

// List returns all invoices newest first with their line items attached.
// No pagination; the dataset is expected to stay small.
func (r *InvoiceRepository) List(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	if err := withItems(r.db.WithContext(ctx)).Order("issue_date desc").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *InvoiceRepository) Get(ctx context.Context, id string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := withItems(r.db.WithContext(ctx)).First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// Create persists a new invoice under freshly generated identities. Whatever
// ids the caller supplied, for the header or the items, are discarded. The
// header insert and the item inserts share one transaction; on failure
// everything is rolled back and the error surfaces unchanged.
func (r *InvoiceRepository) Create(ctx context.Context, inv models.Invoice) (*models.Invoice, error) {
	inv.ID = uuid.NewString()
	stampLineItems(&inv)
	if err := checkValid(&inv); err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&inv).Error; err != nil {
			return err
		}
		return tx.Create(&inv.LineItems).Error
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, inv.ID)
}

// Update rewrites the aggregate: header fields are updated in place, then the
// full line-item set is deleted and reinserted under fresh identities.
// Line-item ids are therefore not stable across updates; this mirrors how the
// form submits the whole set every time.
func (r *InvoiceRepository) Update(ctx context.Context, inv models.Invoice) (*models.Invoice, error) {
	if inv.ID == "" {
		return nil, ErrNotFound
	}
	stampLineItems(&inv)
	if err := checkValid(&inv); err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Updates(map[string]any{
			"invoice_number": inv.InvoiceNumber,
			"customer_id":    inv.CustomerID,
			"issue_date":     inv.IssueDate,
			"due_date":       inv.DueDate,
			"status":         inv.Status,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Delete(&models.LineItem{}, "invoice_id = ?", inv.ID).Error; err != nil {
			return err
		}
		return tx.Create(&inv.LineItems).Error
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, inv.ID)
}

// Delete removes the header row; line items go with it through the ON DELETE
// CASCADE rule on the foreign key, not application code.
func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Invoice{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// stampLineItems assigns fresh item ids, ties each item to the header and
// records submission order.
func stampLineItems(inv *models.Invoice) {
	for i := range inv.LineItems {
		inv.LineItems[i].ID = uuid.NewString()
		inv.LineItems[i].InvoiceID = inv.ID
		inv.LineItems[i].Position = i
		inv.LineItems[i].Product = nil
	}
}
