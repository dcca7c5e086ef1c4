package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/efactura/efactura/internal/models"
)

// CustomerRepository is single-table CRUD: every write is one statement, so
// no transactions are needed here.
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) List(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.db.WithContext(ctx).Order("name asc").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *CustomerRepository) Get(ctx context.Context, id string) (*models.Customer, error) {
	var c models.Customer
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Add validates and inserts a customer under a freshly generated id.
func (r *CustomerRepository) Add(ctx context.Context, c models.Customer) (*models.Customer, error) {
	c.ID = uuid.NewString()
	if err := checkValid(&c); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c models.Customer) (*models.Customer, error) {
	if err := checkValid(&c); err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", c.ID).
		Updates(map[string]any{
			"name":       c.Name,
			"email":      c.Email,
			"address":    c.Address,
			"vat_number": c.VATNumber,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, c.ID)
}

// Delete removes the customer row only. Invoices reference customers by id
// alone, so they are left untouched.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
