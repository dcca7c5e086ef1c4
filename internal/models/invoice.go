package models

import "time"

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Invoice owns its line items exclusively: they are inserted with it,
// replaced wholesale on update, and removed by the database cascade rule on
// delete. The >=1 line item rule lives in the validate tag, not the database.
type Invoice struct {
	ID            string        `gorm:"primaryKey;size:36" json:"id" validate:"omitempty,uuid4"`
	InvoiceNumber string        `gorm:"not null" json:"invoiceNumber" validate:"required"`
	CustomerID    string        `gorm:"not null;size:36;index" json:"customerId" validate:"required"`
	IssueDate     time.Time     `gorm:"not null;index" json:"issueDate" validate:"required"`
	DueDate       time.Time     `gorm:"not null" json:"dueDate" validate:"required"`
	Status        InvoiceStatus `gorm:"size:20;not null;default:'draft'" json:"status" validate:"required,oneof=draft paid overdue"`
	LineItems     []LineItem    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lineItems" validate:"required,min=1,dive"`
	CreatedAt     time.Time     `json:"-"`
	UpdatedAt     time.Time     `json:"-"`
}

// IsDraft reports whether the invoice is still editable as a draft.
func (i *Invoice) IsDraft() bool { return i.Status == InvoiceStatusDraft }

// LineItem identities are regenerated on every invoice write, so callers must
// not rely on them surviving an update. ProductID is nullable: removing the
// referenced product clears the reference (SET NULL), never the row.
type LineItem struct {
	ID          string   `gorm:"primaryKey;size:36" json:"id"`
	InvoiceID   string   `gorm:"not null;size:36;index" json:"-"`
	ProductID   *string  `gorm:"size:36;index" json:"productId,omitempty"`
	Product     *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL" json:"-" validate:"-"`
	Description string   `gorm:"size:500;not null" json:"description" validate:"required"`
	Quantity    float64  `gorm:"not null" json:"quantity" validate:"gt=0"`
	UnitPrice   float64  `gorm:"not null" json:"unitPrice" validate:"gte=0"`
	Position    int      `gorm:"not null;default:0" json:"-"`
}

// Amount is the raw line total before tax. Aggregate money math goes through
// the services package; this exists for templates.
func (item *LineItem) Amount() float64 { return item.Quantity * item.UnitPrice }
