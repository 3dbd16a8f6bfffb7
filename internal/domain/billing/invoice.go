package billing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/store/backend/internal/domain/shared"
)

// InvoiceDetail represents one product-quantity line belonging to an invoice.
// LineTotal is a snapshot: it reflects the product's unit price at the moment
// the invoice was written, not a live reference into the catalog.
type InvoiceDetail struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	InvoiceCode string          `gorm:"type:varchar(50);not null;index"`
	ProductCode string          `gorm:"type:varchar(50);not null;index"`
	Quantity    int             `gorm:"not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceDetail) TableName() string {
	return "invoice_details"
}

// NewInvoiceDetail creates a priced detail line. The line total is computed
// here and never accepted from the caller.
func NewInvoiceDetail(productCode string, quantity int, unitPrice decimal.Decimal) (*InvoiceDetail, error) {
	canonical, err := shared.NormalizeCode(productCode)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product code cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	return &InvoiceDetail{
		ProductCode: canonical,
		Quantity:    quantity,
		LineTotal:   unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// Invoice represents an invoice header and its line items. It is the
// aggregate root of the billing context: the detail collection is exclusively
// owned and replaced as a whole on every update.
type Invoice struct {
	Code         string          `gorm:"type:varchar(50);primaryKey"`
	CustomerCode string          `gorm:"type:varchar(50);not null;index"`
	IssuedAt     time.Time       `gorm:"not null"`
	Total        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Details      []InvoiceDetail `gorm:"foreignKey:InvoiceCode;references:Code"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an invoice header. IssuedAt is set by the system at
// write time; callers never supply it.
func NewInvoice(code, customerCode string) (*Invoice, error) {
	canonical, err := shared.NormalizeCode(code)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CODE", "Invoice code cannot be empty")
	}
	canonicalCustomer, err := shared.NormalizeCode(customerCode)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer code cannot be empty")
	}

	now := time.Now()
	return &Invoice{
		Code:         canonical,
		CustomerCode: canonicalCustomer,
		IssuedAt:     now,
		Total:        decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// SetDetails replaces the invoice's detail set and recomputes the total as
// the sum of the line totals. At least one detail is required.
func (i *Invoice) SetDetails(details []InvoiceDetail) error {
	if len(details) == 0 {
		return shared.NewDomainError("INVALID_DETAILS", "Invoice must have at least one detail line")
	}

	total := decimal.Zero
	for idx := range details {
		details[idx].InvoiceCode = i.Code
		total = total.Add(details[idx].LineTotal)
	}

	i.Details = details
	i.Total = total
	i.UpdatedAt = time.Now()
	return nil
}

// Reassign moves the invoice to another customer and refreshes the issue
// date, matching the full-replace write semantics of updates.
func (i *Invoice) Reassign(customerCode string) error {
	canonical, err := shared.NormalizeCode(customerCode)
	if err != nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer code cannot be empty")
	}

	now := time.Now()
	i.CustomerCode = canonical
	i.IssuedAt = now
	i.UpdatedAt = now
	return nil
}
