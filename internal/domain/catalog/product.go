package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/store/backend/internal/domain/shared"
)

// Product represents a product in the catalog context. The unit price is the
// live catalog price; invoices snapshot it into their line totals at write
// time rather than referencing it thereafter.
type Product struct {
	Code      string          `gorm:"type:varchar(50);primaryKey"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with a canonical code
func NewProduct(code, name string, price decimal.Decimal) (*Product, error) {
	canonical, err := shared.NormalizeCode(code)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validateProductPrice(price); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Product{
		Code:      canonical,
		Name:      strings.TrimSpace(name),
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update updates the product's display name and unit price
func (p *Product) Update(name string, price decimal.Decimal) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if err := validateProductPrice(price); err != nil {
		return err
	}

	p.Name = strings.TrimSpace(name)
	p.Price = price
	p.UpdatedAt = time.Now()
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validateProductPrice(price decimal.Decimal) error {
	if price.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Unit price must be positive")
	}
	return nil
}
