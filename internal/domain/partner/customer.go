package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/store/backend/internal/domain/shared"
)

// phonePattern matches Vietnamese phone numbers: a leading 0 or +84 followed
// by exactly nine digits.
var phonePattern = regexp.MustCompile(`^(0|\+84)[0-9]{9}$`)

// Customer represents a customer in the partner context.
// It is identified by a normalized string code chosen by the operator.
type Customer struct {
	Code      string    `gorm:"type:varchar(50);primaryKey"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Phone     string    `gorm:"type:varchar(20)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer with a canonical code
func NewCustomer(code, name, phone string) (*Customer, error) {
	canonical, err := shared.NormalizeCode(code)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CODE", "Customer code cannot be empty")
	}
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}
	if err := validateCustomerPhone(phone); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Customer{
		Code:      canonical,
		Name:      strings.TrimSpace(name),
		Phone:     strings.TrimSpace(phone),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update updates the customer's display name and phone
func (c *Customer) Update(name, phone string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	if err := validateCustomerPhone(phone); err != nil {
		return err
	}

	c.Name = strings.TrimSpace(name)
	c.Phone = strings.TrimSpace(phone)
	c.UpdatedAt = time.Now()
	return nil
}

func validateCustomerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

// validateCustomerPhone accepts empty phones; the pattern applies only when a
// value is present.
func validateCustomerPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	if !phonePattern.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Phone number is not valid")
	}
	return nil
}
