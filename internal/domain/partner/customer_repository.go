package partner

import (
	"context"

	"github.com/store/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByCode finds a customer by its canonical code
	FindByCode(ctx context.Context, code string) (*Customer, error)

	// FindByCodes finds multiple customers by their canonical codes
	FindByCodes(ctx context.Context, codes []string) ([]Customer, error)

	// FindAll finds all customers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// ExistsByCode checks if a customer with the given code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Create inserts a new customer
	Create(ctx context.Context, customer *Customer) error

	// Update updates an existing customer
	Update(ctx context.Context, customer *Customer) error

	// Delete deletes a customer by code
	Delete(ctx context.Context, code string) error

	// Count counts customers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
