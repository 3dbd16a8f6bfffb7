package billing

import (
	"context"

	"github.com/store/backend/internal/domain/shared"
)

// InvoiceRepository defines the interface for invoice persistence. Create,
// Update and Delete each persist the header and the full detail set as a
// single all-or-nothing unit; a failure of any step rolls the whole write
// back.
type InvoiceRepository interface {
	// FindByCode finds an invoice with its details by canonical code
	FindByCode(ctx context.Context, code string) (*Invoice, error)

	// FindAll finds all invoices (with details) matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)

	// ExistsByCode checks if an invoice with the given code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Create inserts the header row and every detail row in one transaction
	Create(ctx context.Context, invoice *Invoice) error

	// Update replaces the invoice in one transaction: all existing detail
	// rows are deleted, the header is updated, and the new detail set is
	// inserted.
	Update(ctx context.Context, invoice *Invoice) error

	// Delete removes the detail rows and then the header in one transaction
	Delete(ctx context.Context, code string) error

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByCustomerCode counts invoices referencing a customer; used by the
	// customer delete guard
	CountByCustomerCode(ctx context.Context, customerCode string) (int64, error)

	// CountDetailsByProductCode counts detail rows referencing a product;
	// used by the product delete guard
	CountDetailsByProductCode(ctx context.Context, productCode string) (int64, error)
}
