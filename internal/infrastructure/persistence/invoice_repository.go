package persistence

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/store/backend/internal/domain/billing"
	"github.com/store/backend/internal/domain/shared"
)

// GormInvoiceRepository implements InvoiceRepository using GORM. Every write
// touches both the invoice header and its detail rows inside a single
// transaction so a failure at any step leaves the database unchanged.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByCode finds an invoice with its details by canonical code
func (r *GormInvoiceRepository) FindByCode(ctx context.Context, code string) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Details").
		First(&invoice, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.NewPersistenceError("invoice lookup", err)
	}
	return &invoice, nil
}

// FindAll finds all invoices (with details) matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	query := r.applyFilter(r.db.WithContext(ctx).Model(&billing.Invoice{}), filter)

	if err := query.Preload("Details").Find(&invoices).Error; err != nil {
		return nil, shared.NewPersistenceError("invoice list", err)
	}
	return invoices, nil
}

// ExistsByCode checks if an invoice with the given code exists
func (r *GormInvoiceRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&billing.Invoice{}).
		Where("code = ?", code).Count(&count).Error; err != nil {
		return false, shared.NewPersistenceError("invoice lookup", err)
	}
	return count > 0, nil
}

// Create inserts the header row and every detail row in one transaction
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Details").Create(invoice).Error; err != nil {
			return err
		}
		if len(invoice.Details) > 0 {
			if err := tx.Create(&invoice.Details).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return translateWriteError("invoice create", err)
	}
	return nil
}

// Update replaces the invoice in one transaction: existing detail rows are
// deleted, the header is updated, then the new detail set is inserted.
func (r *GormInvoiceRepository) Update(ctx context.Context, invoice *billing.Invoice) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&billing.InvoiceDetail{}, "invoice_code = ?", invoice.Code).Error; err != nil {
			return err
		}

		result := tx.Model(&billing.Invoice{}).
			Where("code = ?", invoice.Code).
			Updates(map[string]any{
				"customer_code": invoice.CustomerCode,
				"issued_at":     invoice.IssuedAt,
				"total":         invoice.Total,
				"updated_at":    invoice.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if len(invoice.Details) > 0 {
			// Detail rows carry fresh identities after a replace
			for i := range invoice.Details {
				invoice.Details[i].ID = 0
			}
			if err := tx.Create(&invoice.Details).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return translateWriteError("invoice update", err)
	}
	return nil
}

// Delete removes the detail rows and then the header in one transaction
func (r *GormInvoiceRepository) Delete(ctx context.Context, code string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&billing.InvoiceDetail{}, "invoice_code = ?", code).Error; err != nil {
			return err
		}

		result := tx.Delete(&billing.Invoice{}, "code = ?", code)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return translateDeleteError("invoice delete", err)
	}
	return nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&billing.Invoice{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, shared.NewPersistenceError("invoice count", err)
	}
	return count, nil
}

// CountByCustomerCode counts invoices referencing a customer
func (r *GormInvoiceRepository) CountByCustomerCode(ctx context.Context, customerCode string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&billing.Invoice{}).
		Where("customer_code = ?", customerCode).Count(&count).Error; err != nil {
		return 0, shared.NewPersistenceError("invoice count", err)
	}
	return count, nil
}

// CountDetailsByProductCode counts detail rows referencing a product
func (r *GormInvoiceRepository) CountDetailsByProductCode(ctx context.Context, productCode string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&billing.InvoiceDetail{}).
		Where("product_code = ?", productCode).Count(&count).Error; err != nil {
		return 0, shared.NewPersistenceError("invoice detail count", err)
	}
	return count, nil
}

func (r *GormInvoiceRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR customer_code LIKE ?", pattern, pattern)
	}
	return query
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applySearch(query, filter)
	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("issued_at DESC")
	}

	return query
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
