package persistence

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/store/backend/internal/domain/partner"
	"github.com/store/backend/internal/domain/shared"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByCode finds a customer by its canonical code
func (r *GormCustomerRepository) FindByCode(ctx context.Context, code string) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).First(&customer, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.NewPersistenceError("customer lookup", err)
	}
	return &customer, nil
}

// FindByCodes finds multiple customers by their canonical codes
func (r *GormCustomerRepository) FindByCodes(ctx context.Context, codes []string) ([]partner.Customer, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var customers []partner.Customer
	if err := r.db.WithContext(ctx).Where("code IN ?", codes).Find(&customers).Error; err != nil {
		return nil, shared.NewPersistenceError("customer lookup", err)
	}
	return customers, nil
}

// FindAll finds all customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	var customers []partner.Customer
	query := r.applyFilter(r.db.WithContext(ctx).Model(&partner.Customer{}), filter)

	if err := query.Find(&customers).Error; err != nil {
		return nil, shared.NewPersistenceError("customer list", err)
	}
	return customers, nil
}

// ExistsByCode checks if a customer with the given code exists
func (r *GormCustomerRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&partner.Customer{}).
		Where("code = ?", code).Count(&count).Error; err != nil {
		return false, shared.NewPersistenceError("customer lookup", err)
	}
	return count > 0, nil
}

// Create inserts a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return translateWriteError("customer create", err)
	}
	return nil
}

// Update updates an existing customer
func (r *GormCustomerRepository) Update(ctx context.Context, customer *partner.Customer) error {
	result := r.db.WithContext(ctx).Model(&partner.Customer{}).
		Where("code = ?", customer.Code).
		Updates(map[string]any{
			"name":       customer.Name,
			"phone":      customer.Phone,
			"updated_at": customer.UpdatedAt,
		})
	if result.Error != nil {
		return translateWriteError("customer update", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a customer by code
func (r *GormCustomerRepository) Delete(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).Delete(&partner.Customer{}, "code = ?", code)
	if result.Error != nil {
		return translateDeleteError("customer delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&partner.Customer{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, shared.NewPersistenceError("customer count", err)
	}
	return count, nil
}

func (r *GormCustomerRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR code LIKE ? OR phone LIKE ?", pattern, pattern, pattern)
	}
	return query
}

func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applySearch(query, filter)
	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("code ASC")
	}

	return query
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
