package partner

import (
	"context"

	"github.com/store/backend/internal/domain/billing"
	"github.com/store/backend/internal/domain/partner"
	"github.com/store/backend/internal/domain/shared"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	invoiceRepo  billing.InvoiceRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, invoiceRepo billing.InvoiceRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(req.Code, req.Name, req.Phone)
	if err != nil {
		return nil, err
	}

	exists, err := s.customerRepo.ExistsByCode(ctx, customer.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer with this code already exists")
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByCode retrieves a customer by code
func (s *CustomerService) GetByCode(ctx context.Context, code string) (*CustomerResponse, error) {
	canonical, err := shared.NormalizeCode(code)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CODE", "Customer code cannot be empty")
	}

	customer, err := s.customerRepo.FindByCode(ctx, canonical)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers with pagination and the total match count
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.Search = filter.Search

	customers, err := s.customerRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.customerRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses, total, nil
}

// Update updates a customer's name and phone
func (s *CustomerService) Update(ctx context.Context, code string, req UpdateCustomerRequest) (*CustomerResponse, error) {
	canonical, err := shared.NormalizeCode(code)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CODE", "Customer code cannot be empty")
	}

	customer, err := s.customerRepo.FindByCode(ctx, canonical)
	if err != nil {
		return nil, err
	}

	if err := customer.Update(req.Name, req.Phone); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete removes a customer. Customers referenced by invoices cannot be
// deleted.
func (s *CustomerService) Delete(ctx context.Context, code string) error {
	canonical, err := shared.NormalizeCode(code)
	if err != nil {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot be empty")
	}

	exists, err := s.customerRepo.ExistsByCode(ctx, canonical)
	if err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound
	}

	invoiceCount, err := s.invoiceRepo.CountByCustomerCode(ctx, canonical)
	if err != nil {
		return err
	}
	if invoiceCount > 0 {
		return shared.NewDomainError("HAS_DEPENDENTS", "Customer has invoices and cannot be deleted")
	}

	return s.customerRepo.Delete(ctx, canonical)
}
