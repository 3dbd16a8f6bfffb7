package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/store/backend/internal/domain/billing"
	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/partner"
	"github.com/store/backend/internal/domain/shared"
)

// InvoiceService orchestrates the invoice lifecycle. It validates references
// against the customer and product repositories, prices every detail line
// from the live catalog, and hands the assembled aggregate to the invoice
// repository for an atomic write.
type InvoiceService struct {
	invoiceRepo  billing.InvoiceRepository
	customerRepo partner.CustomerRepository
	productRepo  catalog.ProductRepository
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	productRepo catalog.ProductRepository,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
	}
}

// Create creates a new invoice. The referenced customer and every referenced
// product must exist; line totals are snapshots of the current catalog
// prices.
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := billing.NewInvoice(req.Code, req.CustomerCode)
	if err != nil {
		return nil, err
	}

	exists, err := s.invoiceRepo.ExistsByCode(ctx, invoice.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Invoice with this code already exists")
	}

	customer, err := s.lookupCustomer(ctx, invoice.CustomerCode)
	if err != nil {
		return nil, err
	}

	details, err := s.priceDetails(ctx, req.Details)
	if err != nil {
		return nil, err
	}
	if err := invoice.SetDetails(details); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice, customer.Name)
	return &response, nil
}

// GetByCode retrieves an invoice with its details by code
func (s *InvoiceService) GetByCode(ctx context.Context, code string) (*InvoiceResponse, error) {
	canonical, err := shared.NormalizeCode(code)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CODE", "Invoice code cannot be empty")
	}

	invoice, err := s.invoiceRepo.FindByCode(ctx, canonical)
	if err != nil {
		return nil, err
	}

	// Customer name is display enrichment only. A failed lookup must not
	// hide an invoice that exists, so the name falls back to empty.
	customerName := ""
	if customer, err := s.customerRepo.FindByCode(ctx, invoice.CustomerCode); err == nil {
		customerName = customer.Name
	}

	response := ToInvoiceResponse(invoice, customerName)
	return &response, nil
}

// List retrieves invoices with pagination, enriched with customer names, and
// the total match count
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	f := shared.DefaultFilter()
	f.OrderBy = "issued_at"
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.Search = filter.Search

	invoices, err := s.invoiceRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.invoiceRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	names, err := s.customerNames(ctx, invoices)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i], names[invoices[i].CustomerCode])
	}
	return responses, total, nil
}

// Update replaces an invoice as a whole. The body code must match the invoice
// being updated, the detail set is re-priced from the current catalog, and
// the issue date is refreshed to the write time.
func (s *InvoiceService) Update(ctx context.Context, code string, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	canonical, err := shared.NormalizeCode(code)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CODE", "Invoice code cannot be empty")
	}
	bodyCode, err := shared.NormalizeCode(req.Code)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CODE", "Invoice code cannot be empty")
	}
	if bodyCode != canonical {
		return nil, shared.NewDomainError("CODE_MISMATCH", "Invoice code in body does not match the invoice being updated")
	}

	invoice, err := s.invoiceRepo.FindByCode(ctx, canonical)
	if err != nil {
		return nil, err
	}

	if err := invoice.Reassign(req.CustomerCode); err != nil {
		return nil, err
	}

	customer, err := s.lookupCustomer(ctx, invoice.CustomerCode)
	if err != nil {
		return nil, err
	}

	details, err := s.priceDetails(ctx, req.Details)
	if err != nil {
		return nil, err
	}
	if err := invoice.SetDetails(details); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice, customer.Name)
	return &response, nil
}

// Delete removes an invoice and all of its detail lines
func (s *InvoiceService) Delete(ctx context.Context, code string) error {
	canonical, err := shared.NormalizeCode(code)
	if err != nil {
		return shared.NewDomainError("INVALID_CODE", "Invoice code cannot be empty")
	}

	return s.invoiceRepo.Delete(ctx, canonical)
}

// lookupCustomer resolves a referenced customer, reporting which reference
// was missing
func (s *InvoiceService) lookupCustomer(ctx context.Context, code string) (*partner.Customer, error) {
	customer, err := s.customerRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Customer %s does not exist", code))
		}
		return nil, err
	}
	return customer, nil
}

// priceDetails builds the detail set, pricing each line from the current
// catalog
func (s *InvoiceService) priceDetails(ctx context.Context, reqs []InvoiceDetailRequest) ([]billing.InvoiceDetail, error) {
	if len(reqs) == 0 {
		return nil, shared.NewDomainError("INVALID_DETAILS", "Invoice must have at least one detail line")
	}

	details := make([]billing.InvoiceDetail, 0, len(reqs))
	for _, dr := range reqs {
		productCode, err := shared.NormalizeCode(dr.ProductCode)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product code cannot be empty")
		}

		product, err := s.productRepo.FindByCode(ctx, productCode)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product %s does not exist", productCode))
			}
			return nil, err
		}

		detail, err := billing.NewInvoiceDetail(product.Code, dr.Quantity, product.Price)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

// customerNames resolves display names for the distinct customers referenced
// by the given invoices
func (s *InvoiceService) customerNames(ctx context.Context, invoices []billing.Invoice) (map[string]string, error) {
	if len(invoices) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(invoices))
	codes := make([]string, 0, len(invoices))
	for i := range invoices {
		if _, ok := seen[invoices[i].CustomerCode]; ok {
			continue
		}
		seen[invoices[i].CustomerCode] = struct{}{}
		codes = append(codes, invoices[i].CustomerCode)
	}

	customers, err := s.customerRepo.FindByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(customers))
	for i := range customers {
		names[customers[i].Code] = customers[i].Name
	}
	return names, nil
}
