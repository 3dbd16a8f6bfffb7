package catalog

import (
	"context"

	"github.com/store/backend/internal/domain/billing"
	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/shared"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	invoiceRepo billing.InvoiceRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, invoiceRepo billing.InvoiceRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		invoiceRepo: invoiceRepo,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Code, req.Name, req.Price)
	if err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsByCode(ctx, product.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this code already exists")
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByCode retrieves a product by code
func (s *ProductService) GetByCode(ctx context.Context, code string) (*ProductResponse, error) {
	canonical, err := shared.NormalizeCode(code)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}

	product, err := s.productRepo.FindByCode(ctx, canonical)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with pagination and the total match count
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.Search = filter.Search

	products, err := s.productRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.productRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses, total, nil
}

// Update updates a product's name and unit price. Existing invoice lines keep
// the totals they were priced with; only future invoice writes see the new
// price.
func (s *ProductService) Update(ctx context.Context, code string, req UpdateProductRequest) (*ProductResponse, error) {
	canonical, err := shared.NormalizeCode(code)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}

	product, err := s.productRepo.FindByCode(ctx, canonical)
	if err != nil {
		return nil, err
	}

	if err := product.Update(req.Name, req.Price); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product. Products referenced by invoice lines cannot be
// deleted.
func (s *ProductService) Delete(ctx context.Context, code string) error {
	canonical, err := shared.NormalizeCode(code)
	if err != nil {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}

	exists, err := s.productRepo.ExistsByCode(ctx, canonical)
	if err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound
	}

	detailCount, err := s.invoiceRepo.CountDetailsByProductCode(ctx, canonical)
	if err != nil {
		return err
	}
	if detailCount > 0 {
		return shared.NewDomainError("HAS_DEPENDENTS", "Product is referenced by invoices and cannot be deleted")
	}

	return s.productRepo.Delete(ctx, canonical)
}
