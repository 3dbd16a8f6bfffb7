package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/store/backend/internal/domain/billing"
	"github.com/store/backend/internal/domain/catalog"
	"github.com/store/backend/internal/domain/partner"
	"github.com/store/backend/internal/domain/shared"
)

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByCode(ctx context.Context, code string) (*billing.Invoice, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountByCustomerCode(ctx context.Context, customerCode string) (int64, error) {
	args := m.Called(ctx, customerCode)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountDetailsByProductCode(ctx context.Context, productCode string) (int64, error) {
	args := m.Called(ctx, productCode)
	return args.Get(0).(int64), args.Error(1)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByCode(ctx context.Context, code string) (*partner.Customer, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByCodes(ctx context.Context, codes []string) ([]partner.Customer, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type invoiceServiceMocks struct {
	invoiceRepo  *MockInvoiceRepository
	customerRepo *MockCustomerRepository
	productRepo  *MockProductRepository
}

func newInvoiceService() (*InvoiceService, invoiceServiceMocks) {
	mocks := invoiceServiceMocks{
		invoiceRepo:  new(MockInvoiceRepository),
		customerRepo: new(MockCustomerRepository),
		productRepo:  new(MockProductRepository),
	}
	return NewInvoiceService(mocks.invoiceRepo, mocks.customerRepo, mocks.productRepo), mocks
}

func testCustomer(t *testing.T) *partner.Customer {
	t.Helper()
	customer, err := partner.NewCustomer("CUST001", "Nguyen Van A", "0912345678")
	require.NoError(t, err)
	return customer
}

func testProduct(t *testing.T, code string, price int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(code, "Product "+code, decimal.NewFromInt(price))
	require.NoError(t, err)
	return product
}

func TestInvoiceService_Create(t *testing.T) {
	t.Run("prices details from the catalog", func(t *testing.T) {
		service, mocks := newInvoiceService()

		mocks.invoiceRepo.On("ExistsByCode", mock.Anything, "INV001").Return(false, nil)
		mocks.customerRepo.On("FindByCode", mock.Anything, "CUST001").Return(testCustomer(t), nil)
		mocks.productRepo.On("FindByCode", mock.Anything, "PROD001").Return(testProduct(t, "PROD001", 10), nil)
		mocks.productRepo.On("FindByCode", mock.Anything, "PROD002").Return(testProduct(t, "PROD002", 7), nil)
		mocks.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

		resp, err := service.Create(context.Background(), CreateInvoiceRequest{
			Code:         "inv001",
			CustomerCode: "cust001",
			Details: []InvoiceDetailRequest{
				{ProductCode: "PROD001", Quantity: 3},
				{ProductCode: "prod002", Quantity: 2},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "INV001", resp.Code)
		assert.Equal(t, "CUST001", resp.CustomerCode)
		assert.Equal(t, "Nguyen Van A", resp.CustomerName)
		require.Len(t, resp.Details, 2)
		assert.True(t, resp.Details[0].LineTotal.Equal(decimal.NewFromInt(30)))
		assert.True(t, resp.Details[1].LineTotal.Equal(decimal.NewFromInt(14)))
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(44)))
		mocks.invoiceRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate invoice code", func(t *testing.T) {
		service, mocks := newInvoiceService()

		mocks.invoiceRepo.On("ExistsByCode", mock.Anything, "INV001").Return(true, nil)

		_, err := service.Create(context.Background(), CreateInvoiceRequest{
			Code:         "INV001",
			CustomerCode: "CUST001",
			Details:      []InvoiceDetailRequest{{ProductCode: "PROD001", Quantity: 1}},
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		mocks.invoiceRepo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects missing customer", func(t *testing.T) {
		service, mocks := newInvoiceService()

		mocks.invoiceRepo.On("ExistsByCode", mock.Anything, "INV001").Return(false, nil)
		mocks.customerRepo.On("FindByCode", mock.Anything, "GHOST").Return(nil, shared.ErrNotFound)

		_, err := service.Create(context.Background(), CreateInvoiceRequest{
			Code:         "INV001",
			CustomerCode: "GHOST",
			Details:      []InvoiceDetailRequest{{ProductCode: "PROD001", Quantity: 1}},
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
		assert.Contains(t, domainErr.Message, "GHOST")
		mocks.invoiceRepo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects missing product", func(t *testing.T) {
		service, mocks := newInvoiceService()

		mocks.invoiceRepo.On("ExistsByCode", mock.Anything, "INV001").Return(false, nil)
		mocks.customerRepo.On("FindByCode", mock.Anything, "CUST001").Return(testCustomer(t), nil)
		mocks.productRepo.On("FindByCode", mock.Anything, "GHOST").Return(nil, shared.ErrNotFound)

		_, err := service.Create(context.Background(), CreateInvoiceRequest{
			Code:         "INV001",
			CustomerCode: "CUST001",
			Details:      []InvoiceDetailRequest{{ProductCode: "GHOST", Quantity: 1}},
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
		assert.Contains(t, domainErr.Message, "GHOST")
		mocks.invoiceRepo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		service, mocks := newInvoiceService()

		mocks.invoiceRepo.On("ExistsByCode", mock.Anything, "INV001").Return(false, nil)
		mocks.customerRepo.On("FindByCode", mock.Anything, "CUST001").Return(testCustomer(t), nil)
		mocks.productRepo.On("FindByCode", mock.Anything, "PROD001").Return(testProduct(t, "PROD001", 10), nil)

		_, err := service.Create(context.Background(), CreateInvoiceRequest{
			Code:         "INV001",
			CustomerCode: "CUST001",
			Details:      []InvoiceDetailRequest{{ProductCode: "PROD001", Quantity: 0}},
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
	})

	t.Run("propagates storage failure", func(t *testing.T) {
		service, mocks := newInvoiceService()

		mocks.invoiceRepo.On("ExistsByCode", mock.Anything, "INV001").Return(false, nil)
		mocks.customerRepo.On("FindByCode", mock.Anything, "CUST001").Return(testCustomer(t), nil)
		mocks.productRepo.On("FindByCode", mock.Anything, "PROD001").Return(testProduct(t, "PROD001", 10), nil)
		persistErr := shared.NewPersistenceError("invoice create", errors.New("disk full"))
		mocks.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(persistErr)

		_, err := service.Create(context.Background(), CreateInvoiceRequest{
			Code:         "INV001",
			CustomerCode: "CUST001",
			Details:      []InvoiceDetailRequest{{ProductCode: "PROD001", Quantity: 1}},
		})

		assert.Equal(t, persistErr, err)
	})
}

func TestInvoiceService_Update(t *testing.T) {
	existingInvoice := func(t *testing.T) *billing.Invoice {
		t.Helper()
		invoice, err := billing.NewInvoice("INV001", "CUST001")
		require.NoError(t, err)
		detail, err := billing.NewInvoiceDetail("PROD001", 1, decimal.NewFromInt(10))
		require.NoError(t, err)
		require.NoError(t, invoice.SetDetails([]billing.InvoiceDetail{*detail}))
		return invoice
	}

	t.Run("rejects code mismatch", func(t *testing.T) {
		service, mocks := newInvoiceService()

		_, err := service.Update(context.Background(), "INV001", UpdateInvoiceRequest{
			Code:         "INV002",
			CustomerCode: "CUST001",
			Details:      []InvoiceDetailRequest{{ProductCode: "PROD001", Quantity: 1}},
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CODE_MISMATCH", domainErr.Code)
		mocks.invoiceRepo.AssertNotCalled(t, "Update")
	})

	t.Run("accepts non-canonical body code for the same invoice", func(t *testing.T) {
		service, mocks := newInvoiceService()

		mocks.invoiceRepo.On("FindByCode", mock.Anything, "INV001").Return(existingInvoice(t), nil)
		mocks.customerRepo.On("FindByCode", mock.Anything, "CUST001").Return(testCustomer(t), nil)
		mocks.productRepo.On("FindByCode", mock.Anything, "PROD001").Return(testProduct(t, "PROD001", 10), nil)
		mocks.invoiceRepo.On("Update", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

		_, err := service.Update(context.Background(), "INV001", UpdateInvoiceRequest{
			Code:         " inv001 ",
			CustomerCode: "CUST001",
			Details:      []InvoiceDetailRequest{{ProductCode: "PROD001", Quantity: 1}},
		})

		assert.NoError(t, err)
	})

	t.Run("re-prices details and refreshes issue date", func(t *testing.T) {
		service, mocks := newInvoiceService()

		invoice := existingInvoice(t)
		staleIssuedAt := time.Now().Add(-24 * time.Hour)
		invoice.IssuedAt = staleIssuedAt

		mocks.invoiceRepo.On("FindByCode", mock.Anything, "INV001").Return(invoice, nil)
		mocks.customerRepo.On("FindByCode", mock.Anything, "CUST002").Return(testCustomer(t), nil)
		// Catalog price changed from 10 to 25 since the invoice was created
		mocks.productRepo.On("FindByCode", mock.Anything, "PROD001").Return(testProduct(t, "PROD001", 25), nil)
		mocks.invoiceRepo.On("Update", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

		resp, err := service.Update(context.Background(), "INV001", UpdateInvoiceRequest{
			Code:         "INV001",
			CustomerCode: "CUST002",
			Details:      []InvoiceDetailRequest{{ProductCode: "PROD001", Quantity: 2}},
		})

		require.NoError(t, err)
		assert.Equal(t, "CUST002", resp.CustomerCode)
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(50)), "total reflects the current catalog price")
		assert.True(t, resp.IssuedAt.After(staleIssuedAt), "issue date is refreshed on every write")
		mocks.invoiceRepo.AssertExpectations(t)
	})

	t.Run("propagates missing invoice", func(t *testing.T) {
		service, mocks := newInvoiceService()

		mocks.invoiceRepo.On("FindByCode", mock.Anything, "MISSING").Return(nil, shared.ErrNotFound)

		_, err := service.Update(context.Background(), "MISSING", UpdateInvoiceRequest{
			Code:         "MISSING",
			CustomerCode: "CUST001",
			Details:      []InvoiceDetailRequest{{ProductCode: "PROD001", Quantity: 1}},
		})

		assert.Equal(t, shared.ErrNotFound, err)
	})
}

func TestInvoiceService_Delete(t *testing.T) {
	t.Run("deletes invoice", func(t *testing.T) {
		service, mocks := newInvoiceService()

		mocks.invoiceRepo.On("Delete", mock.Anything, "INV001").Return(nil)

		err := service.Delete(context.Background(), " inv001 ")

		assert.NoError(t, err)
		mocks.invoiceRepo.AssertExpectations(t)
	})

	t.Run("propagates not found", func(t *testing.T) {
		service, mocks := newInvoiceService()

		mocks.invoiceRepo.On("Delete", mock.Anything, "MISSING").Return(shared.ErrNotFound)

		err := service.Delete(context.Background(), "MISSING")

		assert.Equal(t, shared.ErrNotFound, err)
	})
}

func TestInvoiceService_List(t *testing.T) {
	service, mocks := newInvoiceService()

	invoice, err := billing.NewInvoice("INV001", "CUST001")
	require.NoError(t, err)
	detail, err := billing.NewInvoiceDetail("PROD001", 3, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, invoice.SetDetails([]billing.InvoiceDetail{*detail}))

	customer := testCustomer(t)

	mocks.invoiceRepo.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).
		Return([]billing.Invoice{*invoice}, nil)
	mocks.invoiceRepo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).
		Return(int64(1), nil)
	mocks.customerRepo.On("FindByCodes", mock.Anything, []string{"CUST001"}).
		Return([]partner.Customer{*customer}, nil)

	invoices, total, err := service.List(context.Background(), InvoiceListFilter{Page: 1, PageSize: 20})

	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Nguyen Van A", invoices[0].CustomerName)
	assert.True(t, invoices[0].Total.Equal(decimal.NewFromInt(30)))
}

func TestInvoiceService_GetByCode(t *testing.T) {
	service, mocks := newInvoiceService()

	invoice, err := billing.NewInvoice("INV001", "CUST001")
	require.NoError(t, err)
	detail, err := billing.NewInvoiceDetail("PROD001", 3, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, invoice.SetDetails([]billing.InvoiceDetail{*detail}))

	mocks.invoiceRepo.On("FindByCode", mock.Anything, "INV001").Return(invoice, nil)
	mocks.customerRepo.On("FindByCode", mock.Anything, "CUST001").Return(testCustomer(t), nil)

	resp, err := service.GetByCode(context.Background(), "inv001")

	require.NoError(t, err)
	assert.Equal(t, "INV001", resp.Code)
	assert.Equal(t, "Nguyen Van A", resp.CustomerName)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, 3, resp.Details[0].Quantity)
}

func TestInvoiceService_GetByCode_CustomerLookupFails(t *testing.T) {
	service, mocks := newInvoiceService()

	invoice, err := billing.NewInvoice("INV001", "CUST001")
	require.NoError(t, err)
	detail, err := billing.NewInvoiceDetail("PROD001", 3, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, invoice.SetDetails([]billing.InvoiceDetail{*detail}))

	mocks.invoiceRepo.On("FindByCode", mock.Anything, "INV001").Return(invoice, nil)
	mocks.customerRepo.On("FindByCode", mock.Anything, "CUST001").
		Return(nil, shared.NewPersistenceError("find customer", errors.New("connection refused")))

	resp, err := service.GetByCode(context.Background(), "INV001")

	require.NoError(t, err, "invoice read must not fail on name enrichment")
	assert.Equal(t, "INV001", resp.Code)
	assert.Equal(t, "", resp.CustomerName)
}
