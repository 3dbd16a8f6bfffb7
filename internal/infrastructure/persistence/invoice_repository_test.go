package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/store/backend/internal/domain/billing"
	"github.com/store/backend/internal/domain/shared"
)

// newMockInvoiceRepository creates a GormInvoiceRepository with a mocked SQL connection
func newMockInvoiceRepository(t *testing.T) (*GormInvoiceRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormInvoiceRepository(gormDB), mock, mockDB
}

func testInvoice(t *testing.T) *billing.Invoice {
	t.Helper()

	invoice, err := billing.NewInvoice("INV001", "CUST001")
	require.NoError(t, err)

	detail, err := billing.NewInvoiceDetail("PROD001", 3, decimal.NewFromInt(10))
	require.NoError(t, err)

	require.NoError(t, invoice.SetDetails([]billing.InvoiceDetail{*detail}))
	return invoice
}

func TestGormInvoiceRepository_FindByCode(t *testing.T) {
	t.Run("finds invoice with details", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		issuedAt := time.Now()

		headerRows := sqlmock.NewRows([]string{"code", "customer_code", "issued_at", "total"}).
			AddRow("INV001", "CUST001", issuedAt, decimal.NewFromInt(30))
		detailRows := sqlmock.NewRows([]string{"id", "invoice_code", "product_code", "quantity", "line_total"}).
			AddRow(1, "INV001", "PROD001", 3, decimal.NewFromInt(30))

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("INV001", 1).
			WillReturnRows(headerRows)
		mock.ExpectQuery(`SELECT \* FROM "invoice_details" WHERE .*invoice_code.*`).
			WithArgs("INV001").
			WillReturnRows(detailRows)

		invoice, err := repo.FindByCode(context.Background(), "INV001")

		require.NoError(t, err)
		assert.Equal(t, "INV001", invoice.Code)
		assert.Equal(t, "CUST001", invoice.CustomerCode)
		require.Len(t, invoice.Details, 1)
		assert.Equal(t, "PROD001", invoice.Details[0].ProductCode)
		assert.True(t, invoice.Total.Equal(decimal.NewFromInt(30)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing invoice", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("MISSING", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		invoice, err := repo.FindByCode(context.Background(), "MISSING")

		assert.Nil(t, invoice)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_Create(t *testing.T) {
	t.Run("inserts header and details in one transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoice := testInvoice(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "invoices"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "invoice_details"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := repo.Create(context.Background(), invoice)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when detail insert fails", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoice := testInvoice(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "invoices"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "invoice_details"`).
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := repo.Create(context.Background(), invoice)

		require.Error(t, err)
		var persistErr *shared.PersistenceError
		assert.ErrorAs(t, err, &persistErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports duplicate invoice code", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoice := testInvoice(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "invoices"`).
			WillReturnError(gorm.ErrDuplicatedKey)
		mock.ExpectRollback()

		err := repo.Create(context.Background(), invoice)

		assert.Equal(t, shared.ErrAlreadyExists, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_Update(t *testing.T) {
	t.Run("replaces details and updates header in one transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoice := testInvoice(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "invoice_details" WHERE invoice_code = \$1`).
			WithArgs("INV001").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "invoice_details"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		mock.ExpectCommit()

		err := repo.Update(context.Background(), invoice)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and reports not found for missing header", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoice := testInvoice(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "invoice_details" WHERE invoice_code = \$1`).
			WithArgs("INV001").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Update(context.Background(), invoice)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when reinsert fails", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoice := testInvoice(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "invoice_details" WHERE invoice_code = \$1`).
			WithArgs("INV001").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "invoice_details"`).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := repo.Update(context.Background(), invoice)

		require.Error(t, err)
		var persistErr *shared.PersistenceError
		assert.ErrorAs(t, err, &persistErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_Delete(t *testing.T) {
	t.Run("deletes details then header in one transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "invoice_details" WHERE invoice_code = \$1`).
			WithArgs("INV001").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM "invoices" WHERE code = \$1`).
			WithArgs("INV001").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Delete(context.Background(), "INV001")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and reports not found for missing invoice", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "invoice_details" WHERE invoice_code = \$1`).
			WithArgs("MISSING").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "invoices" WHERE code = \$1`).
			WithArgs("MISSING").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(context.Background(), "MISSING")

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_CountByCustomerCode(t *testing.T) {
	repo, mock, mockDB := newMockInvoiceRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE customer_code = \$1`).
		WithArgs("CUST001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountByCustomerCode(context.Background(), "CUST001")

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInvoiceRepository_CountDetailsByProductCode(t *testing.T) {
	repo, mock, mockDB := newMockInvoiceRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "invoice_details" WHERE product_code = \$1`).
		WithArgs("PROD001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err := repo.CountDetailsByProductCode(context.Background(), "PROD001")

	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
