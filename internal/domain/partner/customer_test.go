package partner

import (
	"testing"

	"github.com/store/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestNewCustomer(t *testing.T) {
	t.Run("creates customer with normalized code", func(t *testing.T) {
		customer, err := NewCustomer(" c1 ", "Nguyen Van A", "0912345678")

		assert.NoError(t, err)
		assert.Equal(t, "C1", customer.Code)
		assert.Equal(t, "Nguyen Van A", customer.Name)
		assert.Equal(t, "0912345678", customer.Phone)
	})

	t.Run("accepts international phone prefix", func(t *testing.T) {
		customer, err := NewCustomer("C2", "Tran Thi B", "+84912345678")

		assert.NoError(t, err)
		assert.Equal(t, "+84912345678", customer.Phone)
	})

	t.Run("phone is optional", func(t *testing.T) {
		customer, err := NewCustomer("C3", "Le Van C", "")

		assert.NoError(t, err)
		assert.Empty(t, customer.Phone)
	})

	t.Run("rejects empty code", func(t *testing.T) {
		_, err := NewCustomer("  ", "Name", "")

		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CODE", domainErr.Code)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewCustomer("C1", "  ", "")

		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_NAME", domainErr.Code)
	})

	t.Run("rejects malformed phone", func(t *testing.T) {
		_, err := NewCustomer("C1", "Name", "12345")

		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PHONE", domainErr.Code)
	})
}

func TestCustomerUpdate(t *testing.T) {
	t.Run("updates name and phone", func(t *testing.T) {
		customer, _ := NewCustomer("C1", "Old Name", "")

		err := customer.Update("New Name", "0987654321")

		assert.NoError(t, err)
		assert.Equal(t, "New Name", customer.Name)
		assert.Equal(t, "0987654321", customer.Phone)
	})

	t.Run("rejects invalid phone on update", func(t *testing.T) {
		customer, _ := NewCustomer("C1", "Name", "0912345678")

		err := customer.Update("Name", "not-a-phone")

		assert.Error(t, err)
		assert.Equal(t, "0912345678", customer.Phone)
	})
}
