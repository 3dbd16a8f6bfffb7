package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/store/backend/internal/domain/billing"
)

// InvoiceDetailRequest is one requested invoice line. The caller names a
// product and a quantity; pricing always comes from the catalog.
type InvoiceDetailRequest struct {
	ProductCode string `json:"product_code" binding:"required,min=1,max=50"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
}

// CreateInvoiceRequest represents a request to create a new invoice
type CreateInvoiceRequest struct {
	Code         string                 `json:"code" binding:"required,min=1,max=50"`
	CustomerCode string                 `json:"customer_code" binding:"required,min=1,max=50"`
	Details      []InvoiceDetailRequest `json:"details" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest represents a request to replace an invoice. Code must
// match the invoice being updated.
type UpdateInvoiceRequest struct {
	Code         string                 `json:"code" binding:"required,min=1,max=50"`
	CustomerCode string                 `json:"customer_code" binding:"required,min=1,max=50"`
	Details      []InvoiceDetailRequest `json:"details" binding:"required,min=1,dive"`
}

// InvoiceListFilter holds list query parameters
type InvoiceListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
}

// InvoiceDetailResponse represents an invoice line in API responses
type InvoiceDetailResponse struct {
	ProductCode string          `json:"product_code"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	Code         string                  `json:"code"`
	CustomerCode string                  `json:"customer_code"`
	CustomerName string                  `json:"customer_name,omitempty"`
	IssuedAt     time.Time               `json:"issued_at"`
	Total        decimal.Decimal         `json:"total"`
	Details      []InvoiceDetailResponse `json:"details"`
}

// ToInvoiceResponse converts a domain invoice to a response DTO
func ToInvoiceResponse(inv *billing.Invoice, customerName string) InvoiceResponse {
	details := make([]InvoiceDetailResponse, len(inv.Details))
	for i, d := range inv.Details {
		details[i] = InvoiceDetailResponse{
			ProductCode: d.ProductCode,
			Quantity:    d.Quantity,
			LineTotal:   d.LineTotal,
		}
	}

	return InvoiceResponse{
		Code:         inv.Code,
		CustomerCode: inv.CustomerCode,
		CustomerName: customerName,
		IssuedAt:     inv.IssuedAt,
		Total:        inv.Total,
		Details:      details,
	}
}
