package dto

import (
	"github.com/shopspring/decimal"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
)

// CreateTransactionRequest body para POST /api/v1/transactions.
type CreateTransactionRequest struct {
	Date      string          `json:"date"` // YYYY-MM-DD
	Type      string          `json:"type"` // INPUT, OUTPUT
	ProductID int64           `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

// TransactionResponse salida de una transacción enriquecida con el producto.
type TransactionResponse struct {
	ID        int64            `json:"id"`
	Date      string           `json:"date"`
	Type      string           `json:"type"`
	ProductID int64            `json:"product_id"`
	Product   *ProductResponse `json:"product,omitempty"`
	Price     decimal.Decimal  `json:"price"`
	Quantity  int64            `json:"quantity"`
}

// ToTransactionResponse convierte la entidad al DTO de salida.
func ToTransactionResponse(t *entity.Transaction, product *entity.Product) TransactionResponse {
	return TransactionResponse{
		ID:        t.ID,
		Date:      t.Date.Format(DateLayout),
		Type:      t.Type,
		ProductID: t.ProductID,
		Product:   ToProductResponse(product),
		Price:     t.Price,
		Quantity:  t.Quantity,
	}
}
