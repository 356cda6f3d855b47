package dto

import "github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"

// StockKey identifica un saldo mensual: periodo YYYYMM + producto.
type StockKey struct {
	Period    string `json:"period"`
	ProductID int64  `json:"product_id"`
}

// StockResponse saldo mensual de un producto enriquecido con datos del producto.
type StockResponse struct {
	Key             StockKey         `json:"key"`
	Product         *ProductResponse `json:"product,omitempty"`
	PreviousBalance int64            `json:"previous_balance"`
	Inputs          int64            `json:"inputs"`
	Outputs         int64            `json:"outputs"`
	CurrentBalance  int64            `json:"current_balance"`
}

// StockUpdateRequest body para POST /api/v1/stocks.
type StockUpdateRequest struct {
	Key      StockKey `json:"key"`
	Type     string   `json:"type"`
	Quantity int64    `json:"quantity"`
}

// ToStockResponse convierte la entidad al DTO de salida.
func ToStockResponse(s *entity.StockPeriod, product *entity.Product) StockResponse {
	return StockResponse{
		Key:             StockKey{Period: s.Period.String(), ProductID: s.ProductID},
		Product:         ToProductResponse(product),
		PreviousBalance: s.PreviousBalance,
		Inputs:          s.Inputs,
		Outputs:         s.Outputs,
		CurrentBalance:  s.CurrentBalance,
	}
}
