package dto

import (
	"github.com/shopspring/decimal"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
)

// ProductResponse datos de producto embebidos en transacciones y saldos.
type ProductResponse struct {
	ID         int64            `json:"id,omitempty"`
	Name       string           `json:"name"`
	CategoryID int64            `json:"category_id,omitempty"`
	Category   string           `json:"category,omitempty"`
	Unit       string           `json:"unit,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
}

// ToProductResponse convierte la entidad; nil devuelve nil.
func ToProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	out := &ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		CategoryID: p.CategoryID,
		Category:   p.Category,
		Unit:       p.Unit,
	}
	if !p.Price.IsZero() {
		price := p.Price
		out.Price = &price
	}
	return out
}
