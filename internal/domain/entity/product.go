package entity

import "github.com/shopspring/decimal"

// UnavailableProductName nombre usado cuando el directorio de productos no responde en lecturas.
const UnavailableProductName = "Unavailable Product Data"

// Product datos de un producto resueltos desde el servicio de productos (solo lectura aquí).
type Product struct {
	ID         int64
	Name       string
	CategoryID int64
	Category   string
	Unit       string
	Price      decimal.Decimal
}

// PlaceholderProduct devuelve el producto sustituto para lecturas degradadas.
func PlaceholderProduct(id int64) *Product {
	return &Product{ID: id, Name: UnavailableProductName}
}
