package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa una pieza del inventario ubicada en un rack.
// X e Y son las dimensiones de la pieza (NUMERIC en la DB).
type Product struct {
	ID         string          `json:"id"`
	Referencia string          `json:"referencia"`
	Cor        string          `json:"cor"`
	X          decimal.Decimal `json:"x"`
	Y          decimal.Decimal `json:"y"`
	Rack       string          `json:"rack"`
	Acab       string          `json:"acab"` // acabado
	Obs        string          `json:"obs"`
	Marked     bool            `json:"marked"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Clone devuelve una copia independiente (snapshot) del producto.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// ProductFilter criterios opcionales de listado.
type ProductFilter struct {
	Referencia string
	Cor        string
	Rack       string
	Acab       string
	Marked     *bool
	Limit      int
	Offset     int
}
