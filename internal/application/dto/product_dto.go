package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Referencia string          `json:"referencia" validate:"required,min=1,max=100"`
	Cor        string          `json:"cor" validate:"max=50"`
	X          decimal.Decimal `json:"x"`
	Y          decimal.Decimal `json:"y"`
	Rack       string          `json:"rack" validate:"max=50"`
	Acab       string          `json:"acab" validate:"max=50"`
	Obs        string          `json:"obs" validate:"max=500"`
	Marked     bool            `json:"marked"`
}

// UpdateProductRequest entrada para actualizar un producto. Los campos ausentes conservan su valor.
type UpdateProductRequest struct {
	Referencia *string          `json:"referencia" validate:"omitempty,min=1,max=100"`
	Cor        *string          `json:"cor" validate:"omitempty,max=50"`
	X          *decimal.Decimal `json:"x"`
	Y          *decimal.Decimal `json:"y"`
	Rack       *string          `json:"rack" validate:"omitempty,max=50"`
	Acab       *string          `json:"acab" validate:"omitempty,max=50"`
	Obs        *string          `json:"obs" validate:"omitempty,max=500"`
	Marked     *bool            `json:"marked"`
}

// ProductListQuery filtros de GET /products.
type ProductListQuery struct {
	Limit      int    `query:"limit" validate:"min=0,max=100"`
	Offset     int    `query:"offset" validate:"min=0"`
	Referencia string `query:"referencia"`
	Cor        string `query:"cor"`
	Rack       string `query:"rack"`
	Acab       string `query:"acab"`
	Marked     string `query:"marked" validate:"omitempty,oneof=true false"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID         string          `json:"id"`
	Referencia string          `json:"referencia"`
	Cor        string          `json:"cor"`
	X          decimal.Decimal `json:"x"`
	Y          decimal.Decimal `json:"y"`
	Rack       string          `json:"rack"`
	Acab       string          `json:"acab"`
	Obs        string          `json:"obs"`
	Marked     bool            `json:"marked"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
