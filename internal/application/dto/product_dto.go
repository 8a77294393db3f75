package dto

import (
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El stock inicial queda en 0 y sube vía movimientos o unidades.
type CreateProductRequest struct {
	Name      string           `json:"name" validate:"required,min=1,max=200"`
	Barcode   string           `json:"barcode" validate:"omitempty,max=100"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	CostPrice *decimal.Decimal `json:"cost_price"`
	IsService bool             `json:"is_service"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID             string           `json:"id"`
	CompanyID      string           `json:"company_id"`
	Name           string           `json:"name"`
	Barcode        string           `json:"barcode,omitempty"`
	CurrentStock   decimal.Decimal  `json:"current_stock"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	CostPrice      *decimal.Decimal `json:"cost_price"`
	IsService      bool             `json:"is_service"`
	LastMovementAt *time.Time       `json:"last_movement_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ToProductResponse convierte la entidad.
func ToProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:             p.ID,
		CompanyID:      p.CompanyID,
		Name:           p.Name,
		Barcode:        p.Barcode,
		CurrentStock:   p.CurrentStock,
		UnitPrice:      p.UnitPrice,
		CostPrice:      p.CostPrice,
		IsService:      p.IsService,
		LastMovementAt: p.LastMovementAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
