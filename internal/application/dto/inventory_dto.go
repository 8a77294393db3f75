package dto

import (
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Type      string           `json:"type" validate:"required,oneof=IN OUT"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Reason    string           `json:"reason" validate:"omitempty,max=500"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

// BatchMovementRequest body para POST /api/inventory/movements/batch.
type BatchMovementRequest struct {
	Movements []RegisterMovementRequest `json:"movements" validate:"required,min=1,max=500,dive"`
}

// MovementListRequest query de GET /api/inventory/movements.
type MovementListRequest struct {
	PageRequest
	ProductID string `query:"product_id"`
	Type      string `query:"type" validate:"omitempty,oneof=IN OUT"`
	From      string `query:"from"` // YYYY-MM-DD
	To        string `query:"to"`   // YYYY-MM-DD, inclusive
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason,omitempty"`
	UserID    string          `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ToMovementResponse convierte la entidad.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		Reason:    m.Reason,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
	}
}

// ToMovementResponses convierte una lista.
func ToMovementResponses(list []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out
}
