package repository

import (
	"context"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
)

// MovementFilter filtros opcionales del listado de movimientos.
type MovementFilter struct {
	CompanyID string
	ProductID string
	Type      string
	From      *time.Time
	To        *time.Time // exclusivo
	Limit     int
	Offset    int
}

// StockMovementRepository puerto del ledger de stock (solo inserción y lectura).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// List devuelve la página pedida (más recientes primero) y el total sin paginar.
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, int, error)
}
