package repository

import (
	"context"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository puerto del catálogo de productos (colaborador externo del motor).
// El motor solo lee productos y muta CurrentStock, CostPrice y LastMovementAt.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// AdjustStock suma delta a current_stock y fija last_movement_at. Falla si el stock queda negativo.
	AdjustStock(ctx context.Context, id string, delta decimal.Decimal, at time.Time) error
	UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error
}
