package inventory

import (
	"context"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Products  repository.ProductRepository
	Movements repository.StockMovementRepository
	Units     repository.ProductUnitRepository
	Sales     repository.SaleRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback y el estado queda exactamente como antes de la llamada.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// StockChange nivel de stock de un producto tras una transacción confirmada.
type StockChange struct {
	CompanyID    string          `json:"company_id"`
	ProductID    string          `json:"product_id"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	Reason       string          `json:"reason"`
	At           time.Time       `json:"at"`
}

// StockNotifier recibe los cambios de stock después del Commit (nunca dentro de la tx).
type StockNotifier interface {
	NotifyStockChanged(ctx context.Context, changes []StockChange)
}

// NopNotifier descarta las notificaciones.
type NopNotifier struct{}

// NotifyStockChanged no hace nada.
func (NopNotifier) NotifyStockChanged(context.Context, []StockChange) {}
