package repository

import (
	"context"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
)

// ProductUnitRepository puerto del registro de unidades con código de barras.
type ProductUnitRepository interface {
	// CreateBatch inserta las unidades y completa su ID interno.
	CreateBatch(ctx context.Context, units []*entity.ProductUnit) error
	GetByID(ctx context.Context, id int64) (*entity.ProductUnit, error)
	// GetForUpdate bloquea la fila de la unidad.
	GetForUpdate(ctx context.Context, id int64) (*entity.ProductUnit, error)
	Update(ctx context.Context, unit *entity.ProductUnit) error
	// LastBarcode devuelve el código de la unidad más reciente del producto (ID descendente); "" si no hay.
	LastBarcode(ctx context.Context, productID string) (string, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
	CountAvailable(ctx context.Context, productID string) (int, error)
	// LockAvailable selecciona y bloquea hasta limit unidades disponibles, más antiguas primero.
	LockAvailable(ctx context.Context, productID string, limit int) ([]*entity.ProductUnit, error)
	// LockSoldBySale selecciona y bloquea hasta limit unidades vendidas y no devueltas de una venta.
	LockSoldBySale(ctx context.Context, saleID string, limit int) ([]*entity.ProductUnit, error)
	CountSoldBySale(ctx context.Context, saleID string) (int, error)
	ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.ProductUnit, error)
	ListByDate(ctx context.Context, companyID string, from, to time.Time) ([]*entity.ProductUnit, error)
	// ListCreationDates agrupa por día calendario en loc.
	ListCreationDates(ctx context.Context, companyID string, loc *time.Location) ([]entity.UnitCreationDate, error)
}
