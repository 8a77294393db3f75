package repository

import (
	"context"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SaleFilter filtros opcionales del listado de ventas.
type SaleFilter struct {
	CompanyID string
	ProductID string
	Type      string
	From      *time.Time
	To        *time.Time // exclusivo
	Limit     int
	Offset    int
}

// CustomerCriteria búsqueda parcial (sin distinguir mayúsculas) por identidad del cliente.
type CustomerCriteria struct {
	CompanyID string
	Name      string
	Document  string
	Phone     string
	Email     string
	Limit     int
}

// SaleRepository puerto de persistencia de transacciones de venta.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// SumReturnedQuantity suma las cantidades RETURN/EXCHANGE ya registradas contra una venta original.
	SumReturnedQuantity(ctx context.Context, originalSaleID string) (decimal.Decimal, error)
	// SumRefundedAmount suma los totales REFUND (reembolsos y diferencias de cambio) contra una venta original.
	SumRefundedAmount(ctx context.Context, originalSaleID string) (decimal.Decimal, error)
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, int, error)
	// FindByCustomer devuelve ventas originales (SALE/SERVICE) que coinciden con el criterio, más recientes primero.
	FindByCustomer(ctx context.Context, criteria CustomerCriteria) ([]*entity.Sale, error)
}
