package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o servicio del catálogo de una empresa.
// CurrentStock solo cambia vía movimientos (ledger); UnitPrice y CostPrice pueden ser nulos.
type Product struct {
	ID             string
	CompanyID      string
	Name           string
	Barcode        string // base para los códigos de las unidades; vacío = PROD-{id}
	CurrentStock   decimal.Decimal
	UnitPrice      *decimal.Decimal
	CostPrice      *decimal.Decimal
	IsService      bool // los servicios nunca tienen stock ni unidades
	LastMovementAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PriceOrZero devuelve el precio de venta o 0 si no está definido.
func (p *Product) PriceOrZero() decimal.Decimal {
	if p.UnitPrice == nil {
		return decimal.Zero
	}
	return *p.UnitPrice
}
