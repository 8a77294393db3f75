package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
)

// StockMovement registro inmutable de un cambio de stock. Quantity siempre es positiva;
// el signo lo da Type (+IN, -OUT).
type StockMovement struct {
	ID        string
	ProductID string
	CompanyID string
	Type      string
	Quantity  decimal.Decimal
	Reason    string
	UserID    string
	CreatedAt time.Time
}

// Delta devuelve la cantidad con signo que el movimiento aplica al stock.
func (m *StockMovement) Delta() decimal.Decimal {
	if m.Type == MovementTypeOUT {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// IsValidMovementType indica si t es IN u OUT.
func IsValidMovementType(t string) bool {
	return t == MovementTypeIN || t == MovementTypeOUT
}
