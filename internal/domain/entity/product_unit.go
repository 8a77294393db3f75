package entity

import "time"

// Acciones posibles al devolver un producto.
const (
	ReturnActionRestock     = "RESTOCK"     // vuelve al inventario vendible
	ReturnActionMaintenance = "MAINTENANCE" // se aparta (reparación) sin afectar el stock
)

// IsValidReturnAction indica si a es RESTOCK o MAINTENANCE.
func IsValidReturnAction(a string) bool {
	return a == ReturnActionRestock || a == ReturnActionMaintenance
}

// ProductUnit unidad física individual de un producto, identificada por código de barras secuencial.
// ID es interno y creciente; se usa para ordenar y derivar la siguiente secuencia.
type ProductUnit struct {
	ID               int64
	ProductID        string
	CompanyID        string
	Barcode          string
	IsSold           bool
	SoldAt           *time.Time
	SaleID           *string
	SellerName       string
	BuyerDescription string
	PaymentMethods   string
	SaleDescription  string
	IsReturned       bool
	ReturnAction     *string
	ReturnedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsAvailable true si la unidad puede venderse (nunca vendida o reingresada al stock).
func (u *ProductUnit) IsAvailable() bool {
	return !u.IsSold && !u.IsReturned
}

// InCustomerHands true si la unidad fue vendida y no ha vuelto.
func (u *ProductUnit) InCustomerHands() bool {
	return u.IsSold && !u.IsReturned
}

// UnitSaleDetails datos de venta que se copian a la unidad al marcarla vendida.
type UnitSaleDetails struct {
	SellerName       string
	BuyerDescription string
	PaymentMethods   string
	SaleDescription  string
}

// UnitCreationDate día con unidades creadas y su cantidad.
type UnitCreationDate struct {
	Date  time.Time
	Count int
}
