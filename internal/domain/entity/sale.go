package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de venta.
const (
	SaleTypeSale     = "SALE"
	SaleTypeService  = "SERVICE"
	SaleTypeReturn   = "RETURN"
	SaleTypeRefund   = "REFUND"
	SaleTypeExchange = "EXCHANGE"
)

// IsOriginType indica si t puede ser venta original de una devolución (SALE o SERVICE).
func IsOriginType(t string) bool {
	return t == SaleTypeSale || t == SaleTypeService
}

// IsReturnType indica si t es de la familia devolución (RETURN, REFUND, EXCHANGE).
func IsReturnType(t string) bool {
	return t == SaleTypeReturn || t == SaleTypeRefund || t == SaleTypeExchange
}

// Customer identidad del cliente que se guarda junto a cada venta (sin tabla propia).
type Customer struct {
	Name     string
	Document string
	Phone    string
	Email    string
}

// Sale fila de transacción de punto de venta. Las filas RETURN/REFUND/EXCHANGE guardan
// RelatedSaleID con la venta original resuelta (sin FK).
type Sale struct {
	ID                string
	CompanyID         string
	ProductID         string
	UserID            string
	Type              string
	Quantity          decimal.Decimal
	UnitPrice         decimal.Decimal
	Total             decimal.Decimal
	Customer          Customer
	PaymentMethod     string
	ReturnAction      *string
	RelatedSaleID     *string
	ExchangeProductID *string
	ExchangeQuantity  *decimal.Decimal
	Observations      string
	CreatedAt         time.Time
}
