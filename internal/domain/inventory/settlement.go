package inventory

import "github.com/shopspring/decimal"

// Sentido de la liquidación de un cambio.
const (
	SettlementCustomerOwes = "CUSTOMER_OWES"
	SettlementRefundDue    = "REFUND_DUE"
	SettlementEven         = "EVEN"
)

// SettlementInput datos de precio de un cambio. AdditionalPayment es opcional.
type SettlementInput struct {
	ReturnUnitPrice   decimal.Decimal
	ReturnQuantity    decimal.Decimal
	ExchangeUnitPrice decimal.Decimal
	ExchangeQuantity  decimal.Decimal
	AdditionalPayment *decimal.Decimal
}

// Settlement resultado de la liquidación. Shortfall y Change solo se llenan cuando el cliente debe
// y se informó un pago adicional; nunca se descartan en silencio.
type Settlement struct {
	ReturnTotal   decimal.Decimal
	ExchangeTotal decimal.Decimal
	Delta         decimal.Decimal // ExchangeTotal - ReturnTotal
	AmountDue     decimal.Decimal // lo que debe el cliente (delta > 0)
	RefundDue     decimal.Decimal // lo que se le devuelve al cliente (delta < 0)
	Shortfall     *decimal.Decimal
	Change        *decimal.Decimal
}

// Direction indica quién debe a quién.
func (s Settlement) Direction() string {
	switch {
	case s.Delta.IsPositive():
		return SettlementCustomerOwes
	case s.Delta.IsNegative():
		return SettlementRefundDue
	default:
		return SettlementEven
	}
}

// CalculateSettlement calcula la diferencia de precio de un cambio. Función pura, sin I/O.
func CalculateSettlement(in SettlementInput) Settlement {
	s := Settlement{
		ReturnTotal:   in.ReturnUnitPrice.Mul(in.ReturnQuantity),
		ExchangeTotal: in.ExchangeUnitPrice.Mul(in.ExchangeQuantity),
	}
	s.Delta = s.ExchangeTotal.Sub(s.ReturnTotal)

	switch {
	case s.Delta.IsPositive():
		s.AmountDue = s.Delta
		if in.AdditionalPayment != nil {
			shortfall := decimal.Max(decimal.Zero, s.Delta.Sub(*in.AdditionalPayment))
			change := decimal.Max(decimal.Zero, in.AdditionalPayment.Sub(s.Delta))
			s.Shortfall = &shortfall
			s.Change = &change
		}
	case s.Delta.IsNegative():
		s.RefundDue = s.Delta.Abs()
	}
	return s
}
