package dto

import (
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// CustomerDTO identidad del cliente en una venta.
type CustomerDTO struct {
	Name     string `json:"name" validate:"omitempty,max=200"`
	Document string `json:"document" validate:"omitempty,max=50"`
	Phone    string `json:"phone" validate:"omitempty,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	ProductID     string          `json:"product_id" validate:"required"`
	Type          string          `json:"type" validate:"required,oneof=SALE SERVICE"`
	Quantity      decimal.Decimal `json:"quantity"`
	Customer      CustomerDTO     `json:"customer"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,max=100"`
	SellerName    string          `json:"seller_name" validate:"omitempty,max=200"`
	Observations  string          `json:"observations" validate:"omitempty,max=1000"`
}

// CreateReturnRequest body para POST /api/sales/returns.
type CreateReturnRequest struct {
	SaleID            string           `json:"sale_id" validate:"required"`
	Type              string           `json:"type" validate:"required,oneof=RETURN REFUND EXCHANGE"`
	Quantity          decimal.Decimal  `json:"quantity"`
	ReturnAction      string           `json:"return_action" validate:"omitempty,oneof=RESTOCK MAINTENANCE"`
	RefundAmount      *decimal.Decimal `json:"refund_amount,omitempty" validate:"omitempty,decimal_positive"`
	ExchangeProductID string           `json:"exchange_product_id"`
	ExchangeQuantity  decimal.Decimal  `json:"exchange_quantity"`
	AdditionalPayment *decimal.Decimal `json:"additional_payment,omitempty"`
	PaymentMethod     string           `json:"payment_method" validate:"omitempty,max=100"`
	SellerName        string           `json:"seller_name" validate:"omitempty,max=200"`
	Observations      string           `json:"observations" validate:"omitempty,max=1000"`
}

// SaleListRequest query de GET /api/sales.
type SaleListRequest struct {
	PageRequest
	ProductID string `query:"product_id"`
	Type      string `query:"type" validate:"omitempty,oneof=SALE SERVICE RETURN REFUND EXCHANGE"`
	From      string `query:"from"`
	To        string `query:"to"`
}

// CustomerSearchRequest query de GET /api/sales/customers.
type CustomerSearchRequest struct {
	Name     string `query:"name"`
	Document string `query:"document"`
	Phone    string `query:"phone"`
	Email    string `query:"email"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=50"`
}

// SaleResponse salida de una fila de venta.
type SaleResponse struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	UserID            string           `json:"user_id"`
	Type              string           `json:"type"`
	Quantity          decimal.Decimal  `json:"quantity"`
	UnitPrice         decimal.Decimal  `json:"unit_price"`
	Total             decimal.Decimal  `json:"total"`
	Customer          CustomerDTO      `json:"customer"`
	PaymentMethod     string           `json:"payment_method,omitempty"`
	ReturnAction      *string          `json:"return_action,omitempty"`
	RelatedSaleID     *string          `json:"related_sale_id,omitempty"`
	ExchangeProductID *string          `json:"exchange_product_id,omitempty"`
	ExchangeQuantity  *decimal.Decimal `json:"exchange_quantity,omitempty"`
	Observations      string           `json:"observations,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// SaleResultResponse venta creada más las unidades vendidas.
type SaleResultResponse struct {
	Sale  SaleResponse   `json:"sale"`
	Units []UnitResponse `json:"units"`
}

// SettlementResponse liquidación de un cambio. Shortfall/Change solo cuando el cliente debe y pagó algo.
type SettlementResponse struct {
	Direction     string           `json:"direction"`
	ReturnTotal   decimal.Decimal  `json:"return_total"`
	ExchangeTotal decimal.Decimal  `json:"exchange_total"`
	Delta         decimal.Decimal  `json:"delta"`
	AmountDue     decimal.Decimal  `json:"amount_due"`
	RefundDue     decimal.Decimal  `json:"refund_due"`
	Shortfall     *decimal.Decimal `json:"shortfall,omitempty"`
	Change        *decimal.Decimal `json:"change,omitempty"`
}

// ReturnResultResponse filas escritas por una devolución, reembolso o cambio.
type ReturnResultResponse struct {
	Sale           SaleResponse        `json:"sale"`
	ReturnedUnits  []UnitResponse      `json:"returned_units"`
	ExchangeSale   *SaleResponse       `json:"exchange_sale,omitempty"`
	ExchangeUnits  []UnitResponse      `json:"exchange_units,omitempty"`
	SettlementSale *SaleResponse       `json:"settlement_sale,omitempty"`
	Settlement     *SettlementResponse `json:"settlement,omitempty"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ToSaleResponse convierte la entidad.
func ToSaleResponse(s *entity.Sale) SaleResponse {
	return SaleResponse{
		ID:        s.ID,
		ProductID: s.ProductID,
		UserID:    s.UserID,
		Type:      s.Type,
		Quantity:  s.Quantity,
		UnitPrice: s.UnitPrice,
		Total:     s.Total,
		Customer: CustomerDTO{
			Name:     s.Customer.Name,
			Document: s.Customer.Document,
			Phone:    s.Customer.Phone,
			Email:    s.Customer.Email,
		},
		PaymentMethod:     s.PaymentMethod,
		ReturnAction:      s.ReturnAction,
		RelatedSaleID:     s.RelatedSaleID,
		ExchangeProductID: s.ExchangeProductID,
		ExchangeQuantity:  s.ExchangeQuantity,
		Observations:      s.Observations,
		CreatedAt:         s.CreatedAt,
	}
}

// ToSaleResponses convierte una lista.
func ToSaleResponses(list []*entity.Sale) []SaleResponse {
	out := make([]SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, ToSaleResponse(s))
	}
	return out
}

// ToSaleResponsePtr convierte una fila opcional.
func ToSaleResponsePtr(s *entity.Sale) *SaleResponse {
	if s == nil {
		return nil
	}
	r := ToSaleResponse(s)
	return &r
}

// ToSettlementResponse convierte la liquidación.
func ToSettlementResponse(s *inventory.Settlement) *SettlementResponse {
	if s == nil {
		return nil
	}
	return &SettlementResponse{
		Direction:     s.Direction(),
		ReturnTotal:   s.ReturnTotal,
		ExchangeTotal: s.ExchangeTotal,
		Delta:         s.Delta,
		AmountDue:     s.AmountDue,
		RefundDue:     s.RefundDue,
		Shortfall:     s.Shortfall,
		Change:        s.Change,
	}
}
