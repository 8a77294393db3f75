package dto

import (
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
)

// CreateUnitsRequest body para POST /api/products/:id/units.
type CreateUnitsRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=1000"`
}

// SellUnitRequest body para POST /api/units/:id/sell.
type SellUnitRequest struct {
	SaleID           *string `json:"sale_id" validate:"omitempty,uuid"`
	SellerName       string  `json:"seller_name" validate:"omitempty,max=200"`
	BuyerDescription string  `json:"buyer_description" validate:"omitempty,max=500"`
	PaymentMethods   string  `json:"payment_methods" validate:"omitempty,max=200"`
	SaleDescription  string  `json:"sale_description" validate:"omitempty,max=500"`
}

// UnitResponse salida de una unidad.
type UnitResponse struct {
	ID               int64      `json:"id"`
	ProductID        string     `json:"product_id"`
	Barcode          string     `json:"barcode"`
	IsSold           bool       `json:"is_sold"`
	SoldAt           *time.Time `json:"sold_at,omitempty"`
	SaleID           *string    `json:"sale_id,omitempty"`
	SellerName       string     `json:"seller_name,omitempty"`
	BuyerDescription string     `json:"buyer_description,omitempty"`
	PaymentMethods   string     `json:"payment_methods,omitempty"`
	SaleDescription  string     `json:"sale_description,omitempty"`
	IsReturned       bool       `json:"is_returned"`
	ReturnAction     *string    `json:"return_action,omitempty"`
	ReturnedAt       *time.Time `json:"returned_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// UnitCreationDateResponse día con unidades creadas.
type UnitCreationDateResponse struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// ToUnitResponses convierte una lista de unidades.
func ToUnitResponses(list []*entity.ProductUnit) []UnitResponse {
	out := make([]UnitResponse, 0, len(list))
	for _, u := range list {
		out = append(out, UnitResponse{
			ID:               u.ID,
			ProductID:        u.ProductID,
			Barcode:          u.Barcode,
			IsSold:           u.IsSold,
			SoldAt:           u.SoldAt,
			SaleID:           u.SaleID,
			SellerName:       u.SellerName,
			BuyerDescription: u.BuyerDescription,
			PaymentMethods:   u.PaymentMethods,
			SaleDescription:  u.SaleDescription,
			IsReturned:       u.IsReturned,
			ReturnAction:     u.ReturnAction,
			ReturnedAt:       u.ReturnedAt,
			CreatedAt:        u.CreatedAt,
		})
	}
	return out
}
