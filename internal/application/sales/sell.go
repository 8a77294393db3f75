package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/application/inventory"
	"github.com/Ey-luccas/luanova-sub000/internal/domain"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// sellInTx descuenta quantity del producto ya bloqueado. Con unidades reserva y marca exactamente
// quantity unidades disponibles (las unidades mandan aunque current_stock parezca suficiente);
// sin unidades verifica current_stock. En ambos casos escribe un OUT en el ledger.
func sellInTx(
	ctx context.Context,
	repos inventory.TxRepos,
	product *entity.Product,
	sale *entity.Sale,
	details entity.UnitSaleDetails,
	now time.Time,
) ([]*entity.ProductUnit, error) {
	quantity := sale.Quantity
	tracked, err := inventory.IsUnitTracked(ctx, repos, product.ID)
	if err != nil {
		return nil, err
	}

	var units []*entity.ProductUnit
	if tracked {
		if !quantity.IsInteger() {
			return nil, domain.NewInvalidState("el producto %s se vende por unidades; la cantidad debe ser entera", product.ID)
		}
		n := int(quantity.IntPart())
		units, err = repos.Units.LockAvailable(ctx, product.ID, n)
		if err != nil {
			return nil, fmt.Errorf("lock available units: %w", err)
		}
		if len(units) < n {
			return nil, domain.NewInsufficientStock(product.ID, quantity, decimal.NewFromInt(int64(len(units))))
		}
		saleID := sale.ID
		for _, u := range units {
			if err := inventory.MarkSoldInTx(ctx, repos, u, &saleID, details, now); err != nil {
				return nil, err
			}
		}
	}
	if product.CurrentStock.LessThan(quantity) {
		return nil, domain.NewInsufficientStock(product.ID, quantity, product.CurrentStock)
	}
	if _, err := inventory.RecordMovementInTx(ctx, repos, product, entity.MovementTypeOUT, quantity,
		"venta "+sale.ID, sale.UserID, now); err != nil {
		return nil, err
	}
	return units, nil
}

// unitDetails datos de venta que se copian a cada unidad vendida.
func unitDetails(sellerName string, sale *entity.Sale) entity.UnitSaleDetails {
	return entity.UnitSaleDetails{
		SellerName:       sellerName,
		BuyerDescription: sale.Customer.Name,
		PaymentMethods:   sale.PaymentMethod,
		SaleDescription:  sale.Observations,
	}
}
