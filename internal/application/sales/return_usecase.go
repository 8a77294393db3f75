package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/application/inventory"
	"github.com/Ey-luccas/luanova-sub000/internal/domain"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	domaininv "github.com/Ey-luccas/luanova-sub000/internal/domain/inventory"
	"github.com/Ey-luccas/luanova-sub000/pkg/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CreateReturnInput datos de una devolución, reembolso o cambio contra una venta original.
type CreateReturnInput struct {
	CompanyID         string
	UserID            string
	OriginalSaleID    string
	Type              string
	Quantity          decimal.Decimal
	ReturnAction      string
	RefundAmount      *decimal.Decimal
	ExchangeProductID string
	ExchangeQuantity  decimal.Decimal
	AdditionalPayment *decimal.Decimal
	PaymentMethod     string
	SellerName        string
	Observations      string
}

// ReturnResult filas escritas por la operación. ExchangeSale, SettlementSale y Settlement
// solo aplican a EXCHANGE; SettlementSale es nil cuando la diferencia es cero.
type ReturnResult struct {
	Sale           *entity.Sale
	ReturnedUnits  []*entity.ProductUnit
	ExchangeSale   *entity.Sale
	ExchangeUnits  []*entity.ProductUnit
	SettlementSale *entity.Sale
	Settlement     *domaininv.Settlement
}

func validateReturn(input *CreateReturnInput) error {
	if input.OriginalSaleID == "" {
		return domain.NewInvalidState("sale_id de la venta original es requerido")
	}
	switch input.Type {
	case entity.SaleTypeReturn:
		if !input.Quantity.IsPositive() {
			return domain.NewInvalidState("la cantidad a devolver debe ser mayor que cero")
		}
		if !entity.IsValidReturnAction(input.ReturnAction) {
			return domain.NewInvalidState("return_action debe ser RESTOCK o MAINTENANCE")
		}
	case entity.SaleTypeRefund:
		if input.RefundAmount == nil || !input.RefundAmount.IsPositive() {
			return domain.NewInvalidState("refund_amount debe ser mayor que cero")
		}
	case entity.SaleTypeExchange:
		if !input.Quantity.IsPositive() {
			return domain.NewInvalidState("la cantidad a devolver debe ser mayor que cero")
		}
		if input.ExchangeProductID == "" {
			return domain.NewInvalidState("exchange_product_id es requerido")
		}
		if !input.ExchangeQuantity.IsPositive() {
			return domain.NewInvalidState("exchange_quantity debe ser mayor que cero")
		}
		if input.ReturnAction != "" && input.ReturnAction != entity.ReturnActionRestock {
			return domain.NewInvalidState("un cambio siempre reingresa la mercadería (RESTOCK)")
		}
		if input.AdditionalPayment != nil && input.AdditionalPayment.IsNegative() {
			return domain.NewInvalidState("additional_payment no puede ser negativo")
		}
		input.ReturnAction = entity.ReturnActionRestock
	default:
		return domain.NewInvalidState("tipo de devolución inválido: %q", input.Type)
	}
	return nil
}

// resolveOriginal busca la venta original por ID. No hay FK: la referencia se valida aquí.
func resolveOriginal(ctx context.Context, repos inventory.TxRepos, companyID, saleID string) (*entity.Sale, error) {
	original, err := repos.Sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if original == nil || original.CompanyID != companyID {
		return nil, domain.NewNotFound("venta", saleID)
	}
	if !entity.IsOriginType(original.Type) {
		return nil, domain.NewInvalidState("la venta %s es de tipo %s; solo se devuelven ventas SALE o SERVICE", original.ID, original.Type)
	}
	return original, nil
}

// CreateReturn ejecuta RETURN, REFUND o EXCHANGE contra la venta original como una unidad de trabajo.
func (uc *SalesUseCase) CreateReturn(ctx context.Context, input CreateReturnInput) (_ *ReturnResult, err error) {
	ctx, span := uc.tracer.Start(ctx, "sales.CreateReturn", trace.WithAttributes(
		attribute.String("original_sale_id", input.OriginalSaleID),
		attribute.String("sale_type", input.Type),
	))
	defer func() { telemetry.End(span, err) }()

	if err = validateReturn(&input); err != nil {
		return nil, err
	}

	now := time.Now()
	result := &ReturnResult{}
	var changes inventory.ChangeSet
	err = uc.txRunner.Run(ctx, func(repos inventory.TxRepos) error {
		original, err := resolveOriginal(ctx, repos, input.CompanyID, input.OriginalSaleID)
		if err != nil {
			return err
		}
		if input.Type == entity.SaleTypeRefund {
			result.Sale, err = uc.refundInTx(ctx, repos, input, original, now)
			return err
		}
		if original.Type != entity.SaleTypeSale {
			return domain.NewInvalidState("la venta %s es un servicio; solo admite reembolso", original.ID)
		}
		return uc.returnGoodsInTx(ctx, repos, input, original, now, result, &changes)
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("original_sale_id", input.OriginalSaleID).Str("type", input.Type).Msg("devolución rechazada")
		return nil, err
	}

	uc.committed.Add(ctx, 1, metric.WithAttributes(attribute.String("type", input.Type)))
	uc.notifier.NotifyStockChanged(ctx, changes.List())
	ev := uc.log.Info().
		Str("sale_id", result.Sale.ID).
		Str("original_sale_id", input.OriginalSaleID).
		Str("type", input.Type).
		Str("quantity", result.Sale.Quantity.String())
	if result.Settlement != nil {
		ev = ev.Str("settlement", result.Settlement.Direction()).Str("delta", result.Settlement.Delta.String())
	}
	ev.Msg("devolución registrada")
	return result, nil
}

func (uc *SalesUseCase) refundInTx(
	ctx context.Context,
	repos inventory.TxRepos,
	input CreateReturnInput,
	original *entity.Sale,
	now time.Time,
) (*entity.Sale, error) {
	amount := *input.RefundAmount
	// El lock del producto serializa devoluciones concurrentes sobre la misma venta.
	if _, err := inventory.LockProduct(ctx, repos, input.CompanyID, original.ProductID); err != nil {
		return nil, err
	}
	refunded, err := repos.Sales.SumRefundedAmount(ctx, original.ID)
	if err != nil {
		return nil, fmt.Errorf("sum refunded amount: %w", err)
	}
	if pending := original.Total.Sub(refunded); amount.GreaterThan(pending) {
		return nil, domain.NewInvalidState("el reembolso (%s) supera lo pendiente de la venta %s (%s)",
			amount.String(), original.ID, pending.String())
	}
	sale := newRelatedSale(input, original, now)
	sale.Type = entity.SaleTypeRefund
	sale.Quantity = decimal.NewFromInt(1)
	sale.UnitPrice = amount
	sale.Total = amount
	if err := repos.Sales.Create(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// returnGoodsInTx RETURN y EXCHANGE: valida lo devolvible, escribe la fila, devuelve unidades,
// reingresa stock si corresponde y, en un cambio, vende el reemplazo y liquida la diferencia.
func (uc *SalesUseCase) returnGoodsInTx(
	ctx context.Context,
	repos inventory.TxRepos,
	input CreateReturnInput,
	original *entity.Sale,
	now time.Time,
	result *ReturnResult,
	changes *inventory.ChangeSet,
) error {
	isExchange := input.Type == entity.SaleTypeExchange
	productIDs := []string{original.ProductID}
	if isExchange {
		productIDs = append(productIDs, input.ExchangeProductID)
	}
	products, err := inventory.LockProducts(ctx, repos, input.CompanyID, productIDs)
	if err != nil {
		return err
	}
	product := products[original.ProductID]

	var replacement *entity.Product
	if isExchange {
		replacement = products[input.ExchangeProductID]
		if replacement.IsService {
			return domain.NewInvalidState("el producto de cambio %s es un servicio", replacement.ID)
		}
		if replacement.CurrentStock.LessThan(input.ExchangeQuantity) {
			return domain.NewInsufficientStock(replacement.ID, input.ExchangeQuantity, replacement.CurrentStock)
		}
	}

	soldUnits, err := repos.Units.CountSoldBySale(ctx, original.ID)
	if err != nil {
		return fmt.Errorf("count sold units: %w", err)
	}
	returned, err := repos.Sales.SumReturnedQuantity(ctx, original.ID)
	if err != nil {
		return fmt.Errorf("sum returned quantity: %w", err)
	}
	returnable := original.Quantity.Sub(returned)
	if soldUnits > 0 {
		returnable = decimal.Min(returnable, decimal.NewFromInt(int64(soldUnits)))
	}
	if input.Quantity.GreaterThan(returnable) {
		return domain.NewInvalidState("la cantidad a devolver (%s) supera lo pendiente de la venta %s (%s)",
			input.Quantity.String(), original.ID, returnable.String())
	}
	restock := input.ReturnAction == entity.ReturnActionRestock
	if soldUnits == 0 && restock {
		tracked, err := inventory.IsUnitTracked(ctx, repos, product.ID)
		if err != nil {
			return err
		}
		if tracked {
			return domain.NewInvalidState("la venta %s no tiene unidades asociadas; no se puede reingresar stock de un producto por unidades", original.ID)
		}
	}

	action := input.ReturnAction
	sale := newRelatedSale(input, original, now)
	sale.Type = input.Type
	sale.ProductID = original.ProductID
	sale.Quantity = input.Quantity
	sale.UnitPrice = original.UnitPrice
	sale.Total = original.UnitPrice.Mul(input.Quantity)
	sale.ReturnAction = &action
	if isExchange {
		exchangeProductID := input.ExchangeProductID
		exchangeQuantity := input.ExchangeQuantity
		sale.ExchangeProductID = &exchangeProductID
		sale.ExchangeQuantity = &exchangeQuantity
	}
	if err := repos.Sales.Create(ctx, sale); err != nil {
		return err
	}
	result.Sale = sale

	if soldUnits > 0 {
		if !input.Quantity.IsInteger() {
			return domain.NewInvalidState("la venta %s es por unidades; la cantidad debe ser entera", original.ID)
		}
		units, err := repos.Units.LockSoldBySale(ctx, original.ID, int(input.Quantity.IntPart()))
		if err != nil {
			return fmt.Errorf("lock sold units: %w", err)
		}
		for _, u := range units {
			if err := inventory.ReturnUnitInTx(ctx, repos, u, action, now); err != nil {
				return err
			}
		}
		result.ReturnedUnits = units
	}
	if restock {
		if _, err := inventory.RecordMovementInTx(ctx, repos, product, entity.MovementTypeIN, input.Quantity,
			"devolución venta "+original.ID, input.UserID, now); err != nil {
			return err
		}
		changes.Track(product, "return", now)
	}

	if !isExchange {
		return nil
	}
	return uc.exchangeInTx(ctx, repos, input, original, replacement, now, result, changes)
}

func (uc *SalesUseCase) exchangeInTx(
	ctx context.Context,
	repos inventory.TxRepos,
	input CreateReturnInput,
	original *entity.Sale,
	replacement *entity.Product,
	now time.Time,
	result *ReturnResult,
	changes *inventory.ChangeSet,
) error {
	price := replacement.PriceOrZero()
	exchangeSale := newRelatedSale(input, original, now)
	exchangeSale.Type = entity.SaleTypeSale
	exchangeSale.ProductID = replacement.ID
	exchangeSale.Quantity = input.ExchangeQuantity
	exchangeSale.UnitPrice = price
	exchangeSale.Total = price.Mul(input.ExchangeQuantity)
	if err := repos.Sales.Create(ctx, exchangeSale); err != nil {
		return err
	}
	units, err := sellInTx(ctx, repos, replacement, exchangeSale, unitDetails(input.SellerName, exchangeSale), now)
	if err != nil {
		return err
	}
	changes.Track(replacement, "exchange", now)
	result.ExchangeSale = exchangeSale
	result.ExchangeUnits = units

	settlement := domaininv.CalculateSettlement(domaininv.SettlementInput{
		ReturnUnitPrice:   original.UnitPrice,
		ReturnQuantity:    input.Quantity,
		ExchangeUnitPrice: price,
		ExchangeQuantity:  input.ExchangeQuantity,
		AdditionalPayment: input.AdditionalPayment,
	})
	result.Settlement = &settlement

	var row *entity.Sale
	switch settlement.Direction() {
	case domaininv.SettlementCustomerOwes:
		row = newRelatedSale(input, original, now)
		row.Type = entity.SaleTypeSale
		row.ProductID = replacement.ID
		row.Quantity = decimal.Zero
		row.Total = settlement.AmountDue
	case domaininv.SettlementRefundDue:
		row = newRelatedSale(input, original, now)
		row.Type = entity.SaleTypeRefund
		row.Quantity = decimal.NewFromInt(1)
		row.UnitPrice = settlement.RefundDue
		row.Total = settlement.RefundDue
	default:
		return nil
	}
	row.Observations = "diferencia de cambio " + result.Sale.ID
	if err := repos.Sales.Create(ctx, row); err != nil {
		return err
	}
	result.SettlementSale = row
	return nil
}

// newRelatedSale fila base de la familia devolución: comparte cliente y producto con la original
// y guarda la referencia resuelta.
func newRelatedSale(input CreateReturnInput, original *entity.Sale, now time.Time) *entity.Sale {
	originalID := original.ID
	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = original.PaymentMethod
	}
	return &entity.Sale{
		ID:            uuid.New().String(),
		CompanyID:     original.CompanyID,
		ProductID:     original.ProductID,
		UserID:        input.UserID,
		Customer:      original.Customer,
		PaymentMethod: paymentMethod,
		RelatedSaleID: &originalID,
		Observations:  input.Observations,
		CreatedAt:     now,
	}
}
