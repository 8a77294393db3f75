package inventory

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/domain"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/inventory"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/repository"
	"github.com/Ey-luccas/luanova-sub000/pkg/telemetry"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// MaxUnitsPerCreation límite de unidades por llamada a CreateUnits.
const MaxUnitsPerCreation = 1000

// ReasonUnitCreation motivo del movimiento IN que acompaña la creación de unidades.
const ReasonUnitCreation = "creación de unidades"

// UnitUseCase registro de unidades con código de barras secuencial.
type UnitUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	unitRepo    repository.ProductUnitRepository
	notifier    StockNotifier
	log         zerolog.Logger
	tracer      trace.Tracer
	created     metric.Int64Counter
}

// NewUnitUseCase construye el caso de uso.
func NewUnitUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	unitRepo repository.ProductUnitRepository,
	notifier StockNotifier,
	log zerolog.Logger,
	tel telemetry.Telemetry,
) *UnitUseCase {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &UnitUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		unitRepo:    unitRepo,
		notifier:    notifier,
		log:         log.With().Str("component", "unit_registry").Logger(),
		tracer:      tel.Tracer,
		created:     telemetry.Counter(tel.Meter, "inventory.units.created", "unidades creadas"),
	}
}

// CreateUnitsInput entrada de CreateUnits.
type CreateUnitsInput struct {
	CompanyID string
	UserID    string
	ProductID string
	Quantity  int
}

// CreateUnits genera quantity códigos contiguos a partir del último emitido, inserta las unidades
// disponibles y registra un IN por la misma cantidad. Todo en una transacción.
func (uc *UnitUseCase) CreateUnits(ctx context.Context, input CreateUnitsInput) (_ []*entity.ProductUnit, err error) {
	ctx, span := uc.tracer.Start(ctx, "inventory.CreateUnits", trace.WithAttributes(
		attribute.String("product_id", input.ProductID),
		attribute.Int("quantity", input.Quantity),
	))
	defer func() { telemetry.End(span, err) }()

	if input.Quantity <= 0 {
		return nil, domain.NewInvalidState("la cantidad de unidades debe ser mayor que cero")
	}
	if input.Quantity > MaxUnitsPerCreation {
		return nil, domain.NewInvalidState("no se pueden crear más de %d unidades por vez", MaxUnitsPerCreation)
	}

	now := time.Now()
	var units []*entity.ProductUnit
	var changes ChangeSet
	err = uc.txRunner.Run(ctx, func(repos TxRepos) error {
		product, err := LockProduct(ctx, repos, input.CompanyID, input.ProductID)
		if err != nil {
			return err
		}
		if product.IsService {
			return domain.NewInvalidState("el producto %s es un servicio y no admite unidades", product.ID)
		}
		available, err := repos.Units.CountAvailable(ctx, product.ID)
		if err != nil {
			return fmt.Errorf("count available units: %w", err)
		}
		if !decimal.NewFromInt(int64(available)).Equal(product.CurrentStock) {
			return domain.NewInvalidState(
				"el producto %s tiene stock a granel (%s) distinto de sus unidades disponibles (%d)",
				product.ID, product.CurrentStock.String(), available)
		}

		last, err := repos.Units.LastBarcode(ctx, product.ID)
		if err != nil {
			return fmt.Errorf("last barcode: %w", err)
		}
		codes := inventory.NextBarcodes(inventory.BaseCode(product.ID, product.Barcode), last, input.Quantity)
		units = make([]*entity.ProductUnit, 0, len(codes))
		for _, code := range codes {
			units = append(units, &entity.ProductUnit{
				ProductID: product.ID,
				CompanyID: product.CompanyID,
				Barcode:   code,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		if err := repos.Units.CreateBatch(ctx, units); err != nil {
			return err
		}
		if _, err := RecordMovementInTx(ctx, repos, product, entity.MovementTypeIN,
			decimal.NewFromInt(int64(input.Quantity)), ReasonUnitCreation, input.UserID, now); err != nil {
			return err
		}
		changes.Track(product, "units_created", now)
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("product_id", input.ProductID).Int("quantity", input.Quantity).Msg("creación de unidades rechazada")
		return nil, err
	}

	uc.created.Add(ctx, int64(len(units)))
	uc.notifier.NotifyStockChanged(ctx, changes.List())
	uc.log.Info().
		Str("product_id", input.ProductID).
		Int("quantity", len(units)).
		Str("first_barcode", units[0].Barcode).
		Str("last_barcode", units[len(units)-1].Barcode).
		Msg("unidades creadas")
	return units, nil
}

// MarkSoldInTx marca la unidad como vendida y copia los datos de la venta.
// No toca stock ni ledger: lo hace quien orquesta la venta, una sola vez por venta.
func MarkSoldInTx(
	ctx context.Context,
	repos TxRepos,
	unit *entity.ProductUnit,
	saleID *string,
	details entity.UnitSaleDetails,
	now time.Time,
) error {
	if unit.IsSold {
		return domain.NewConflict("unidad", fmt.Sprintf("la unidad %s ya fue vendida", unit.Barcode))
	}
	if unit.IsReturned {
		return domain.NewConflict("unidad", fmt.Sprintf("la unidad %s está apartada por devolución", unit.Barcode))
	}
	unit.IsSold = true
	unit.SoldAt = &now
	unit.SaleID = saleID
	unit.SellerName = details.SellerName
	unit.BuyerDescription = details.BuyerDescription
	unit.PaymentMethods = details.PaymentMethods
	unit.SaleDescription = details.SaleDescription
	unit.UpdatedAt = now
	return repos.Units.Update(ctx, unit)
}

// ReturnUnitInTx aplica la devolución a una unidad en manos del cliente.
// RESTOCK la deja disponible otra vez (limpia la venta); MAINTENANCE la aparta como devuelta.
func ReturnUnitInTx(ctx context.Context, repos TxRepos, unit *entity.ProductUnit, action string, now time.Time) error {
	if !unit.InCustomerHands() {
		return domain.NewConflict("unidad", fmt.Sprintf("la unidad %s no está vendida", unit.Barcode))
	}
	if !entity.IsValidReturnAction(action) {
		return domain.NewInvalidState("acción de devolución inválida: %q", action)
	}
	a := action
	unit.ReturnAction = &a
	unit.ReturnedAt = &now
	unit.UpdatedAt = now
	switch action {
	case entity.ReturnActionRestock:
		unit.IsSold = false
		unit.IsReturned = false
		unit.SoldAt = nil
		unit.SaleID = nil
		unit.SellerName = ""
		unit.BuyerDescription = ""
		unit.PaymentMethods = ""
		unit.SaleDescription = ""
	default:
		unit.IsReturned = true
	}
	return repos.Units.Update(ctx, unit)
}

// MarkUnitSoldInput entrada de la venta directa de una unidad.
type MarkUnitSoldInput struct {
	CompanyID string
	UserID    string
	UnitID    int64
	SaleID    *string
	Details   entity.UnitSaleDetails
}

// MarkUnitSold vende una unidad suelta: la marca vendida, registra un OUT de 1 y descuenta el stock
// en la misma transacción. Si se informa SaleID debe ser una venta SALE del mismo producto.
func (uc *UnitUseCase) MarkUnitSold(ctx context.Context, input MarkUnitSoldInput) (_ *entity.ProductUnit, err error) {
	ctx, span := uc.tracer.Start(ctx, "inventory.MarkUnitSold", trace.WithAttributes(
		attribute.Int64("unit_id", input.UnitID),
	))
	defer func() { telemetry.End(span, err) }()

	unitRef := strconv.FormatInt(input.UnitID, 10)
	now := time.Now()
	var unit *entity.ProductUnit
	var changes ChangeSet
	err = uc.txRunner.Run(ctx, func(repos TxRepos) error {
		peek, err := repos.Units.GetByID(ctx, input.UnitID)
		if err != nil {
			return err
		}
		if peek == nil || peek.CompanyID != input.CompanyID {
			return domain.NewNotFound("unidad", unitRef)
		}
		// Producto primero, luego la unidad: mismo orden de bloqueo que las ventas.
		product, err := LockProduct(ctx, repos, input.CompanyID, peek.ProductID)
		if err != nil {
			return err
		}
		unit, err = repos.Units.GetForUpdate(ctx, input.UnitID)
		if err != nil {
			return err
		}
		if unit == nil {
			return domain.NewNotFound("unidad", unitRef)
		}
		if input.SaleID != nil {
			sale, err := repos.Sales.GetByID(ctx, *input.SaleID)
			if err != nil {
				return err
			}
			if sale == nil || sale.CompanyID != input.CompanyID {
				return domain.NewNotFound("venta", *input.SaleID)
			}
			if sale.Type != entity.SaleTypeSale || sale.ProductID != unit.ProductID {
				return domain.NewInvalidState("la venta %s no es una venta del producto %s", sale.ID, unit.ProductID)
			}
			sold, err := repos.Units.CountSoldBySale(ctx, sale.ID)
			if err != nil {
				return fmt.Errorf("count sold units: %w", err)
			}
			returned, err := repos.Sales.SumReturnedQuantity(ctx, sale.ID)
			if err != nil {
				return fmt.Errorf("sum returned quantity: %w", err)
			}
			if decimal.NewFromInt(int64(sold) + 1).Add(returned).GreaterThan(sale.Quantity) {
				return domain.NewConflict("venta", fmt.Sprintf("la venta %s ya tiene todas sus unidades", sale.ID))
			}
		}
		if err := MarkSoldInTx(ctx, repos, unit, input.SaleID, input.Details, now); err != nil {
			return err
		}
		one := decimal.NewFromInt(1)
		if product.CurrentStock.LessThan(one) {
			return domain.NewInsufficientStock(product.ID, one, product.CurrentStock)
		}
		if _, err := RecordMovementInTx(ctx, repos, product, entity.MovementTypeOUT, one,
			"venta de unidad "+unit.Barcode, input.UserID, now); err != nil {
			return err
		}
		changes.Track(product, "unit_sold", now)
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Int64("unit_id", input.UnitID).Msg("venta de unidad rechazada")
		return nil, err
	}

	uc.notifier.NotifyStockChanged(ctx, changes.List())
	uc.log.Info().Int64("unit_id", unit.ID).Str("barcode", unit.Barcode).Msg("unidad vendida")
	return unit, nil
}

// GetUnitsByProduct lista las unidades de un producto de la empresa.
func (uc *UnitUseCase) GetUnitsByProduct(ctx context.Context, companyID, productID string) ([]*entity.ProductUnit, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, domain.NewNotFound("producto", productID)
	}
	return uc.unitRepo.ListByProduct(ctx, companyID, productID)
}

// GetUnitsByDate lista las unidades creadas el día de day, cortado en la zona de day.
func (uc *UnitUseCase) GetUnitsByDate(ctx context.Context, companyID string, day time.Time) ([]*entity.ProductUnit, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return uc.unitRepo.ListByDate(ctx, companyID, from, from.AddDate(0, 0, 1))
}

// ListUnitCreationDates días (en time.Local, igual que parseDay) con unidades creadas, más recientes primero.
func (uc *UnitUseCase) ListUnitCreationDates(ctx context.Context, companyID string) ([]entity.UnitCreationDate, error) {
	return uc.unitRepo.ListCreationDates(ctx, companyID, time.Local)
}
