package inventory

import (
	"context"
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

// MaxBatchSize límite de movimientos por lote.
const MaxBatchSize = 500

// MovementUseCase ledger de stock: registra movimientos IN/OUT de forma transaccional con bloqueo
// de fila (SELECT FOR UPDATE) y Commit/Rollback, individuales o en lote todo-o-nada.
type MovementUseCase struct {
	txRunner     TxRunner
	movementRepo repository.StockMovementRepository
	notifier     StockNotifier
	log          zerolog.Logger
	tracer       trace.Tracer
	recorded     metric.Int64Counter
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(
	txRunner TxRunner,
	movementRepo repository.StockMovementRepository,
	notifier StockNotifier,
	log zerolog.Logger,
	tel telemetry.Telemetry,
) *MovementUseCase {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &MovementUseCase{
		txRunner:     txRunner,
		movementRepo: movementRepo,
		notifier:     notifier,
		log:          log.With().Str("component", "stock_ledger").Logger(),
		tracer:       tel.Tracer,
		recorded:     telemetry.Counter(tel.Meter, "inventory.movements.recorded", "movimientos de stock confirmados"),
	}
}

// MovementInputDTO entrada para registrar un movimiento. UnitCost es opcional y solo aplica a IN:
// si viene, recalcula el costo promedio ponderado del producto.
type MovementInputDTO struct {
	CompanyID string
	UserID    string
	ProductID string
	Type      string
	Quantity  decimal.Decimal
	Reason    string
	UnitCost  *decimal.Decimal
}

// BatchItemDTO un movimiento dentro de un lote.
type BatchItemDTO struct {
	ProductID string
	Type      string
	Quantity  decimal.Decimal
	Reason    string
	UnitCost  *decimal.Decimal
}

func validateMovement(productID, movType string, quantity decimal.Decimal, unitCost *decimal.Decimal) error {
	if productID == "" {
		return domain.NewInvalidState("product_id es requerido")
	}
	if !entity.IsValidMovementType(movType) {
		return domain.NewInvalidState("tipo de movimiento inválido: %q", movType)
	}
	if !quantity.IsPositive() {
		return domain.NewInvalidState("la cantidad debe ser mayor que cero")
	}
	if unitCost != nil && unitCost.IsNegative() {
		return domain.NewInvalidState("el costo unitario no puede ser negativo")
	}
	return nil
}

// checkBulkProduct rechaza servicios y productos con unidades: su stock solo cambia vía ventas/unidades.
func checkBulkProduct(ctx context.Context, repos TxRepos, product *entity.Product) error {
	if product.IsService {
		return domain.NewInvalidState("el producto %s es un servicio y no maneja stock", product.ID)
	}
	tracked, err := IsUnitTracked(ctx, repos, product.ID)
	if err != nil {
		return err
	}
	if tracked {
		return domain.NewInvalidState("el producto %s usa unidades con código de barras; el stock cambia vía unidades y ventas", product.ID)
	}
	return nil
}

// applyUnitCost recalcula el costo promedio ponderado antes de una entrada.
func applyUnitCost(ctx context.Context, repos TxRepos, product *entity.Product, quantity decimal.Decimal, unitCost *decimal.Decimal) error {
	if unitCost == nil {
		return nil
	}
	newCost := inventory.WeightedAverageCost(product.CurrentStock, product.CostPrice, quantity, *unitCost)
	if err := repos.Products.UpdateCost(ctx, product.ID, newCost); err != nil {
		return err
	}
	product.CostPrice = &newCost
	return nil
}

// RecordMovement inicia una transacción, bloquea el producto, verifica suficiencia en OUT,
// escribe el movimiento y ajusta el stock. Commit o Rollback completo.
func (uc *MovementUseCase) RecordMovement(ctx context.Context, input MovementInputDTO) (_ *entity.StockMovement, err error) {
	ctx, span := uc.tracer.Start(ctx, "inventory.RecordMovement", trace.WithAttributes(
		attribute.String("product_id", input.ProductID),
		attribute.String("movement_type", input.Type),
	))
	defer func() { telemetry.End(span, err) }()

	if err = validateMovement(input.ProductID, input.Type, input.Quantity, input.UnitCost); err != nil {
		return nil, err
	}

	now := time.Now()
	var mov *entity.StockMovement
	var changes ChangeSet
	err = uc.txRunner.Run(ctx, func(repos TxRepos) error {
		product, err := LockProduct(ctx, repos, input.CompanyID, input.ProductID)
		if err != nil {
			return err
		}
		if err := checkBulkProduct(ctx, repos, product); err != nil {
			return err
		}
		if input.Type == entity.MovementTypeOUT && product.CurrentStock.LessThan(input.Quantity) {
			return domain.NewInsufficientStock(product.ID, input.Quantity, product.CurrentStock)
		}
		if input.Type == entity.MovementTypeIN {
			if err := applyUnitCost(ctx, repos, product, input.Quantity, input.UnitCost); err != nil {
				return err
			}
		}
		mov, err = RecordMovementInTx(ctx, repos, product, input.Type, input.Quantity, input.Reason, input.UserID, now)
		if err != nil {
			return err
		}
		changes.Track(product, "movement", now)
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("product_id", input.ProductID).Str("type", input.Type).Msg("movimiento rechazado")
		return nil, err
	}

	uc.recorded.Add(ctx, 1, metric.WithAttributes(attribute.String("type", input.Type)))
	uc.notifier.NotifyStockChanged(ctx, changes.List())
	uc.log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", mov.ProductID).
		Str("type", mov.Type).
		Str("quantity", mov.Quantity.String()).
		Msg("movimiento registrado")
	return mov, nil
}

// CreateBatch valida TODOS los movimientos contra el stock proyectado antes de aplicar cualquiera
// (leer todo, luego escribir todo) dentro de una sola transacción. Si uno solo dejaría stock
// negativo, el lote completo falla sin efectos parciales.
func (uc *MovementUseCase) CreateBatch(ctx context.Context, companyID, userID string, items []BatchItemDTO) (_ []*entity.StockMovement, err error) {
	ctx, span := uc.tracer.Start(ctx, "inventory.CreateBatch", trace.WithAttributes(
		attribute.Int("batch_size", len(items)),
	))
	defer func() { telemetry.End(span, err) }()

	if len(items) == 0 {
		return nil, domain.NewInvalidState("el lote está vacío")
	}
	if len(items) > MaxBatchSize {
		return nil, domain.NewInvalidState("el lote supera el máximo de %d movimientos", MaxBatchSize)
	}
	productIDs := make([]string, 0, len(items))
	for i, it := range items {
		if err = validateMovement(it.ProductID, it.Type, it.Quantity, it.UnitCost); err != nil {
			return nil, domain.NewInvalidState("movimiento %d: %s", i+1, err.Error())
		}
		productIDs = append(productIDs, it.ProductID)
	}

	now := time.Now()
	movements := make([]*entity.StockMovement, 0, len(items))
	var changes ChangeSet
	err = uc.txRunner.Run(ctx, func(repos TxRepos) error {
		products, err := LockProducts(ctx, repos, companyID, productIDs)
		if err != nil {
			return err
		}
		for _, p := range products {
			if err := checkBulkProduct(ctx, repos, p); err != nil {
				return err
			}
		}

		// Fase 1: proyección completa del lote sobre el stock bloqueado.
		projected := make(map[string]decimal.Decimal, len(products))
		for id, p := range products {
			projected[id] = p.CurrentStock
		}
		for _, it := range items {
			current := projected[it.ProductID]
			if it.Type == entity.MovementTypeOUT {
				if current.LessThan(it.Quantity) {
					return domain.NewInsufficientStock(it.ProductID, it.Quantity, current)
				}
				projected[it.ProductID] = current.Sub(it.Quantity)
				continue
			}
			projected[it.ProductID] = current.Add(it.Quantity)
		}

		// Fase 2: escrituras.
		for _, it := range items {
			product := products[it.ProductID]
			if it.Type == entity.MovementTypeIN {
				if err := applyUnitCost(ctx, repos, product, it.Quantity, it.UnitCost); err != nil {
					return err
				}
			}
			mov, err := RecordMovementInTx(ctx, repos, product, it.Type, it.Quantity, it.Reason, userID, now)
			if err != nil {
				return err
			}
			movements = append(movements, mov)
			changes.Track(product, "batch", now)
		}
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Int("batch_size", len(items)).Msg("lote de movimientos rechazado")
		return nil, err
	}

	uc.recorded.Add(ctx, int64(len(movements)), metric.WithAttributes(attribute.String("type", "batch")))
	uc.notifier.NotifyStockChanged(ctx, changes.List())
	uc.log.Info().Int("batch_size", len(movements)).Msg("lote de movimientos registrado")
	return movements, nil
}

// ListMovements lista movimientos (más recientes primero) con filtros opcionales. Solo lectura.
func (uc *MovementUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	if filter.Type != "" && !entity.IsValidMovementType(filter.Type) {
		return nil, 0, domain.NewInvalidState("tipo de movimiento inválido: %q", filter.Type)
	}
	filter.Limit, filter.Offset = NormalizePage(filter.Limit, filter.Offset)
	return uc.movementRepo.List(ctx, filter)
}

// NormalizePage aplica límite por defecto 20, máximo 100 y offset no negativo.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
