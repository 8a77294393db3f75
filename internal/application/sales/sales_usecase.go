package sales

import (
	"context"
	"strings"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/application/inventory"
	"github.com/Ey-luccas/luanova-sub000/internal/domain"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/repository"
	"github.com/Ey-luccas/luanova-sub000/pkg/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultCustomerSearchLimit máximo de ventas devueltas por FindSalesByCustomer.
const DefaultCustomerSearchLimit = 50

// SalesUseCase motor de transacciones de punto de venta: venta, servicio, devolución, reembolso y cambio.
// Cada operación es una unidad de trabajo atómica sobre TxRunner.
type SalesUseCase struct {
	txRunner  TxRunner
	saleRepo  repository.SaleRepository
	notifier  inventory.StockNotifier
	log       zerolog.Logger
	tracer    trace.Tracer
	committed metric.Int64Counter
}

// TxRunner alias del puerto transaccional del inventario.
type TxRunner = inventory.TxRunner

// NewSalesUseCase construye el motor.
func NewSalesUseCase(
	txRunner TxRunner,
	saleRepo repository.SaleRepository,
	notifier inventory.StockNotifier,
	log zerolog.Logger,
	tel telemetry.Telemetry,
) *SalesUseCase {
	if notifier == nil {
		notifier = inventory.NopNotifier{}
	}
	return &SalesUseCase{
		txRunner:  txRunner,
		saleRepo:  saleRepo,
		notifier:  notifier,
		log:       log.With().Str("component", "sales_engine").Logger(),
		tracer:    tel.Tracer,
		committed: telemetry.Counter(tel.Meter, "sales.transactions.committed", "transacciones de venta confirmadas"),
	}
}

// CreateSaleInput datos de una venta SALE o SERVICE.
type CreateSaleInput struct {
	CompanyID     string
	UserID        string
	ProductID     string
	Type          string
	Quantity      decimal.Decimal
	Customer      entity.Customer
	PaymentMethod string
	SellerName    string
	Observations  string
}

// SaleResult venta creada y unidades vendidas (vacío para servicios y productos a granel).
type SaleResult struct {
	Sale  *entity.Sale
	Units []*entity.ProductUnit
}

// CreateSale valida producto y tipo, verifica suficiencia, reserva unidades y confirma la venta.
// SERVICE solo escribe la fila de venta.
func (uc *SalesUseCase) CreateSale(ctx context.Context, input CreateSaleInput) (_ *SaleResult, err error) {
	ctx, span := uc.tracer.Start(ctx, "sales.CreateSale", trace.WithAttributes(
		attribute.String("product_id", input.ProductID),
		attribute.String("sale_type", input.Type),
	))
	defer func() { telemetry.End(span, err) }()

	if !entity.IsOriginType(input.Type) {
		return nil, domain.NewInvalidState("tipo de venta inválido: %q", input.Type)
	}
	if input.ProductID == "" {
		return nil, domain.NewInvalidState("product_id es requerido")
	}
	quantity := input.Quantity
	if input.Type == entity.SaleTypeService && quantity.IsZero() {
		quantity = decimal.NewFromInt(1)
	}
	if !quantity.IsPositive() {
		return nil, domain.NewInvalidState("la cantidad debe ser mayor que cero")
	}

	now := time.Now()
	result := &SaleResult{}
	var changes inventory.ChangeSet
	err = uc.txRunner.Run(ctx, func(repos inventory.TxRepos) error {
		product, err := inventory.LockProduct(ctx, repos, input.CompanyID, input.ProductID)
		if err != nil {
			return err
		}
		if err := checkTypeMatchesProduct(input.Type, product); err != nil {
			return err
		}
		price := product.PriceOrZero()
		sale := &entity.Sale{
			ID:            uuid.New().String(),
			CompanyID:     input.CompanyID,
			ProductID:     product.ID,
			UserID:        input.UserID,
			Type:          input.Type,
			Quantity:      quantity,
			UnitPrice:     price,
			Total:         price.Mul(quantity),
			Customer:      input.Customer,
			PaymentMethod: input.PaymentMethod,
			Observations:  input.Observations,
			CreatedAt:     now,
		}
		if err := repos.Sales.Create(ctx, sale); err != nil {
			return err
		}
		result.Sale = sale
		if input.Type == entity.SaleTypeService {
			return nil
		}
		units, err := sellInTx(ctx, repos, product, sale, unitDetails(input.SellerName, sale), now)
		if err != nil {
			return err
		}
		result.Units = units
		changes.Track(product, "sale", now)
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("product_id", input.ProductID).Str("type", input.Type).Msg("venta rechazada")
		return nil, err
	}

	uc.committed.Add(ctx, 1, metric.WithAttributes(attribute.String("type", input.Type)))
	uc.notifier.NotifyStockChanged(ctx, changes.List())
	uc.log.Info().
		Str("sale_id", result.Sale.ID).
		Str("product_id", result.Sale.ProductID).
		Str("type", result.Sale.Type).
		Str("quantity", result.Sale.Quantity.String()).
		Int("units", len(result.Units)).
		Msg("venta registrada")
	return result, nil
}

func checkTypeMatchesProduct(saleType string, product *entity.Product) error {
	if saleType == entity.SaleTypeSale && product.IsService {
		return domain.NewInvalidState("el producto %s es un servicio; use el tipo SERVICE", product.ID)
	}
	if saleType == entity.SaleTypeService && !product.IsService {
		return domain.NewInvalidState("el producto %s no es un servicio; use el tipo SALE", product.ID)
	}
	return nil
}

// ListSales lista ventas de la empresa, más recientes primero.
func (uc *SalesUseCase) ListSales(ctx context.Context, filter repository.SaleFilter) ([]*entity.Sale, int, error) {
	if filter.Type != "" && !entity.IsOriginType(filter.Type) && !entity.IsReturnType(filter.Type) {
		return nil, 0, domain.NewInvalidState("tipo de venta inválido: %q", filter.Type)
	}
	filter.Limit, filter.Offset = inventory.NormalizePage(filter.Limit, filter.Offset)
	return uc.saleRepo.List(ctx, filter)
}

// FindSalesByCustomer busca ventas originales por coincidencia parcial de la identidad del cliente.
// Exige al menos un criterio.
func (uc *SalesUseCase) FindSalesByCustomer(ctx context.Context, criteria repository.CustomerCriteria) ([]*entity.Sale, error) {
	criteria.Name = strings.TrimSpace(criteria.Name)
	criteria.Document = strings.TrimSpace(criteria.Document)
	criteria.Phone = strings.TrimSpace(criteria.Phone)
	criteria.Email = strings.TrimSpace(criteria.Email)
	if criteria.Name == "" && criteria.Document == "" && criteria.Phone == "" && criteria.Email == "" {
		return nil, domain.NewInvalidState("indique al menos un criterio de búsqueda del cliente")
	}
	if criteria.Limit <= 0 || criteria.Limit > DefaultCustomerSearchLimit {
		criteria.Limit = DefaultCustomerSearchLimit
	}
	return uc.saleRepo.FindByCustomer(ctx, criteria)
}
