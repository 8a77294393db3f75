package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Ey-luccas/luanova-sub000/internal/application/inventory"
	"github.com/Ey-luccas/luanova-sub000/internal/application/sales"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/repository"
	"github.com/Ey-luccas/luanova-sub000/internal/infrastructure/memory"
	"github.com/Ey-luccas/luanova-sub000/pkg/telemetry"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID = "company-1"
	otherCompany  = "company-2"
	testUserID    = "user-1"
)

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) NotifyStockChanged(ctx context.Context, changes []inventory.StockChange) {
	m.Called(ctx, changes)
}

type fixture struct {
	repos     inventory.TxRepos
	notifier  *notifierMock
	sales     *sales.SalesUseCase
	movements *inventory.MovementUseCase
	units     *inventory.UnitUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	repos := store.Repos()
	n := &notifierMock{}
	n.On("NotifyStockChanged", mock.Anything, mock.Anything).Return()
	return &fixture{
		repos:     repos,
		notifier:  n,
		sales:     sales.NewSalesUseCase(store, repos.Sales, n, zerolog.Nop(), telemetry.Noop()),
		movements: inventory.NewMovementUseCase(store, repos.Movements, n, zerolog.Nop(), telemetry.Noop()),
		units:     inventory.NewUnitUseCase(store, repos.Products, repos.Units, n, zerolog.Nop(), telemetry.Noop()),
	}
}

// newProduct crea un producto con precio y stock 0. price < 0 deja el precio sin definir.
func (f *fixture) newProduct(t *testing.T, price int64, service bool) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID:           uuid.New().String(),
		CompanyID:    testCompanyID,
		Name:         "Producto",
		CurrentStock: decimal.Zero,
		IsService:    service,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if price >= 0 {
		p.UnitPrice = decPtr(price)
	}
	require.NoError(t, f.repos.Products.Create(context.Background(), p))
	return p
}

// bulkProduct producto a granel con stock inicial.
func (f *fixture) bulkProduct(t *testing.T, price, stock int64) *entity.Product {
	t.Helper()
	p := f.newProduct(t, price, false)
	if stock > 0 {
		_, err := f.movements.RecordMovement(context.Background(), inventory.MovementInputDTO{
			CompanyID: testCompanyID,
			UserID:    testUserID,
			ProductID: p.ID,
			Type:      entity.MovementTypeIN,
			Quantity:  dec(stock),
		})
		require.NoError(t, err)
	}
	return p
}

// unitProduct producto con unidades registradas.
func (f *fixture) unitProduct(t *testing.T, price int64, units int) *entity.Product {
	t.Helper()
	p := f.newProduct(t, price, false)
	_, err := f.units.CreateUnits(context.Background(), inventory.CreateUnitsInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		ProductID: p.ID,
		Quantity:  units,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) sell(t *testing.T, productID string, qty int64) *sales.SaleResult {
	t.Helper()
	res, err := f.sales.CreateSale(context.Background(), sales.CreateSaleInput{
		CompanyID:     testCompanyID,
		UserID:        testUserID,
		ProductID:     productID,
		Type:          entity.SaleTypeSale,
		Quantity:      dec(qty),
		Customer:      entity.Customer{Name: "María Pérez", Document: "123456", Phone: "555-0101"},
		PaymentMethod: "efectivo",
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) stock(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	p, err := f.repos.Products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

// ledgerSum suma con signo todos los movimientos del producto.
func (f *fixture) ledgerSum(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	list, _, err := f.repos.Movements.List(context.Background(), repository.MovementFilter{
		CompanyID: testCompanyID,
		ProductID: productID,
	})
	require.NoError(t, err)
	sum := decimal.Zero
	for _, m := range list {
		sum = sum.Add(m.Delta())
	}
	return sum
}

// ledgerMatchesStock verifica que el ledger reconstruye current_stock.
func (f *fixture) ledgerMatchesStock(t *testing.T, productID string) {
	t.Helper()
	assert.True(t, f.ledgerSum(t, productID).Equal(f.stock(t, productID)),
		"ledger %s, stock %s", f.ledgerSum(t, productID), f.stock(t, productID))
}

func (f *fixture) available(t *testing.T, productID string) int {
	t.Helper()
	n, err := f.repos.Units.CountAvailable(context.Background(), productID)
	require.NoError(t, err)
	return n
}

func (f *fixture) salesCount(t *testing.T) int {
	t.Helper()
	_, total, err := f.sales.ListSales(context.Background(), repository.SaleFilter{CompanyID: testCompanyID})
	require.NoError(t, err)
	return total
}

func (f *fixture) movementCount(t *testing.T) int {
	t.Helper()
	_, total, err := f.movements.ListMovements(context.Background(), repository.MovementFilter{CompanyID: testCompanyID})
	require.NoError(t, err)
	return total
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
