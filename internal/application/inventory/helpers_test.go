package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Ey-luccas/luanova-sub000/internal/application/inventory"
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

// lastChanges devuelve los cambios de la última notificación.
func (m *notifierMock) lastChanges(t *testing.T) []inventory.StockChange {
	t.Helper()
	require.NotEmpty(t, m.Calls, "se esperaba al menos una notificación")
	return m.Calls[len(m.Calls)-1].Arguments.Get(1).([]inventory.StockChange)
}

type fixture struct {
	store     *memory.Store
	repos     inventory.TxRepos
	notifier  *notifierMock
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
		store:     store,
		repos:     repos,
		notifier:  n,
		movements: inventory.NewMovementUseCase(store, repos.Movements, n, zerolog.Nop(), telemetry.Noop()),
		units:     inventory.NewUnitUseCase(store, repos.Products, repos.Units, n, zerolog.Nop(), telemetry.Noop()),
	}
}

type productOpt func(p *entity.Product)

func withBarcode(b string) productOpt { return func(p *entity.Product) { p.Barcode = b } }

func asService() productOpt { return func(p *entity.Product) { p.IsService = true } }

func inCompany(id string) productOpt { return func(p *entity.Product) { p.CompanyID = id } }

// newProduct crea un producto con stock 0 directamente en el repositorio.
func (f *fixture) newProduct(t *testing.T, opts ...productOpt) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID:           uuid.New().String(),
		CompanyID:    testCompanyID,
		Name:         "Producto de prueba",
		CurrentStock: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, o := range opts {
		o(p)
	}
	require.NoError(t, f.repos.Products.Create(context.Background(), p))
	return p
}

// stockIn registra una entrada a granel.
func (f *fixture) stockIn(t *testing.T, productID string, qty int64) {
	t.Helper()
	_, err := f.movements.RecordMovement(context.Background(), inventory.MovementInputDTO{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		ProductID: productID,
		Type:      entity.MovementTypeIN,
		Quantity:  dec(qty),
		Reason:    "compra",
	})
	require.NoError(t, err)
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

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
