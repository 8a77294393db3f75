package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ey-luccas/luanova-sub000/internal/application/inventory"
	"github.com/Ey-luccas/luanova-sub000/internal/domain"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/repository"
	"github.com/Ey-luccas/luanova-sub000/internal/infrastructure/memory"
)

func seedProduct(t *testing.T, s *memory.Store, id string) {
	t.Helper()
	require.NoError(t, s.Repos().Products.Create(context.Background(), &entity.Product{
		ID: id, CompanyID: "c1", Name: id, CurrentStock: decimal.Zero,
	}))
}

func TestRun_ConfirmaSoloSinError(t *testing.T) {
	s := memory.New()
	seedProduct(t, s, "p1")
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(r inventory.TxRepos) error {
		require.NoError(t, r.Products.AdjustStock(ctx, "p1", decimal.NewFromInt(5), time.Now()))
		require.NoError(t, r.Movements.Create(ctx, &entity.StockMovement{ID: "m1", CompanyID: "c1", ProductID: "p1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := s.Repos().Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.IsZero(), "el rollback descarta el ajuste")
	_, total, err := s.Repos().Movements.List(ctx, repository.MovementFilter{CompanyID: "c1"})
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, s.Run(ctx, func(r inventory.TxRepos) error {
		return r.Products.AdjustStock(ctx, "p1", decimal.NewFromInt(5), time.Now())
	}))
	p, err = s.Repos().Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.Equal(decimal.NewFromInt(5)))
	assert.NotNil(t, p.LastMovementAt)
}

func TestRun_ContextoCancelado(t *testing.T) {
	s := memory.New()
	seedProduct(t, s, "p1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Run(ctx, func(inventory.TxRepos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestAdjustStock_NuncaNegativo(t *testing.T) {
	s := memory.New()
	seedProduct(t, s, "p1")
	ctx := context.Background()

	err := s.Repos().Products.AdjustStock(ctx, "p1", decimal.NewFromInt(-1), time.Now())
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	err = s.Repos().Products.AdjustStock(ctx, "nope", decimal.NewFromInt(1), time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUnitRepo_CodigosUnicosPorEmpresa(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	units := s.Repos().Units

	require.NoError(t, units.CreateBatch(ctx, []*entity.ProductUnit{
		{ProductID: "p1", CompanyID: "c1", Barcode: "A-001"},
		{ProductID: "p1", CompanyID: "c1", Barcode: "A-002"},
	}))
	// Mismo código en otra empresa es válido.
	require.NoError(t, units.CreateBatch(ctx, []*entity.ProductUnit{
		{ProductID: "p9", CompanyID: "c2", Barcode: "A-001"},
	}))

	err := units.CreateBatch(ctx, []*entity.ProductUnit{
		{ProductID: "p1", CompanyID: "c1", Barcode: "A-003"},
		{ProductID: "p1", CompanyID: "c1", Barcode: "A-002"},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	n, err := units.CountByProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "el lote con colisión no inserta nada")

	last, err := units.LastBarcode(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "A-002", last)
}

func TestUnitRepo_VendidasPorVenta(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	units := s.Repos().Units
	batch := []*entity.ProductUnit{
		{ProductID: "p1", CompanyID: "c1", Barcode: "A-001"},
		{ProductID: "p1", CompanyID: "c1", Barcode: "A-002"},
		{ProductID: "p1", CompanyID: "c1", Barcode: "A-003"},
	}
	require.NoError(t, units.CreateBatch(ctx, batch))

	saleID := "s1"
	for _, u := range batch[:2] {
		u.IsSold = true
		u.SaleID = &saleID
		require.NoError(t, units.Update(ctx, u))
	}

	n, err := units.CountSoldBySale(ctx, saleID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	avail, err := units.LockAvailable(ctx, "p1", 5)
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, "A-003", avail[0].Barcode)

	sold, err := units.LockSoldBySale(ctx, saleID, 1)
	require.NoError(t, err)
	require.Len(t, sold, 1)
	assert.Equal(t, "A-001", sold[0].Barcode, "más antiguas primero")
}

func TestSaleRepo_SumaDevueltoYBusqueda(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	sales := s.Repos().Sales
	orig := "s1"
	now := time.Now()

	rows := []*entity.Sale{
		{ID: "s1", CompanyID: "c1", Type: entity.SaleTypeSale, Quantity: decimal.NewFromInt(5), Customer: entity.Customer{Name: "Ana Gómez", Email: "ana@example.com"}, CreatedAt: now},
		{ID: "r1", CompanyID: "c1", Type: entity.SaleTypeReturn, Quantity: decimal.NewFromInt(2), RelatedSaleID: &orig, Customer: entity.Customer{Name: "Ana Gómez"}, CreatedAt: now.Add(time.Second)},
		{ID: "x1", CompanyID: "c1", Type: entity.SaleTypeExchange, Quantity: decimal.NewFromInt(1), RelatedSaleID: &orig, CreatedAt: now.Add(2 * time.Second)},
		{ID: "f1", CompanyID: "c1", Type: entity.SaleTypeRefund, Quantity: decimal.NewFromInt(1), Total: decimal.NewFromInt(7), RelatedSaleID: &orig, CreatedAt: now.Add(3 * time.Second)},
	}
	for _, r := range rows {
		require.NoError(t, sales.Create(ctx, r))
	}
	assert.ErrorIs(t, sales.Create(ctx, rows[0]), domain.ErrDuplicate)

	sum, err := sales.SumReturnedQuantity(ctx, orig)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(3)), "RETURN + EXCHANGE, sin REFUND")

	refunded, err := sales.SumRefundedAmount(ctx, orig)
	require.NoError(t, err)
	assert.True(t, refunded.Equal(decimal.NewFromInt(7)), "solo REFUND")

	none, err := sales.FindByCustomer(ctx, repository.CustomerCriteria{CompanyID: "c1", Name: "%", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, none, "el porcentaje se busca literal")

	found, err := sales.FindByCustomer(ctx, repository.CustomerCriteria{CompanyID: "c1", Name: "GÓMEZ", Limit: 10})
	require.NoError(t, err)
	require.Len(t, found, 1, "solo ventas originales")
	assert.Equal(t, "s1", found[0].ID)

	list, total, err := sales.List(ctx, repository.SaleFilter{CompanyID: "c1", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, list, 2)
	assert.Equal(t, "f1", list[0].ID, "más recientes primero")

	to := now.Add(time.Second)
	_, total, err = sales.List(ctx, repository.SaleFilter{CompanyID: "c1", To: &to})
	require.NoError(t, err)
	assert.Equal(t, 1, total, "To es exclusivo")
}

// Días de creación y listado por día usan el mismo corte de zona horaria.
func TestUnitRepo_DiasEnLaZonaIndicada(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	units := s.Repos().Units
	bogota := time.FixedZone("COT", -5*3600)

	// 03:00 UTC del 10 de marzo es todavía el 9 en UTC-5.
	late := time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC)
	require.NoError(t, units.CreateBatch(ctx, []*entity.ProductUnit{
		{ProductID: "p1", CompanyID: "c1", Barcode: "A-001", CreatedAt: late},
		{ProductID: "p1", CompanyID: "c1", Barcode: "A-002", CreatedAt: late.Add(12 * time.Hour)},
	}))

	dates, err := units.ListCreationDates(ctx, "c1", bogota)
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, "2024-03-10", dates[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2024-03-09", dates[1].Date.Format("2006-01-02"))

	from := time.Date(2024, 3, 9, 0, 0, 0, 0, bogota)
	day, err := units.ListByDate(ctx, "c1", from, from.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, "A-001", day[0].Barcode)
	assert.Equal(t, dates[1].Count, len(day))

	utc, err := units.ListCreationDates(ctx, "c1", time.UTC)
	require.NoError(t, err)
	require.Len(t, utc, 1)
	assert.Equal(t, 2, utc[0].Count)
}
