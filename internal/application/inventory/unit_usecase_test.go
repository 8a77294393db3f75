package inventory_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ey-luccas/luanova-sub000/internal/application/inventory"
	"github.com/Ey-luccas/luanova-sub000/internal/domain"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/repository"
)

func (f *fixture) createUnits(t *testing.T, productID string, qty int) []*entity.ProductUnit {
	t.Helper()
	units, err := f.units.CreateUnits(context.Background(), inventory.CreateUnitsInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		ProductID: productID,
		Quantity:  qty,
	})
	require.NoError(t, err)
	return units
}

// availableMatchesStock verifica que las unidades disponibles coinciden con current_stock.
func (f *fixture) availableMatchesStock(t *testing.T, productID string) {
	t.Helper()
	n, err := f.repos.Units.CountAvailable(context.Background(), productID)
	require.NoError(t, err)
	assert.True(t, f.stock(t, productID).Equal(dec(int64(n))), "disponibles %d, stock %s", n, f.stock(t, productID))
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateUnits
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateUnits_SecuenciaContiguaYEntrada(t *testing.T) {
	f := newFixture(t)
	p := f.newProduct(t, withBarcode("ABC"))

	first := f.createUnits(t, p.ID, 3)
	require.Len(t, first, 3)
	assert.Equal(t, "ABC-001", first[0].Barcode)
	assert.Equal(t, "ABC-003", first[2].Barcode)
	for _, u := range first {
		assert.Positive(t, u.ID)
		assert.True(t, u.IsAvailable())
	}

	second := f.createUnits(t, p.ID, 2)
	assert.Equal(t, "ABC-004", second[0].Barcode)
	assert.Equal(t, "ABC-005", second[1].Barcode)

	assert.True(t, f.stock(t, p.ID).Equal(dec(5)))
	f.availableMatchesStock(t, p.ID)

	list, total, err := f.movements.ListMovements(context.Background(), repository.MovementFilter{CompanyID: testCompanyID, ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, m := range list {
		assert.Equal(t, entity.MovementTypeIN, m.Type)
		assert.Equal(t, inventory.ReasonUnitCreation, m.Reason)
	}
}

func TestCreateUnits_SinCodigoUsaPrefijoPROD(t *testing.T) {
	f := newFixture(t)
	p := f.newProduct(t)

	units := f.createUnits(t, p.ID, 1)
	assert.Equal(t, "PROD-"+p.ID+"-001", units[0].Barcode)
}

// La secuencia sigue al último código emitido aunque haya más de 999 unidades.
func TestCreateUnits_SecuenciaDeCuatroDigitos(t *testing.T) {
	f := newFixture(t)
	p := f.newProduct(t, withBarcode("X"))

	f.createUnits(t, p.ID, inventory.MaxUnitsPerCreation)
	units := f.createUnits(t, p.ID, 1)
	assert.Equal(t, "X-1001", units[0].Barcode)
}

func TestCreateUnits_Rechazos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	service := f.newProduct(t, asService())
	_, err := f.units.CreateUnits(ctx, inventory.CreateUnitsInput{CompanyID: testCompanyID, ProductID: service.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "los servicios no tienen unidades")

	bulk := f.newProduct(t)
	f.stockIn(t, bulk.ID, 5)
	_, err = f.units.CreateUnits(ctx, inventory.CreateUnitsInput{CompanyID: testCompanyID, ProductID: bulk.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "un producto con stock a granel no mezcla unidades")
	assert.True(t, f.stock(t, bulk.ID).Equal(dec(5)))

	p := f.newProduct(t)
	_, err = f.units.CreateUnits(ctx, inventory.CreateUnitsInput{CompanyID: testCompanyID, ProductID: p.ID, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.units.CreateUnits(ctx, inventory.CreateUnitsInput{CompanyID: testCompanyID, ProductID: p.ID, Quantity: inventory.MaxUnitsPerCreation + 1})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	foreign := f.newProduct(t, inCompany(otherCompany))
	_, err = f.units.CreateUnits(ctx, inventory.CreateUnitsInput{CompanyID: testCompanyID, ProductID: foreign.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Dos productos con el mismo código base colisionan dentro de la empresa: la tx completa se descarta.
func TestCreateUnits_CodigoDuplicadoRevierteTodo(t *testing.T) {
	f := newFixture(t)
	a := f.newProduct(t, withBarcode("DUP"))
	b := f.newProduct(t, withBarcode("DUP"))
	f.createUnits(t, a.ID, 2)

	_, err := f.units.CreateUnits(context.Background(), inventory.CreateUnitsInput{CompanyID: testCompanyID, ProductID: b.ID, Quantity: 2})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, f.stock(t, b.ID).IsZero())
	n, err := f.repos.Units.CountByProduct(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// ──────────────────────────────────────────────────────────────────────────────
// MarkUnitSold
// ──────────────────────────────────────────────────────────────────────────────

func TestMarkUnitSold_DescuentaUnoYRegistraSalida(t *testing.T) {
	f := newFixture(t)
	p := f.newProduct(t, withBarcode("SKU"))
	units := f.createUnits(t, p.ID, 2)

	sold, err := f.units.MarkUnitSold(context.Background(), inventory.MarkUnitSoldInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		UnitID:    units[0].ID,
		Details:   entity.UnitSaleDetails{SellerName: "Ana", PaymentMethods: "efectivo"},
	})
	require.NoError(t, err)

	assert.True(t, sold.IsSold)
	assert.NotNil(t, sold.SoldAt)
	assert.Equal(t, "Ana", sold.SellerName)
	assert.True(t, f.stock(t, p.ID).Equal(dec(1)))
	f.availableMatchesStock(t, p.ID)

	list, _, err := f.movements.ListMovements(context.Background(), repository.MovementFilter{CompanyID: testCompanyID, ProductID: p.ID, Type: entity.MovementTypeOUT})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, strings.Contains(list[0].Reason, "SKU-001"), "reason = %s", list[0].Reason)
}

func TestMarkUnitSold_YaVendida_Conflict(t *testing.T) {
	f := newFixture(t)
	p := f.newProduct(t)
	units := f.createUnits(t, p.ID, 1)
	in := inventory.MarkUnitSoldInput{CompanyID: testCompanyID, UserID: testUserID, UnitID: units[0].ID}

	_, err := f.units.MarkUnitSold(context.Background(), in)
	require.NoError(t, err)
	_, err = f.units.MarkUnitSold(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, f.stock(t, p.ID).IsZero())
}

func TestMarkUnitSold_NoEncontrada(t *testing.T) {
	f := newFixture(t)
	p := f.newProduct(t, inCompany(otherCompany))
	units, err := f.units.CreateUnits(context.Background(), inventory.CreateUnitsInput{CompanyID: otherCompany, ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.units.MarkUnitSold(context.Background(), inventory.MarkUnitSoldInput{CompanyID: testCompanyID, UnitID: units[0].ID})
	assert.ErrorIs(t, err, domain.ErrNotFound, "la unidad es de otra empresa")

	_, err = f.units.MarkUnitSold(context.Background(), inventory.MarkUnitSoldInput{CompanyID: testCompanyID, UnitID: 9999})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkUnitSold_VentaReferenciada(t *testing.T) {
	f := newFixture(t)
	p := f.newProduct(t)
	other := f.newProduct(t)
	units := f.createUnits(t, p.ID, 2)
	ctx := context.Background()

	missing := uuid.New().String()
	_, err := f.units.MarkUnitSold(ctx, inventory.MarkUnitSoldInput{CompanyID: testCompanyID, UnitID: units[0].ID, SaleID: &missing})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	wrong := &entity.Sale{
		ID: uuid.New().String(), CompanyID: testCompanyID, ProductID: other.ID,
		Type: entity.SaleTypeSale, Quantity: dec(1), CreatedAt: time.Now(),
	}
	require.NoError(t, f.repos.Sales.Create(ctx, wrong))
	_, err = f.units.MarkUnitSold(ctx, inventory.MarkUnitSoldInput{CompanyID: testCompanyID, UnitID: units[0].ID, SaleID: &wrong.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "la venta es de otro producto")

	right := &entity.Sale{
		ID: uuid.New().String(), CompanyID: testCompanyID, ProductID: p.ID,
		Type: entity.SaleTypeSale, Quantity: dec(1), CreatedAt: time.Now(),
	}
	require.NoError(t, f.repos.Sales.Create(ctx, right))
	sold, err := f.units.MarkUnitSold(ctx, inventory.MarkUnitSoldInput{CompanyID: testCompanyID, UnitID: units[0].ID, SaleID: &right.ID})
	require.NoError(t, err)
	require.NotNil(t, sold.SaleID)
	assert.Equal(t, right.ID, *sold.SaleID)
	assert.True(t, f.stock(t, p.ID).Equal(dec(1)))
}

// Una venta no acepta más unidades que su cantidad, contando las ya devueltas.
func TestMarkUnitSold_VentaCompleta_Conflict(t *testing.T) {
	f := newFixture(t)
	p := f.newProduct(t)
	units := f.createUnits(t, p.ID, 3)
	ctx := context.Background()

	sale := &entity.Sale{
		ID: uuid.New().String(), CompanyID: testCompanyID, ProductID: p.ID,
		Type: entity.SaleTypeSale, Quantity: dec(2), CreatedAt: time.Now(),
	}
	require.NoError(t, f.repos.Sales.Create(ctx, sale))
	_, err := f.units.MarkUnitSold(ctx, inventory.MarkUnitSoldInput{CompanyID: testCompanyID, UnitID: units[0].ID, SaleID: &sale.ID})
	require.NoError(t, err)

	// Una unidad de la venta ya volvió por devolución: no queda cupo para otra.
	action := entity.ReturnActionMaintenance
	require.NoError(t, f.repos.Sales.Create(ctx, &entity.Sale{
		ID: uuid.New().String(), CompanyID: testCompanyID, ProductID: p.ID, Type: entity.SaleTypeReturn,
		Quantity: dec(1), RelatedSaleID: &sale.ID, ReturnAction: &action, CreatedAt: time.Now(),
	}))

	_, err = f.units.MarkUnitSold(ctx, inventory.MarkUnitSoldInput{CompanyID: testCompanyID, UnitID: units[1].ID, SaleID: &sale.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, f.stock(t, p.ID).Equal(dec(2)), "el rechazo no descuenta stock")
	f.availableMatchesStock(t, p.ID)
	assert.True(t, f.ledgerSum(t, p.ID).Equal(f.stock(t, p.ID)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestConsultasDeUnidades(t *testing.T) {
	f := newFixture(t)
	p := f.newProduct(t)
	f.createUnits(t, p.ID, 3)
	ctx := context.Background()

	byProduct, err := f.units.GetUnitsByProduct(ctx, testCompanyID, p.ID)
	require.NoError(t, err)
	assert.Len(t, byProduct, 3)

	_, err = f.units.GetUnitsByProduct(ctx, otherCompany, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	today, err := f.units.GetUnitsByDate(ctx, testCompanyID, time.Now())
	require.NoError(t, err)
	assert.Len(t, today, 3)

	yesterday, err := f.units.GetUnitsByDate(ctx, testCompanyID, time.Now().AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Empty(t, yesterday)

	dates, err := f.units.ListUnitCreationDates(ctx, testCompanyID)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, 3, dates[0].Count)
}
