package memory

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/domain"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/repository"
)

var _ repository.ProductUnitRepository = (*UnitRepo)(nil)

// UnitRepo registro de unidades en memoria.
type UnitRepo struct {
	access access
}

func barcodeKey(companyID, barcode string) string {
	return companyID + "|" + barcode
}

// CreateBatch inserta todas las unidades o ninguna. ConflictError si un código ya existe en la empresa.
func (r *UnitRepo) CreateBatch(_ context.Context, units []*entity.ProductUnit) error {
	return r.access(func(st *state) error {
		seen := make(map[string]bool, len(units))
		for _, u := range units {
			key := barcodeKey(u.CompanyID, u.Barcode)
			if _, ok := st.barcodes[key]; ok || seen[key] {
				return domain.NewConflict("unidad", "código de barras duplicado: "+u.Barcode)
			}
			seen[key] = true
		}
		for _, u := range units {
			st.nextUnitID++
			u.ID = st.nextUnitID
			st.unitIndex[u.ID] = len(st.units)
			st.barcodes[barcodeKey(u.CompanyID, u.Barcode)] = u.ID
			st.units = append(st.units, *u)
		}
		return nil
	})
}

// GetByID devuelve una copia de la unidad o nil.
func (r *UnitRepo) GetByID(_ context.Context, id int64) (*entity.ProductUnit, error) {
	var out *entity.ProductUnit
	err := r.access(func(st *state) error {
		if i, ok := st.unitIndex[id]; ok {
			u := st.units[i]
			out = &u
		}
		return nil
	})
	return out, err
}

// GetForUpdate igual que GetByID: dentro de Run el store ya está bloqueado.
func (r *UnitRepo) GetForUpdate(ctx context.Context, id int64) (*entity.ProductUnit, error) {
	return r.GetByID(ctx, id)
}

// Update reemplaza el estado de la unidad.
func (r *UnitRepo) Update(_ context.Context, unit *entity.ProductUnit) error {
	return r.access(func(st *state) error {
		i, ok := st.unitIndex[unit.ID]
		if !ok {
			return domain.NewNotFound("unidad", strconv.FormatInt(unit.ID, 10))
		}
		st.units[i] = *unit
		return nil
	})
}

// LastBarcode código de la unidad con mayor ID del producto.
func (r *UnitRepo) LastBarcode(_ context.Context, productID string) (string, error) {
	var out string
	err := r.access(func(st *state) error {
		for i := len(st.units) - 1; i >= 0; i-- {
			if st.units[i].ProductID == productID {
				out = st.units[i].Barcode
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UnitRepo) count(match func(u *entity.ProductUnit) bool) (int, error) {
	n := 0
	err := r.access(func(st *state) error {
		for i := range st.units {
			if match(&st.units[i]) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *UnitRepo) collect(limit int, match func(u *entity.ProductUnit) bool) ([]*entity.ProductUnit, error) {
	var out []*entity.ProductUnit
	err := r.access(func(st *state) error {
		for i := range st.units {
			if limit > 0 && len(out) >= limit {
				break
			}
			if match(&st.units[i]) {
				u := st.units[i]
				out = append(out, &u)
			}
		}
		return nil
	})
	return out, err
}

// CountByProduct unidades registradas del producto, en cualquier estado.
func (r *UnitRepo) CountByProduct(_ context.Context, productID string) (int, error) {
	return r.count(func(u *entity.ProductUnit) bool { return u.ProductID == productID })
}

// CountAvailable unidades vendibles del producto.
func (r *UnitRepo) CountAvailable(_ context.Context, productID string) (int, error) {
	return r.count(func(u *entity.ProductUnit) bool { return u.ProductID == productID && u.IsAvailable() })
}

// LockAvailable hasta limit unidades disponibles, más antiguas primero.
func (r *UnitRepo) LockAvailable(_ context.Context, productID string, limit int) ([]*entity.ProductUnit, error) {
	if limit <= 0 {
		return nil, nil
	}
	return r.collect(limit, func(u *entity.ProductUnit) bool { return u.ProductID == productID && u.IsAvailable() })
}

// LockSoldBySale hasta limit unidades de la venta que siguen en manos del cliente.
func (r *UnitRepo) LockSoldBySale(_ context.Context, saleID string, limit int) ([]*entity.ProductUnit, error) {
	if limit <= 0 {
		return nil, nil
	}
	return r.collect(limit, func(u *entity.ProductUnit) bool { return soldBy(u, saleID) })
}

// CountSoldBySale unidades de la venta que siguen en manos del cliente.
func (r *UnitRepo) CountSoldBySale(_ context.Context, saleID string) (int, error) {
	return r.count(func(u *entity.ProductUnit) bool { return soldBy(u, saleID) })
}

func soldBy(u *entity.ProductUnit, saleID string) bool {
	return u.InCustomerHands() && u.SaleID != nil && *u.SaleID == saleID
}

// ListByProduct unidades del producto en orden de creación.
func (r *UnitRepo) ListByProduct(_ context.Context, companyID, productID string) ([]*entity.ProductUnit, error) {
	return r.collect(0, func(u *entity.ProductUnit) bool {
		return u.CompanyID == companyID && u.ProductID == productID
	})
}

// ListByDate unidades creadas en [from, to).
func (r *UnitRepo) ListByDate(_ context.Context, companyID string, from, to time.Time) ([]*entity.ProductUnit, error) {
	return r.collect(0, func(u *entity.ProductUnit) bool {
		return u.CompanyID == companyID && !u.CreatedAt.Before(from) && u.CreatedAt.Before(to)
	})
}

// ListCreationDates días distintos con unidades creadas y su cantidad, más recientes primero.
func (r *UnitRepo) ListCreationDates(_ context.Context, companyID string, loc *time.Location) ([]entity.UnitCreationDate, error) {
	counts := make(map[time.Time]int)
	err := r.access(func(st *state) error {
		for _, u := range st.units {
			if u.CompanyID != companyID {
				continue
			}
			y, m, d := u.CreatedAt.In(loc).Date()
			counts[time.Date(y, m, d, 0, 0, 0, 0, loc)]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]entity.UnitCreationDate, 0, len(counts))
	for day, n := range counts {
		out = append(out, entity.UnitCreationDate{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}
