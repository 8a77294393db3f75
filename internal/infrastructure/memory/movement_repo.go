package memory

import (
	"context"
	"sort"

	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo ledger en memoria (solo inserción).
type MovementRepo struct {
	access access
}

// Create agrega un movimiento.
func (r *MovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	return r.access(func(st *state) error {
		st.movements = append(st.movements, *movement)
		return nil
	})
}

// List filtra y pagina, más recientes primero.
func (r *MovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	var matched []*entity.StockMovement
	err := r.access(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.CompanyID != filter.CompanyID {
				continue
			}
			if filter.ProductID != "" && m.ProductID != filter.ProductID {
				continue
			}
			if filter.Type != "" && m.Type != filter.Type {
				continue
			}
			if filter.From != nil && m.CreatedAt.Before(*filter.From) {
				continue
			}
			if filter.To != nil && !m.CreatedAt.Before(*filter.To) {
				continue
			}
			matched = append(matched, &m)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, filter.Limit, filter.Offset), len(matched), nil
}
