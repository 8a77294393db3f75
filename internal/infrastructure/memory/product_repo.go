package memory

import (
	"context"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/domain"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo de productos en memoria.
type ProductRepo struct {
	access access
}

// Create persiste un producto nuevo.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.access(func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[product.ID] = *product
		return nil
	})
}

// GetByID devuelve una copia del producto o nil.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.access(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetForUpdate igual que GetByID: dentro de Run el store ya está bloqueado.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// AdjustStock suma delta al stock; InsufficientStockError si quedaría negativo.
func (r *ProductRepo) AdjustStock(_ context.Context, id string, delta decimal.Decimal, at time.Time) error {
	return r.access(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.NewNotFound("producto", id)
		}
		next := p.CurrentStock.Add(delta)
		if next.IsNegative() {
			return domain.NewInsufficientStock(id, delta.Neg(), p.CurrentStock)
		}
		p.CurrentStock = next
		p.LastMovementAt = &at
		p.UpdatedAt = at
		st.products[id] = p
		return nil
	})
}

// UpdateCost fija el costo promedio.
func (r *ProductRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	return r.access(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.NewNotFound("producto", id)
		}
		p.CostPrice = &cost
		p.UpdatedAt = time.Now()
		st.products[id] = p
		return nil
	})
}
