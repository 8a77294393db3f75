package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/domain"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordMovementInTx escribe un movimiento en el ledger y ajusta current_stock y last_movement_at
// del producto, usando los repositorios de la transacción del caller.
// No verifica suficiencia en OUT: el caller ya lo hizo con la fila bloqueada.
func RecordMovementInTx(
	ctx context.Context,
	repos TxRepos,
	product *entity.Product,
	movType string,
	quantity decimal.Decimal,
	reason, userID string,
	now time.Time,
) (*entity.StockMovement, error) {
	if !entity.IsValidMovementType(movType) {
		return nil, domain.NewInvalidState("tipo de movimiento inválido: %q", movType)
	}
	if !quantity.IsPositive() {
		return nil, domain.NewInvalidState("la cantidad debe ser mayor que cero")
	}
	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		CompanyID: product.CompanyID,
		Type:      movType,
		Quantity:  quantity,
		Reason:    reason,
		UserID:    userID,
		CreatedAt: now,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	if err := repos.Products.AdjustStock(ctx, product.ID, mov.Delta(), now); err != nil {
		return nil, err
	}
	product.CurrentStock = product.CurrentStock.Add(mov.Delta())
	product.LastMovementAt = &now
	return mov, nil
}

// LockProduct bloquea un producto de la empresa. NotFoundError si no existe o es de otra empresa.
func LockProduct(ctx context.Context, repos TxRepos, companyID, productID string) (*entity.Product, error) {
	product, err := repos.Products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, domain.NewNotFound("producto", productID)
	}
	return product, nil
}

// LockProducts bloquea varios productos en orden ascendente de ID para evitar deadlocks
// entre transacciones concurrentes que tocan los mismos productos.
func LockProducts(ctx context.Context, repos TxRepos, companyID string, productIDs []string) (map[string]*entity.Product, error) {
	ids := make([]string, 0, len(productIDs))
	seen := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		p, err := LockProduct(ctx, repos, companyID, id)
		if err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, nil
}

// IsUnitTracked indica si el producto tiene unidades registradas.
func IsUnitTracked(ctx context.Context, repos TxRepos, productID string) (bool, error) {
	n, err := repos.Units.CountByProduct(ctx, productID)
	if err != nil {
		return false, fmt.Errorf("count units: %w", err)
	}
	return n > 0, nil
}

// ChangeSet acumula el stock final por producto durante una transacción para notificar tras el Commit.
type ChangeSet struct {
	order   []string
	changes map[string]StockChange
}

// Track registra el stock actual del producto (la última llamada por producto gana).
func (c *ChangeSet) Track(p *entity.Product, reason string, at time.Time) {
	if c.changes == nil {
		c.changes = make(map[string]StockChange)
	}
	if _, ok := c.changes[p.ID]; !ok {
		c.order = append(c.order, p.ID)
	}
	c.changes[p.ID] = StockChange{
		CompanyID:    p.CompanyID,
		ProductID:    p.ID,
		CurrentStock: p.CurrentStock,
		Reason:       reason,
		At:           at,
	}
}

// List devuelve los cambios en el orden en que se registraron.
func (c *ChangeSet) List() []StockChange {
	out := make([]StockChange, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.changes[id])
	}
	return out
}
