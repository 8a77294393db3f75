package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/application/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta cada unidad de trabajo del motor en una transacción READ COMMITTED.
// La serialización de stock y unidades la dan los SELECT ... FOR UPDATE de los repos.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner. lockTimeout > 0 limita cuánto espera una tx por un lock de fila;
// al vencer, la operación falla con ConflictError en lugar de quedar colgada.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run hace Commit si fn termina sin error y Rollback en cualquier otro caso.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		// SET no acepta parámetros.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	if err := fn(NewRepos(tx)); err != nil {
		return mapLockFailure(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapLockFailure(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// NewRepos construye los repositorios sobre un Querier (pool para lecturas, tx dentro de Run).
func NewRepos(q Querier) inventory.TxRepos {
	return inventory.TxRepos{
		Products:  NewProductRepository(q),
		Movements: NewStockMovementRepository(q),
		Units:     NewProductUnitRepository(q),
		Sales:     NewSaleRepository(q),
	}
}
