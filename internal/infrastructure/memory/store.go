// Package memory implementa los puertos de persistencia en memoria. Cada unidad de trabajo se
// ejecuta con el mutex del store tomado sobre una copia del estado, que solo reemplaza al estado
// confirmado si fn no falla.
package memory

import (
	"context"
	"sync"

	"github.com/Ey-luccas/luanova-sub000/internal/application/inventory"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	products   map[string]entity.Product
	movements  []entity.StockMovement
	units      []entity.ProductUnit // ID ascendente
	unitIndex  map[int64]int
	barcodes   map[string]int64 // company_id|barcode -> unit id
	nextUnitID int64
	sales      []entity.Sale // orden de inserción
	saleIndex  map[string]int
}

func newState() *state {
	return &state{
		products:  make(map[string]entity.Product),
		unitIndex: make(map[int64]int),
		barcodes:  make(map[string]int64),
		saleIndex: make(map[string]int),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:   make(map[string]entity.Product, len(s.products)),
		movements:  append([]entity.StockMovement(nil), s.movements...),
		units:      append([]entity.ProductUnit(nil), s.units...),
		unitIndex:  make(map[int64]int, len(s.unitIndex)),
		barcodes:   make(map[string]int64, len(s.barcodes)),
		nextUnitID: s.nextUnitID,
		sales:      append([]entity.Sale(nil), s.sales...),
		saleIndex:  make(map[string]int, len(s.saleIndex)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.unitIndex {
		c.unitIndex[k] = v
	}
	for k, v := range s.barcodes {
		c.barcodes[k] = v
	}
	for k, v := range s.saleIndex {
		c.saleIndex[k] = v
	}
	return c
}

// access ejecuta fn sobre el estado que corresponda (confirmado con lock, o el de la tx en curso).
type access func(fn func(st *state) error) error

// Store almacén en memoria. Seguro para uso concurrente.
type Store struct {
	mu sync.Mutex
	st *state
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState()}
}

// Run serializa las unidades de trabajo: fn corre sobre una copia y el resultado se confirma solo si no hay error.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	direct := func(f func(st *state) error) error { return f(work) }
	if err := fn(newRepos(direct)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Repos repositorios fuera de transacción (lecturas y altas de catálogo). No usar dentro de Run.
func (s *Store) Repos() inventory.TxRepos {
	return newRepos(s.locked)
}

func (s *Store) locked(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func newRepos(a access) inventory.TxRepos {
	return inventory.TxRepos{
		Products:  &ProductRepo{access: a},
		Movements: &MovementRepo{access: a},
		Units:     &UnitRepo{access: a},
		Sales:     &SaleRepo{access: a},
	}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
