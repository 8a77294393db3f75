package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/Ey-luccas/luanova-sub000/internal/domain"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo transacciones de venta en memoria.
type SaleRepo struct {
	access access
}

// Create agrega una fila de venta.
func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	return r.access(func(st *state) error {
		if _, ok := st.saleIndex[sale.ID]; ok {
			return domain.ErrDuplicate
		}
		st.saleIndex[sale.ID] = len(st.sales)
		st.sales = append(st.sales, *sale)
		return nil
	})
}

// GetByID devuelve una copia de la venta o nil.
func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.access(func(st *state) error {
		if i, ok := st.saleIndex[id]; ok {
			s := st.sales[i]
			out = &s
		}
		return nil
	})
	return out, err
}

// SumReturnedQuantity suma RETURN y EXCHANGE registrados contra la venta original.
func (r *SaleRepo) SumReturnedQuantity(_ context.Context, originalSaleID string) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.access(func(st *state) error {
		for _, s := range st.sales {
			if s.RelatedSaleID == nil || *s.RelatedSaleID != originalSaleID {
				continue
			}
			if s.Type == entity.SaleTypeReturn || s.Type == entity.SaleTypeExchange {
				total = total.Add(s.Quantity)
			}
		}
		return nil
	})
	return total, err
}

// SumRefundedAmount suma los totales REFUND registrados contra la venta original.
func (r *SaleRepo) SumRefundedAmount(_ context.Context, originalSaleID string) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.access(func(st *state) error {
		for _, s := range st.sales {
			if s.Type == entity.SaleTypeRefund && s.RelatedSaleID != nil && *s.RelatedSaleID == originalSaleID {
				total = total.Add(s.Total)
			}
		}
		return nil
	})
	return total, err
}

func (r *SaleRepo) newestFirst(match func(s *entity.Sale) bool) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.access(func(st *state) error {
		for i := len(st.sales) - 1; i >= 0; i-- {
			s := st.sales[i]
			if match(&s) {
				out = append(out, &s)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// List filtra y pagina, más recientes primero.
func (r *SaleRepo) List(_ context.Context, filter repository.SaleFilter) ([]*entity.Sale, int, error) {
	matched, err := r.newestFirst(func(s *entity.Sale) bool {
		if s.CompanyID != filter.CompanyID {
			return false
		}
		if filter.ProductID != "" && s.ProductID != filter.ProductID {
			return false
		}
		if filter.Type != "" && s.Type != filter.Type {
			return false
		}
		if filter.From != nil && s.CreatedAt.Before(*filter.From) {
			return false
		}
		if filter.To != nil && !s.CreatedAt.Before(*filter.To) {
			return false
		}
		return true
	})
	if err != nil {
		return nil, 0, err
	}
	return page(matched, filter.Limit, filter.Offset), len(matched), nil
}

func containsFold(value, part string) bool {
	return part == "" || strings.Contains(strings.ToLower(value), strings.ToLower(part))
}

// FindByCustomer ventas SALE/SERVICE cuyo cliente coincide con todos los criterios informados.
func (r *SaleRepo) FindByCustomer(_ context.Context, criteria repository.CustomerCriteria) ([]*entity.Sale, error) {
	matched, err := r.newestFirst(func(s *entity.Sale) bool {
		return s.CompanyID == criteria.CompanyID &&
			entity.IsOriginType(s.Type) &&
			containsFold(s.Customer.Name, criteria.Name) &&
			containsFold(s.Customer.Document, criteria.Document) &&
			containsFold(s.Customer.Phone, criteria.Phone) &&
			containsFold(s.Customer.Email, criteria.Email)
	})
	if err != nil {
		return nil, err
	}
	return page(matched, criteria.Limit, 0), nil
}
