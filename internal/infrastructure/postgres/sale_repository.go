package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ey-luccas/luanova-sub000/internal/domain"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo transacciones de venta sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, company_id, product_id, user_id, type, quantity, unit_price, total,
	customer_name, customer_document, customer_phone, customer_email, payment_method,
	return_action, related_sale_id, exchange_product_id, exchange_quantity, observations, created_at`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.CompanyID, &s.ProductID, &s.UserID, &s.Type, &s.Quantity, &s.UnitPrice, &s.Total,
		&s.Customer.Name, &s.Customer.Document, &s.Customer.Phone, &s.Customer.Email, &s.PaymentMethod,
		&s.ReturnAction, &s.RelatedSaleID, &s.ExchangeProductID, &s.ExchangeQuantity, &s.Observations, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SaleRepo) querySales(ctx context.Context, op, query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	list := make([]*entity.Sale, 0)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Create inserta una fila de venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.CompanyID, s.ProductID, s.UserID, s.Type, s.Quantity, s.UnitPrice, s.Total,
		s.Customer.Name, s.Customer.Document, s.Customer.Phone, s.Customer.Email, s.PaymentMethod,
		s.ReturnAction, s.RelatedSaleID, s.ExchangeProductID, s.ExchangeQuantity, s.Observations, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// GetByID obtiene una venta. nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// SumReturnedQuantity suma RETURN y EXCHANGE registrados contra la venta original.
func (r *SaleRepo) SumReturnedQuantity(ctx context.Context, originalSaleID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM sales
		WHERE related_sale_id = $1 AND type IN ('RETURN', 'EXCHANGE')`, originalSaleID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum returned quantity: %w", err)
	}
	return total, nil
}

// SumRefundedAmount suma los totales REFUND registrados contra la venta original.
func (r *SaleRepo) SumRefundedAmount(ctx context.Context, originalSaleID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0) FROM sales
		WHERE related_sale_id = $1 AND type = 'REFUND'`, originalSaleID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum refunded amount: %w", err)
	}
	return total, nil
}

// List filtra y pagina, más recientes primero.
func (r *SaleRepo) List(ctx context.Context, filter repository.SaleFilter) ([]*entity.Sale, int, error) {
	var w whereBuilder
	w.add("company_id = ?", filter.CompanyID)
	if filter.ProductID != "" {
		w.add("product_id = ?", filter.ProductID)
	}
	if filter.Type != "" {
		w.add("type = ?", filter.Type)
	}
	if filter.From != nil {
		w.add("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		w.add("created_at < ?", *filter.To)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}
	args := append(w.args, filter.Limit, filter.Offset)
	query := `SELECT ` + saleColumns + ` FROM sales` + w.sql() +
		` ORDER BY created_at DESC, id LIMIT ` + placeholder(len(args)-1) + ` OFFSET ` + placeholder(len(args))
	list, err := r.querySales(ctx, "list sales", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// FindByCustomer ventas SALE/SERVICE cuyo cliente coincide (ILIKE) con todos los criterios informados.
func (r *SaleRepo) FindByCustomer(ctx context.Context, criteria repository.CustomerCriteria) ([]*entity.Sale, error) {
	var w whereBuilder
	w.add("company_id = ?", criteria.CompanyID)
	w.clauses = append(w.clauses, "type IN ('SALE', 'SERVICE')")
	if criteria.Name != "" {
		w.add(`customer_name ILIKE ? ESCAPE '\'`, likeContains(criteria.Name))
	}
	if criteria.Document != "" {
		w.add(`customer_document ILIKE ? ESCAPE '\'`, likeContains(criteria.Document))
	}
	if criteria.Phone != "" {
		w.add(`customer_phone ILIKE ? ESCAPE '\'`, likeContains(criteria.Phone))
	}
	if criteria.Email != "" {
		w.add(`customer_email ILIKE ? ESCAPE '\'`, likeContains(criteria.Email))
	}
	args := append(w.args, criteria.Limit)
	query := `SELECT ` + saleColumns + ` FROM sales` + w.sql() +
		` ORDER BY created_at DESC, id LIMIT ` + placeholder(len(args))
	return r.querySales(ctx, "find sales by customer", query, args...)
}
