package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/domain"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

var _ repository.ProductUnitRepository = (*ProductUnitRepo)(nil)

// ProductUnitRepo registro de unidades sobre PostgreSQL (usable con pool o tx).
type ProductUnitRepo struct {
	q Querier
}

// NewProductUnitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductUnitRepository(q Querier) *ProductUnitRepo {
	return &ProductUnitRepo{q: q}
}

const unitColumns = `id, product_id, company_id, barcode, is_sold, sold_at, sale_id, seller_name, buyer_description,
	payment_methods, sale_description, is_returned, return_action, returned_at, created_at, updated_at`

func scanUnit(row pgx.Row) (*entity.ProductUnit, error) {
	var u entity.ProductUnit
	err := row.Scan(&u.ID, &u.ProductID, &u.CompanyID, &u.Barcode, &u.IsSold, &u.SoldAt, &u.SaleID,
		&u.SellerName, &u.BuyerDescription, &u.PaymentMethods, &u.SaleDescription,
		&u.IsReturned, &u.ReturnAction, &u.ReturnedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *ProductUnitRepo) queryUnits(ctx context.Context, op, query string, args ...any) ([]*entity.ProductUnit, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	list := make([]*entity.ProductUnit, 0)
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product unit: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// CreateBatch inserta las unidades y completa su ID. ConflictError si el código ya existe en la empresa.
func (r *ProductUnitRepo) CreateBatch(ctx context.Context, units []*entity.ProductUnit) error {
	query := `
		INSERT INTO product_units (product_id, company_id, barcode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	for _, u := range units {
		err := r.q.QueryRow(ctx, query, u.ProductID, u.CompanyID, u.Barcode, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.NewConflict("unidad", "código de barras duplicado: "+u.Barcode)
			}
			return fmt.Errorf("insert product unit: %w", err)
		}
	}
	return nil
}

func (r *ProductUnitRepo) getOne(ctx context.Context, query string, id int64) (*entity.ProductUnit, error) {
	u, err := scanUnit(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product unit: %w", err)
	}
	return u, nil
}

// GetByID obtiene una unidad. nil si no existe.
func (r *ProductUnitRepo) GetByID(ctx context.Context, id int64) (*entity.ProductUnit, error) {
	return r.getOne(ctx, `SELECT `+unitColumns+` FROM product_units WHERE id = $1`, id)
}

// GetForUpdate obtiene la unidad y bloquea la fila.
func (r *ProductUnitRepo) GetForUpdate(ctx context.Context, id int64) (*entity.ProductUnit, error) {
	return r.getOne(ctx, `SELECT `+unitColumns+` FROM product_units WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste el estado de venta/devolución de la unidad.
func (r *ProductUnitRepo) Update(ctx context.Context, u *entity.ProductUnit) error {
	query := `
		UPDATE product_units SET is_sold = $2, sold_at = $3, sale_id = $4, seller_name = $5, buyer_description = $6,
			payment_methods = $7, sale_description = $8, is_returned = $9, return_action = $10, returned_at = $11,
			updated_at = $12
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, u.ID, u.IsSold, u.SoldAt, u.SaleID, u.SellerName, u.BuyerDescription,
		u.PaymentMethods, u.SaleDescription, u.IsReturned, u.ReturnAction, u.ReturnedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product unit: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFound("unidad", fmt.Sprint(u.ID))
	}
	return nil
}

// LastBarcode código de la unidad con mayor ID del producto; "" si no tiene.
func (r *ProductUnitRepo) LastBarcode(ctx context.Context, productID string) (string, error) {
	var barcode string
	err := r.q.QueryRow(ctx,
		`SELECT barcode FROM product_units WHERE product_id = $1 ORDER BY id DESC LIMIT 1`, productID,
	).Scan(&barcode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last barcode: %w", err)
	}
	return barcode, nil
}

func (r *ProductUnitRepo) count(ctx context.Context, query string, arg any) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, query, arg).Scan(&n); err != nil {
		return 0, fmt.Errorf("count product units: %w", err)
	}
	return n, nil
}

// CountByProduct unidades registradas del producto.
func (r *ProductUnitRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM product_units WHERE product_id = $1`, productID)
}

// CountAvailable unidades vendibles del producto.
func (r *ProductUnitRepo) CountAvailable(ctx context.Context, productID string) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM product_units WHERE product_id = $1 AND NOT is_sold AND NOT is_returned`, productID)
}

// LockAvailable bloquea hasta limit unidades disponibles, más antiguas primero.
// El producto ya está bloqueado por el caller, así dos ventas no compiten por las mismas filas.
func (r *ProductUnitRepo) LockAvailable(ctx context.Context, productID string, limit int) ([]*entity.ProductUnit, error) {
	return r.queryUnits(ctx, "lock available units", `
		SELECT `+unitColumns+` FROM product_units
		WHERE product_id = $1 AND NOT is_sold AND NOT is_returned
		ORDER BY id LIMIT $2
		FOR UPDATE`, productID, limit)
}

// LockSoldBySale bloquea hasta limit unidades de la venta que siguen en manos del cliente.
func (r *ProductUnitRepo) LockSoldBySale(ctx context.Context, saleID string, limit int) ([]*entity.ProductUnit, error) {
	return r.queryUnits(ctx, "lock sold units", `
		SELECT `+unitColumns+` FROM product_units
		WHERE sale_id = $1 AND is_sold AND NOT is_returned
		ORDER BY id LIMIT $2
		FOR UPDATE`, saleID, limit)
}

// CountSoldBySale unidades de la venta que siguen en manos del cliente.
func (r *ProductUnitRepo) CountSoldBySale(ctx context.Context, saleID string) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM product_units WHERE sale_id = $1 AND is_sold AND NOT is_returned`, saleID)
}

// ListByProduct unidades del producto en orden de creación.
func (r *ProductUnitRepo) ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.ProductUnit, error) {
	return r.queryUnits(ctx, "list units by product",
		`SELECT `+unitColumns+` FROM product_units WHERE company_id = $1 AND product_id = $2 ORDER BY id`,
		companyID, productID)
}

// ListByDate unidades creadas en [from, to).
func (r *ProductUnitRepo) ListByDate(ctx context.Context, companyID string, from, to time.Time) ([]*entity.ProductUnit, error) {
	return r.queryUnits(ctx, "list units by date",
		`SELECT `+unitColumns+` FROM product_units
		WHERE company_id = $1 AND created_at >= $2 AND created_at < $3 ORDER BY id`,
		companyID, from, to)
}

// ListCreationDates días distintos con unidades creadas, más recientes primero.
func (r *ProductUnitRepo) ListCreationDates(ctx context.Context, companyID string, loc *time.Location) ([]entity.UnitCreationDate, error) {
	rows, err := r.q.Query(ctx, `
		SELECT (created_at AT TIME ZONE $2)::date AS day, COUNT(*)
		FROM product_units WHERE company_id = $1
		GROUP BY day ORDER BY day DESC`, companyID, zoneName(loc))
	if err != nil {
		return nil, fmt.Errorf("list unit creation dates: %w", err)
	}
	defer rows.Close()
	list := make([]entity.UnitCreationDate, 0)
	for rows.Next() {
		var d entity.UnitCreationDate
		var day time.Time
		if err := rows.Scan(&day, &d.Count); err != nil {
			return nil, fmt.Errorf("scan unit creation date: %w", err)
		}
		d.Date = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
		list = append(list, d)
	}
	return list, rows.Err()
}
