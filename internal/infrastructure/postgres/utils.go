package postgres

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Ey-luccas/luanova-sub000/internal/domain"
)

// SQLSTATE que indican contención entre transacciones.
const (
	sqlStateLockNotAvailable     = "55P03" // lock_timeout vencido
	sqlStateDeadlockDetected     = "40P01"
	sqlStateSerializationFailure = "40001"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// mapLockFailure convierte contención de locks en ConflictError (409, reintentable por el cliente).
func mapLockFailure(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case sqlStateLockNotAvailable, sqlStateDeadlockDetected, sqlStateSerializationFailure:
		return domain.NewConflict("transacción", "recurso bloqueado por otra operación, reintente")
	}
	return err
}

// zoneName nombre IANA para AT TIME ZONE. "Local" no existe en PostgreSQL: cae a UTC.
func zoneName(loc *time.Location) string {
	if loc == nil || loc.String() == "Local" {
		return "UTC"
	}
	return loc.String()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeContains patrón ILIKE de coincidencia parcial literal: %, _ y \ del usuario no son comodines.
func likeContains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// whereBuilder arma cláusulas WHERE con placeholders numerados.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "?", placeholder(len(w.args))))
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
