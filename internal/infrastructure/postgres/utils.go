package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Activos-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation verifica si un error es una violación de llave foránea (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return false
}

// isCheckViolation verifica si un error es una violación de CHECK (23514).
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23514" // check_violation
	}
	return false
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// mapWriteError traduce errores de INSERT/UPDATE a errores de dominio.
// Una FK rota al escribir significa que la referencia no existe.
func mapWriteError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s", domain.ErrUniquenessViolation, constraintName(err))
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %s", domain.ErrDanglingReference, constraintName(err))
	case isCheckViolation(err):
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, constraintName(err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// mapDeleteError traduce errores de DELETE: una FK rota significa que la fila sigue referenciada.
func mapDeleteError(op string, err error, referenced error) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s", referenced, constraintName(err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
