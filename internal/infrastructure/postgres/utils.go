package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único
// (23505). El kardex lo usa para distinguir la colisión de un número de
// documento (reintentable) de cualquier otro fallo de escritura.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// nullable mapea la convención de los entities ('' = sin valor) a NULL en las
// columnas opcionales con FK (lot_id, reversal_of_id, entry_id): un '' no-NULL
// dispararía la FK.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
