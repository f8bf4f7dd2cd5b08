package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// IsNoRows checks if the error means the query matched no rows.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
