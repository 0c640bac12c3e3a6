// Package queries is the Postgres implementation of db.Store.
package queries

import (
	"context"
	"fmt"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/jmoiron/sqlx"
)

type Queries struct {
	db *sqlx.DB
}

var _ db.Store = (*Queries)(nil)

func New(conn *sqlx.DB) *Queries {
	return &Queries{db: conn}
}

// namedReturning runs an INSERT/UPDATE ... RETURNING statement and scans the
// first returned row back into dest. ok is false when no row came back.
func namedReturning(ctx context.Context, e sqlx.ExtContext, query string, dest interface{}) (bool, error) {
	rows, err := sqlx.NamedQueryContext(ctx, e, query, dest)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return false, rows.Err()
	}
	if err := rows.StructScan(dest); err != nil {
		return false, fmt.Errorf("scan returned row: %w", err)
	}
	return true, nil
}
