package postgres

import (
	"database/sql"
)

// requireRowAffected maps zero-row updates/deletes onto sql.ErrNoRows so
// services can treat them like a failed lookup.
func requireRowAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
