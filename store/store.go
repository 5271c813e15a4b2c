// Package store holds the small SQL building blocks shared by the booking,
// payment and ticket services.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const duplicateEntry = 1062

// Create inserts one row and returns its auto-increment id.
func Create(tx *sql.Tx, table string, cols []string, values []interface{}) (int64, error) {
	var params []string

	for range cols {
		params = append(params, "?")
	}

	tsql := fmt.Sprintf(`INSERT INTO %s(%s) VALUES (%s);`, table, strings.Join(cols, ", "), strings.Join(params, ", "))

	stmt, err := tx.Prepare(tsql)
	if err != nil {
		return -1, fmt.Errorf("create: error preparing sql query: %s", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(values...)
	if err != nil {
		return -1, fmt.Errorf("create: unable to insert record in %s: %w", table, err)
	}

	return result.LastInsertId()
}

// Update applies SET cols=values under the given conditions and reports how
// many rows changed. A zero count is the caller's signal that a conditional
// write lost its race.
func Update(tx *sql.Tx, table string, cols []string, values []interface{}, column []string, value []interface{}) (int64, error) {
	values = append(values, value...)
	var set []string

	for _, col := range cols {
		set = append(set, fmt.Sprintf("%s = ?", col))
	}

	var conds []string

	for _, c := range column {
		conds = append(conds, fmt.Sprintf("%s = ?", c))
	}

	tsql := fmt.Sprintf(`UPDATE %s SET %s WHERE %s;`, table, strings.Join(set, ","), strings.Join(conds, " AND "))

	stmt, err := tx.Prepare(tsql)
	if err != nil {
		return -1, fmt.Errorf("update: error preparing sql query: %s", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(values...)
	if err != nil {
		return -1, fmt.Errorf("update: unable to update record in %s: %w", table, err)
	}

	return result.RowsAffected()
}

// IsDuplicate reports whether err is a unique-key violation. Every
// idempotency guard in the workflow leans on this as its last line of
// defense.
func IsDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == duplicateEntry
}
