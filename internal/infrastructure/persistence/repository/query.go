package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/garyjia/field-service/internal/application/port"
)

// whereBuilder accumulates AND-ed predicates for a listing query
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (w *whereBuilder) add(clause string, args ...interface{}) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// paginate appends LIMIT/OFFSET; SQLite needs a LIMIT for any OFFSET
func paginate(query string, args []interface{}, limit, offset int) (string, []interface{}) {
	switch {
	case limit > 0:
		return query + " LIMIT ? OFFSET ?", append(args, limit, offset)
	case offset > 0:
		return query + " LIMIT -1 OFFSET ?", append(args, offset)
	default:
		return query, args
	}
}

// translateError maps driver constraint violations onto port errors
func translateError(err error, action string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("failed to %s: %w", action, port.ErrDuplicate)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func nullableInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
