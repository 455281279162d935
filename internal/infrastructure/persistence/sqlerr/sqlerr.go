// Package sqlerr keeps driver errors inspectable after GORM's error
// translation and matches unique violations to the index that raised them.
package sqlerr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// Dialector wraps a GORM dialector so that translated errors still unwrap to
// the driver error. errors.Is matches the gorm sentinel (gorm.ErrDuplicatedKey)
// while errors.As reaches the *pgconn.PgError and its constraint name.
func Dialector(d gorm.Dialector) gorm.Dialector {
	return translating{Dialector: d}
}

type translating struct {
	gorm.Dialector
}

// Translate implements gorm.ErrorTranslator
func (d translating) Translate(err error) error {
	tr, ok := d.Dialector.(gorm.ErrorTranslator)
	if !ok {
		return err
	}
	translated := tr.Translate(err)
	if translated == err || translated == nil {
		return translated
	}
	return &driverError{sentinel: translated, cause: err}
}

// SavePoint implements gorm.SavePointerDialectorInterface
func (d translating) SavePoint(tx *gorm.DB, name string) error {
	if sp, ok := d.Dialector.(gorm.SavePointerDialectorInterface); ok {
		return sp.SavePoint(tx, name)
	}
	return gorm.ErrUnsupportedDriver
}

// RollbackTo implements gorm.SavePointerDialectorInterface
func (d translating) RollbackTo(tx *gorm.DB, name string) error {
	if sp, ok := d.Dialector.(gorm.SavePointerDialectorInterface); ok {
		return sp.RollbackTo(tx, name)
	}
	return gorm.ErrUnsupportedDriver
}

type driverError struct {
	sentinel error
	cause    error
}

func (e *driverError) Error() string { return e.cause.Error() }

func (e *driverError) Unwrap() []error { return []error{e.sentinel, e.cause} }

// UniqueIndex names a unique index and the columns it covers
type UniqueIndex struct {
	Name    string
	Table   string
	Columns []string
}

// ViolatedBy reports whether err is a unique violation raised by this index.
// PostgreSQL names the constraint; SQLite names the index only for expression
// indexes and otherwise lists the indexed columns.
func (idx UniqueIndex) ViolatedBy(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == idx.Name
	}

	msg := err.Error()
	if strings.Contains(msg, "duplicate key value") {
		return strings.Contains(msg, `"`+idx.Name+`"`)
	}

	const sqlitePrefix = "UNIQUE constraint failed: "
	i := strings.Index(msg, sqlitePrefix)
	if i < 0 {
		return false
	}
	failed := strings.TrimSpace(msg[i+len(sqlitePrefix):])
	if failed == "index '"+idx.Name+"'" {
		return true
	}
	cols := make([]string, len(idx.Columns))
	for j, c := range idx.Columns {
		cols[j] = idx.Table + "." + c
	}
	return failed == strings.Join(cols, ", ")
}
