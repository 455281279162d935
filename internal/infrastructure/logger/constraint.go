package logger

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isConstraintViolation matches translated and raw unique violations of postgres and sqlite
func isConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
