package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONColumn stores a value as a JSONB column
type JSONColumn[T any] struct {
	Data T
}

// NewJSONColumn wraps v for storage
func NewJSONColumn[T any](v T) JSONColumn[T] {
	return JSONColumn[T]{Data: v}
}

// Value implements driver.Valuer
func (j JSONColumn[T]) Value() (driver.Value, error) {
	return json.Marshal(j.Data)
}

// Scan implements sql.Scanner
func (j *JSONColumn[T]) Scan(value any) error {
	if value == nil {
		var zero T
		j.Data = zero
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, &j.Data)
	case string:
		return json.Unmarshal([]byte(v), &j.Data)
	default:
		return fmt.Errorf("json column: unsupported scan type %T", value)
	}
}
