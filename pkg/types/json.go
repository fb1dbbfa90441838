package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON array columns share one codec: nil persists as [] and NULL scans to nil.

func encodeArray[T any](items []T) (driver.Value, error) {
	if len(items) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(items)
}

func decodeArray[T any](src any, dst *[]T) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*dst = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("json column: cannot scan %T", src)
	}
	if len(raw) == 0 {
		*dst = nil
		return nil
	}
	var decoded []T
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("json column: %w", err)
	}
	*dst = decoded
	return nil
}
