package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata is a free-form JSON side-channel stored in a text column.
// Callers work with a map; the JSON encoding is a storage detail.
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("metadata: unsupported scan type %T", value)
	}
	if len(b) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(b, m)
}

// UintList is a JSON-encoded list of ids, used for the failed-investments
// list on a settlement run.
type UintList []uint

func (l UintList) Value() (driver.Value, error) {
	if l == nil {
		l = UintList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *UintList) Scan(value interface{}) error {
	if value == nil {
		*l = UintList{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("uint list: unsupported scan type %T", value)
	}
	if len(b) == 0 {
		*l = UintList{}
		return nil
	}
	return json.Unmarshal(b, l)
}
