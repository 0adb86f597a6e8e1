package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Profile is the raw profile returned by an external provider, stored as JSON text.
type Profile map[string]interface{}

func (p Profile) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *Profile) Scan(destination interface{}) error {
	var b []byte
	switch value := destination.(type) {
	case nil:
		*p = nil
		return nil
	case string:
		b = []byte(value)
	case []byte:
		b = value
	default:
		return fmt.Errorf("unexpected data type %T", destination)
	}

	var result map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.UseNumber()
	if err := decoder.Decode(&result); err != nil {
		return err
	}
	*p = result
	return nil
}

// GormDataType gorm common data type
func (Profile) GormDataType() string {
	return "json"
}

// GormDBDataType gorm db data type
func (Profile) GormDBDataType() string {
	return "text"
}
