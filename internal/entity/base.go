package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
	"time"
)

type Base struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SnowFlakeBase struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}

// BigInt stores an arbitrary precision integer as its decimal string.
type BigInt struct {
	big.Int
}

func NewBigInt(v *big.Int) BigInt {
	var b BigInt
	if v != nil {
		b.Int.Set(v)
	}

	return b
}

func ZeroBigInt() BigInt {
	return BigInt{}
}

// Big returns a copy of the value that can be mutated freely.
func (b *BigInt) Big() *big.Int {
	return new(big.Int).Set(&b.Int)
}

func (b *BigInt) Scan(obj any) error {
	var s string
	switch t := obj.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	case int64:
		b.Int.SetInt64(t)
		return nil
	case nil:
		b.Int.SetInt64(0)
		return nil
	default:
		return fmt.Errorf("cannot scan invalid data type %T", obj)
	}

	if _, ok := b.Int.SetString(s, 10); !ok {
		return fmt.Errorf("cannot parse %q as integer", s)
	}

	return nil
}

func (b BigInt) Value() (driver.Value, error) {
	return b.Int.String(), nil
}

func (BigInt) GormDataType() string {
	return "string"
}

type Map map[string]any

func (m *Map) Scan(value any) error {
	switch t := value.(type) {
	case string:
		return json.Unmarshal([]byte(t), m)
	case []byte:
		return json.Unmarshal(t, m)
	default:
		return fmt.Errorf("cannot scan invalid data type %T", value)
	}
}

func (m Map) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (Map) GormDataType() string {
	return "json"
}
