package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Numeric is a lenient decimal. Missing or non-numeric input is undefined and reads as zero.
type Numeric struct {
	value decimal.NullDecimal
}

func NewNumeric(d decimal.Decimal) Numeric {
	return Numeric{value: decimal.NullDecimal{Decimal: d, Valid: true}}
}

func NumericFromInt(v int64) Numeric {
	return NewNumeric(decimal.NewFromInt(v))
}

// ParseNumeric never fails. Unparseable text yields an undefined Numeric.
func ParseNumeric(raw string) Numeric {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return Numeric{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Numeric{}
	}
	return NewNumeric(d)
}

func (n Numeric) Defined() bool {
	return n.value.Valid
}

func (n Numeric) Decimal() decimal.Decimal {
	if !n.value.Valid {
		return decimal.Zero
	}
	return n.value.Decimal
}

func (n Numeric) String() string {
	return n.Decimal().String()
}

func (n Numeric) Equal(other Numeric) bool {
	return n.value.Valid == other.value.Valid && n.Decimal().Equal(other.Decimal())
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.value.Valid {
		return []byte("null"), nil
	}
	return []byte(n.value.Decimal.String()), nil
}

func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Numeric{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = Numeric{}
			return nil
		}
		*n = ParseNumeric(s)
		return nil
	}
	*n = ParseNumeric(string(data))
	return nil
}

func (n *Numeric) Scan(src any) error {
	var v decimal.NullDecimal
	if err := v.Scan(src); err != nil {
		return err
	}
	n.value = v
	return nil
}

func (n Numeric) Value() (driver.Value, error) {
	if !n.value.Valid {
		return nil, nil
	}
	return n.value.Decimal.String(), nil
}
