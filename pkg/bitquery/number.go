package bitquery

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Number Bitquery 返回的数值，可能是数字也可能是字符串。
// null、空串、NaN、Infinity 以及无法解析的值都视为缺失，不影响整个响应的解析。
type Number struct {
	Value decimal.Decimal
	Valid bool
}

func NewNumber(d decimal.Decimal) Number {
	return Number{Value: d, Valid: true}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	switch strings.ToLower(s) {
	case "", "null", "nan", "infinity", "+infinity", "-infinity", "inf", "-inf":
		*n = Number{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		*n = Number{}
		return nil
	}
	*n = NewNumber(d)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(n.Value.String()), nil
}

// Ptr 缺失时返回 nil
func (n Number) Ptr() *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Value
	return &d
}

// IntPart 缺失时为 0
func (n Number) IntPart() int64 {
	if !n.Valid {
		return 0
	}
	return n.Value.IntPart()
}

func (n Number) Positive() bool {
	return n.Valid && n.Value.IsPositive()
}

func (n Number) String() string {
	if !n.Valid {
		return ""
	}
	return n.Value.String()
}
