package plate

import (
	"fmt"
	"strings"
)

// Field names one independently constrained part of a multi-part plate.
// The string value doubles as the element id used for focus transfer.
type Field string

const (
	FieldCityCode Field = "cityCode"
	FieldLetters  Field = "letters"
	FieldNumbers  Field = "numbers"
)

// Fields lists the plate fields in input order.
var Fields = []Field{FieldCityCode, FieldLetters, FieldNumbers}

func ParseField(raw string) (Field, error) {
	for _, f := range Fields {
		if strings.EqualFold(raw, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown plate field %q", raw)
}

func (f Field) Valid() bool {
	switch f {
	case FieldCityCode, FieldLetters, FieldNumbers:
		return true
	}
	return false
}

// Cap is the maximum number of runes the field accepts.
func (f Field) Cap() int {
	switch f {
	case FieldCityCode:
		return 3
	case FieldLetters:
		return 2
	case FieldNumbers:
		return 4
	}
	return 0
}

// Next returns the field that receives focus after f. The last field has none.
func (f Field) Next() (Field, bool) {
	switch f {
	case FieldCityCode:
		return FieldLetters, true
	case FieldLetters:
		return FieldNumbers, true
	}
	return "", false
}

// AutoAdvances reports whether filling f up to its cap moves focus on.
func (f Field) AutoAdvances() bool {
	_, ok := f.Next()
	return ok
}

func (f Field) String() string {
	return string(f)
}
