package model

import (
	"strconv"
)

// Kind identifies what a Value holds.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// Value is a single table cell: a number, a text label, or missing.
// The zero value is missing.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Missing is the missing cell.
var Missing = Value{}

// Num returns a numeric cell.
func Num(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Text returns a text cell.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Kind returns what the cell holds.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the cell has no value.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric value and whether the cell is a number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Str returns the cell as it is written to a delimited file: the text for
// text cells, the shortest exact decimal for numbers, and "" for missing.
func (v Value) Str() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.kind == KindMissing {
		return "<missing>"
	}
	return v.Str()
}

// Any returns the cell as a database parameter: float64, string, or nil.
func (v Value) Any() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.text
	default:
		return nil
	}
}
