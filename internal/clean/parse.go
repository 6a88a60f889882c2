package clean

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/district-etl/internal/model"
)

// ParseNumber coerces a raw cell to a number. Thousands separators and all
// whitespace are removed first. Empty, unparseable, negative, and non-finite
// input yields Missing.
func ParseNumber(s string) model.Value {
	s = strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return model.Missing
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return model.Missing
	}
	return model.Num(f)
}

// Round2 rounds x to two decimals, half to even.
func Round2(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}

// Percent returns part/total*100 rounded to two decimals. It is missing when
// either operand is missing or total is zero.
func Percent(part, total model.Value) model.Value {
	p, ok := part.Float()
	if !ok {
		return model.Missing
	}
	t, ok := total.Float()
	if !ok || t == 0 {
		return model.Missing
	}
	return model.Num(Round2(p / t * 100))
}

// SumAll adds the values. Any missing operand makes the sum missing.
func SumAll(vals ...model.Value) model.Value {
	var sum float64
	for _, v := range vals {
		f, ok := v.Float()
		if !ok {
			return model.Missing
		}
		sum += f
	}
	return model.Num(sum)
}

// District canonicalizes a district label: surrounding whitespace is trimmed
// and the text is put in Unicode NFC form.
func District(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// getCol gets a column value by name from a record, returning "" if absent.
func getCol(record []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// findCol returns the first of names present in colIdx.
func findCol(colIdx map[string]int, names ...string) (string, bool) {
	for _, n := range names {
		if _, ok := colIdx[n]; ok {
			return n, true
		}
	}
	return "", false
}
