package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/district-etl/internal/model"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want model.Value
	}{
		{"1,000", model.Num(1000)},
		{" 2,500 ", model.Num(2500)},
		{"1 234 567", model.Num(1234567)},
		{"3.75", model.Num(3.75)},
		{"0", model.Num(0)},
		{"", model.Missing},
		{"   ", model.Missing},
		{"-", model.Missing},
		{"n/a", model.Missing},
		{"-5", model.Missing},
		{"NaN", model.Missing},
		{"Inf", model.Missing},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumber(tt.in))
		})
	}
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 33.33, Round2(100.0/3), 1e-9)
	assert.InDelta(t, 66.67, Round2(200.0/3), 1e-9)
	assert.InDelta(t, 20.0, Round2(20), 1e-9)
	assert.InDelta(t, 0.12, Round2(0.125), 1e-9) // half to even
}

func TestRound2_Idempotent(t *testing.T) {
	for k := 0; k <= 10000; k++ {
		v := Round2(float64(k) / 7)
		assert.Equal(t, v, Round2(v))

		// re-reading the written cell does not change it
		f, ok := ParseNumber(model.Num(v).Str()).Float()
		assert.True(t, ok)
		assert.Equal(t, v, f)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, model.Num(25), Percent(model.Num(1), model.Num(4)))
	assert.Equal(t, model.Missing, Percent(model.Missing, model.Num(4)))
	assert.Equal(t, model.Missing, Percent(model.Num(1), model.Missing))
	assert.Equal(t, model.Missing, Percent(model.Num(0), model.Num(0)))
}

func TestSumAll(t *testing.T) {
	assert.Equal(t, model.Num(6), SumAll(model.Num(1), model.Num(2), model.Num(3)))
	assert.Equal(t, model.Missing, SumAll(model.Num(1), model.Missing))
	assert.Equal(t, model.Num(0), SumAll())
}

func TestDistrict(t *testing.T) {
	assert.Equal(t, "Taipei City", District("  Taipei City\t"))
	// decomposed e + combining acute becomes the precomposed form
	assert.Equal(t, "caf\u00e9", District("cafe\u0301"))
	assert.Equal(t, "", District("   "))
}

func TestFindCol(t *testing.T) {
	idx := map[string]int{"City": 0, "Income": 1}
	got, ok := findCol(idx, "District", "City")
	assert.True(t, ok)
	assert.Equal(t, "City", got)

	_, ok = findCol(idx, "Nope")
	assert.False(t, ok)

	assert.Equal(t, "", getCol([]string{"a"}, idx, "Income"))
	assert.Equal(t, "a", getCol([]string{"a"}, idx, "City"))
}
