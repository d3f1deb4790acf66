package schema

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		success  bool
	}{
		{"int", "10", 10.0, true},
		{"negative", "-3", -3.0, true},
		{"float", "123.45", 123.45, true},
		{"trailing zero", "3.0", 3.0, true},
		{"exponent", "1e3", 1000.0, true},
		{"leading dot", ".5", 0.5, true},
		{"overflow", "1e400", math.Inf(1), true},
		{"nan", "NaN", math.NaN(), true},
		{"word", "abc", 0, false},
		{"empty", "", 0, false},
		{"trailing garbage", "12abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.success, ok)
			if !tt.success {
				return
			}
			if math.IsNaN(tt.expected) {
				assert.True(t, math.IsNaN(n.Float64()))
				return
			}
			assert.Equal(t, tt.expected, n.Float64())
		})
	}
}

func TestNumber_Cmp(t *testing.T) {
	three, _ := ParseNumber("3.0")
	nan := NumberFromFloat(math.NaN())
	inf := NumberFromFloat(math.Inf(1))

	tests := []struct {
		name    string
		a, b    Number
		want    int
		ordered bool
	}{
		{"int equals decimal literal", NumberFromInt(3), three, 0, true},
		{"float32 exact", NumberFromFloat32(60.5), NumberFromFloat(60.5), 0, true},
		{"uint vs int", NumberFromUint(math.MaxUint64), NumberFromInt(math.MaxInt64), 1, true},
		{"decimal vs float", NumberFromDecimal(decimal.RequireFromString("0.1")), NumberFromFloat(0.1), 0, true},
		{"less", NumberFromInt(17), NumberFromInt(18), -1, true},
		{"infinity is greatest", inf, NumberFromInt(math.MaxInt64), 1, true},
		{"nan unordered", nan, NumberFromInt(1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.a.Cmp(tt.b)
			assert.Equal(t, tt.ordered, ok)
			if tt.ordered {
				assert.Equal(t, tt.want, got)
			}
		})
	}

	assert.True(t, NumberFromInt(3).Equal(three))
	assert.False(t, nan.Equal(nan))
}

func TestNumber_String(t *testing.T) {
	assert.Equal(t, "3", NumberFromInt(3).String())
	assert.Equal(t, "0.25", NumberFromFloat(0.25).String())
	assert.Equal(t, "+Inf", NumberFromFloat(math.Inf(1)).String())
}
