package schema

import (
	"cmp"
	"errors"
	"math"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// Number is a numeric field value or argument. Finite values are held as
// exact decimals so that 3, 3.0 and "3.00" compare equal regardless of the
// Go type they came from. NaN and the infinities are kept as float64.
type Number struct {
	dec    decimal.Decimal
	f      float64
	finite bool
}

// NumberFromInt returns the Number for a signed integer.
func NumberFromInt(i int64) Number {
	return Number{dec: decimal.NewFromInt(i), f: float64(i), finite: true}
}

// NumberFromUint returns the Number for an unsigned integer.
func NumberFromUint(u uint64) Number {
	return Number{dec: decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0), f: float64(u), finite: true}
}

// NumberFromFloat returns the Number for a float64.
func NumberFromFloat(f float64) Number {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{f: f}
	}
	return Number{dec: decimal.NewFromFloat(f), f: f, finite: true}
}

// NumberFromFloat32 returns the Number for a float32 using its shortest
// float32 representation, so float32(60.5) and "60.5" are equal.
func NumberFromFloat32(f float32) Number {
	f64 := float64(f)
	if math.IsNaN(f64) || math.IsInf(f64, 0) {
		return Number{f: f64}
	}
	return Number{dec: decimal.NewFromFloat32(f), f: f64, finite: true}
}

// NumberFromDecimal returns the Number for a decimal.
func NumberFromDecimal(d decimal.Decimal) Number {
	f, _ := d.Float64()
	return Number{dec: d, f: f, finite: true}
}

// ParseNumber parses s as a decimal floating-point literal. It reports false
// if s is not numeric. Literals too large for a float64 still count as
// numeric and become infinities.
func ParseNumber(s string) (Number, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Number{}, false
	}
	if d, derr := decimal.NewFromString(s); derr == nil && err == nil {
		return Number{dec: d, f: f, finite: true}, true
	}
	return NumberFromFloat(f), true
}

// Cmp compares n and o. It reports false when the two are not ordered,
// which only happens when either is NaN.
func (n Number) Cmp(o Number) (int, bool) {
	if n.finite && o.finite {
		return n.dec.Cmp(o.dec), true
	}
	if math.IsNaN(n.f) || math.IsNaN(o.f) {
		return 0, false
	}
	return cmp.Compare(n.f, o.f), true
}

// Equal reports whether n and o have the same numeric value.
func (n Number) Equal(o Number) bool {
	c, ok := n.Cmp(o)
	return ok && c == 0
}

// Float64 returns the nearest float64 to n.
func (n Number) Float64() float64 {
	return n.f
}

func (n Number) String() string {
	if n.finite {
		return n.dec.String()
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64)
}
