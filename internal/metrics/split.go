package metrics

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultPrecision is the number of decimal places targets are split to.
const DefaultPrecision = 2

// ProportionalSplit divides total into n equal parts rounded to precision
// decimal places. Whatever rounding leaves over is added to the first part,
// so the parts always sum back to total. The leftover is not itself rounded
// and is added even when it is below one unit of precision, so no cent is
// dropped. n <= 0 yields nil. A non-finite total is divided as a plain float.
func ProportionalSplit(total float64, n, precision int) []float64 {
	if n <= 0 {
		return nil
	}
	if math.IsInf(total, 0) || math.IsNaN(total) {
		out := make([]float64, n)
		for i := range out {
			out[i] = total / float64(n)
		}
		return out
	}
	whole := decimal.NewFromFloat(total)
	count := decimal.NewFromInt(int64(n))
	base := whole.Div(count).Round(int32(precision))

	parts := make([]decimal.Decimal, n)
	for i := range parts {
		parts[i] = base
	}
	if drift := whole.Sub(base.Mul(count)); !drift.IsZero() {
		parts[0] = parts[0].Add(drift)
	}

	out := make([]float64, n)
	for i, p := range parts {
		out[i] = p.InexactFloat64()
	}
	return out
}

// SplitBundle splits every field of b across n periods at DefaultPrecision.
func SplitBundle(b Bundle, n int) []Bundle {
	if n <= 0 {
		return nil
	}
	var columns [6][]float64
	for i, v := range b.Values() {
		columns[i] = ProportionalSplit(v, n, DefaultPrecision)
	}
	out := make([]Bundle, n)
	for p := range out {
		var v [6]float64
		for i := range v {
			v[i] = columns[i][p]
		}
		out[p] = FromValues(v)
	}
	return out
}
