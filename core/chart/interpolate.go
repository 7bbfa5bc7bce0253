package chart

import (
	"math"

	"github.com/volatiletech/null/v8"
)

// Interpolate fills the null samples lying between two non-null samples of raw by linear interpolation,
// rounded up. Only samples of raw are used as anchors, so the result does not depend on the fill order.
// Leading and trailing nulls are left as they are. raw is not modified.
func Interpolate(raw []null.Float64) []null.Float64 {
	filled := make([]null.Float64, len(raw))
	copy(filled, raw)

	for i := range raw {
		if raw[i].Valid {
			continue
		}
		x1 := i - 1
		for x1 >= 0 && !raw[x1].Valid {
			x1--
		}
		x2 := i + 1
		for x2 < len(raw) && !raw[x2].Valid {
			x2++
		}
		if x1 < 0 || x2 >= len(raw) {
			continue
		}
		y1, y2 := raw[x1].Float64, raw[x2].Float64
		filled[i] = null.Float64From(math.Ceil(y1 + float64(i-x1)*(y2-y1)/float64(x2-x1)))
	}
	return filled
}
