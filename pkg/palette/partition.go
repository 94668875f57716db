package palette

import (
	"math"
)

// DefaultBoundaries is used whenever no partition can be derived from the data.
var DefaultBoundaries = []float64{0, 0.05, 0.1, 0.2, 0.3, 0.5}

// countFloor is the lower boundary forced on count-scaled metrics (any maximum above 1).
// It is a domain approximation that separates rates from counts.
const countFloor = 50

const bins = 5

// Table pairs partition boundaries with the colors they select.
// len(Colors) == len(Boundaries)+1 and Colors[0] is the no-data color.
type Table struct {
	Boundaries []float64 `json:"boundaries"`
	Colors     []string  `json:"colors"`
}

// NewTable builds a table for the given boundaries, trimming or padding the palette
// so there is exactly one color per bucket plus the no-data slot.
func NewTable(boundaries []float64, colors []string) Table {
	if len(colors) == 0 {
		colors = Yellow
	}
	n := len(boundaries) + 1
	out := make([]string, n)
	for i := range out {
		if i < len(colors) {
			out[i] = colors[i]
		} else {
			out[i] = colors[len(colors)-1]
		}
	}
	b := make([]float64, len(boundaries))
	copy(b, boundaries)
	return Table{Boundaries: b, Colors: out}
}

// NoDataColor is the color returned for missing values.
func (t Table) NoDataColor() string {
	if len(t.Colors) == 0 {
		return NoData
	}
	return t.Colors[0]
}

// ColorFor maps v onto the table. NaN is treated as missing.
func (t Table) ColorFor(v float64) string {
	return ColorFor(v, t.Boundaries, t.Colors)
}

// Bucket returns the color index selected for v: 0 for missing or below the
// first boundary, i+1 for the highest boundary i with v >= boundaries[i].
func Bucket(v float64, boundaries []float64) int {
	if math.IsNaN(v) {
		return 0
	}
	for i := len(boundaries) - 1; i >= 0; i-- {
		if v >= boundaries[i] {
			return i + 1
		}
	}
	return 0
}

// ColorFor returns colors[Bucket(v, boundaries)], clamping to the last color when
// the palette is shorter than the boundary list.
func ColorFor(v float64, boundaries []float64, colors []string) string {
	if len(colors) == 0 {
		return NoData
	}
	idx := Bucket(v, boundaries)
	if idx >= len(colors) {
		idx = len(colors) - 1
	}
	return colors[idx]
}

// Partition computes six boundaries from the per-region maxima and minima of a
// metric: 0 followed by five equal-width steps starting at the largest minimum.
func Partition(values, minValues []float64) []float64 {
	if len(values) == 0 || len(minValues) == 0 {
		return append([]float64(nil), DefaultBoundaries...)
	}
	low := maxOf(minValues)
	high := maxOf(values)
	// TODO: replace with a scale switch carried by the metric definition.
	if high > 1 {
		low = countFloor
	}
	inc := (high - low) / bins
	if inc < 0 {
		inc = 0
	}

	out := make([]float64, 0, bins+1)
	out = append(out, 0)
	for i := 0; i < bins; i++ {
		out = append(out, low+inc*float64(i))
	}
	for _, b := range out {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return append([]float64(nil), DefaultBoundaries...)
		}
	}

	places := decimalPlaces(out[1])
	for i := range out {
		out[i] = roundTo(out[i], places)
	}
	return out
}

// decimalPlaces is |exponent of v in scientific notation| + 1, never below 3.
func decimalPlaces(v float64) int {
	exp := 0
	if v != 0 {
		exp = int(math.Floor(math.Log10(math.Abs(v))))
	}
	if exp < 0 {
		exp = -exp
	}
	d := exp + 1
	if d < 3 {
		d = 3
	}
	return d
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func maxOf(vs []float64) float64 {
	m := math.Inf(-1)
	for _, v := range vs {
		if math.IsNaN(v) {
			continue
		}
		if v > m {
			m = v
		}
	}
	return m
}
