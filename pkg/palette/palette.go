// Package palette turns numeric metric values into discrete map and chart colors.
package palette

import (
	"fmt"
	"math"
	"strings"
)

// NoData is the fill used for regions without a value.
const NoData = "#d9d9d9"

// LegendNoData is the legend swatch for regions without a value.
const LegendNoData = "#F2EFEA"

// Sequential palettes used for choropleth fills. Index 0 is the no-data / below-minimum color.
var (
	Yellow = []string{NoData, "#FED976", "#FEB24C", "#FD8D3C", "#FC4E2A", "#E31A1C", "#BD0026", "#800026"}
	Blue   = []string{NoData, "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"}
	Grey   = []string{NoData, "#bdbdbd", "#969696", "#737373", "#525252", "#252525", "#000000"}
)

// SeriesColors is the qualitative palette handed out to chart series in rank order.
var SeriesColors = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Fixed series colors for regions that did not get a palette slot.
const (
	SubstituteColor      = "#D3D3D3"
	SubstituteFocusColor = "#FECB52"
	GlyphColor           = "#aaa"
)

// ByName resolves a palette by its configuration name.
func ByName(name string) ([]string, bool) {
	switch strings.ToLower(name) {
	case "yellow", "":
		return Yellow, true
	case "blue":
		return Blue, true
	case "grey", "gray":
		return Grey, true
	}
	return nil, false
}

// Transparentize appends an alpha byte to a #RRGGBB color. opacity is the amount
// of transparency to add, so 0.8 yields an alpha of 0.2 (#RRGGBB33).
func Transparentize(color string, opacity float64) string {
	alpha := 1 - opacity
	if alpha == 0 {
		alpha = 1
	}
	alpha = clamp(alpha, 0, 1)
	return color + fmt.Sprintf("%02X", int(math.Round(alpha*255)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
