package chart

import (
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/sudorandom/regionviz/pkg/dataset"
	"github.com/sudorandom/regionviz/pkg/palette"
	"github.com/sudorandom/regionviz/pkg/ranking"
)

const (
	XAxisDate   = "Date"
	hoverDate   = "Date"
	hoverDays   = "Days"
	adminType   = "Countries"
	fontFamily  = `"IBM Plex Sans", "Open Sans", verdana, arial, sans-serif`
	borderColor = "#cccccc"

	LegendClickID = "legend_click"
	ShowLegend    = `<a href="">Show legend</a>`
	HideLegend    = `<a href="">Hide legend</a>`

	labelLimit = 15
	labelTrail = "..."

	hoverTemplate  = "<b>%{meta.fullName}</b><br><b>%{meta.hoverXLabel}:</b> %{x|%Y}<br><b>%{meta.yLabel}:</b> %{y:.2f}"
	markerTemplate = "<b>%{meta.fullName}</b><br><b>%{meta.npi_name}</b><br><b>%{meta.hoverXLabel}:</b> %{x|%Y}<br><b>%{meta.yLabel}:</b> %{y:.2f}"
)

var removedButtons = []string{
	"pan2d", "zoom2d", "select2d", "lasso2d", "resetScale2d",
	"hoverClosestCartesian", "hoverCompareCartesian", "toggleSpikelines",
}

// Controls are the control-panel inputs that shape the chart.
type Controls struct {
	Metric      string // display name, used as y-axis title and header
	Field       string // dataset field backing Metric
	XAxis       string
	YScale      string // "linear" or "log"
	Per100k     string
	DataSources string
	TopK        int
	Year        int // last year plotted
}

// Selection is the map-side region selection. Geo == ParentGeo means nothing is selected.
type Selection struct {
	Geo       string
	ParentGeo string
}

func (s Selection) active() bool {
	return s.Geo != "" && s.Geo != s.ParentGeo
}

// Empty returns a description with layout and config set but no traces or annotations.
func Empty(c Controls) *Description {
	xType, xLabel := "linear", c.XAxis
	if c.XAxis == XAxisDate {
		xType, xLabel = "date", ""
	}
	yType := c.YScale
	if yType == "" {
		yType = "linear"
	}
	font := Font{Family: fontFamily}
	return &Description{
		Header: c.Metric,
		Data:   []Trace{},
		Layout: Layout{
			Font: font,
			XAxis: Axis{
				Type:          xType,
				Title:         Title{Text: xLabel, Standoff: 10},
				GridColor:     "#F2F2F2",
				LineColor:     "#E5E5E5",
				AutoMargin:    true,
				ZeroLineColor: "#E5E5E5",
				ZeroLineWidth: 2,
			},
			YAxis: Axis{
				Type:          yType,
				Title:         Title{Text: c.Metric, Standoff: 15},
				GridColor:     "#F2F2F2",
				LineColor:     "#E5E5E5",
				AutoMargin:    true,
				ZeroLineColor: "#E5E5E5",
				ZeroLineWidth: 2,
				FixedRange:    true,
				HoverFormat:   ".2f",
				RangeMode:     "tozero",
			},
			HoverLabel: HoverLabel{Font: font, Align: "left"},
			HoverMode:  "closest",
			Height:     530,
			AutoSize:   true,
			Legend: Legend{
				BorderWidth: 1,
				BorderColor: borderColor,
				XAnchor:     "center",
				X:           0.75,
				Y:           0.15,
				Orientation: "v",
				Font:        Font{Family: fontFamily, Size: 10},
			},
			PlotBGColor: "#ffffff",
			Annotations: []Annotation{},
			Shapes:      []Shape{},
		},
		Config: Config{
			Responsive:             true,
			ModeBarButtonsToRemove: append([]string(nil), removedButtons...),
		},
	}
}

// Build turns a ranked selection into the overview chart: one line per region, the
// region's interventions as markers, and the header and legend-toggle annotations.
// The first k3rd regions get a palette color; the rest are drawn as grey substitutes.
func Build(ranked []string, ds *dataset.Dataset, c Controls, sel Selection) *Description {
	d := Empty(c)
	if len(ranked) == 0 || ds.Len() == 0 || c.Field == "" {
		return d
	}
	log := zap.L().Named("chart")

	_, k3rd := ranking.K3rd(c.TopK, len(ranked))
	colors := palette.SeriesColors[:min(k3rd, len(palette.SeriesColors))]

	hoverX := hoverDays
	if c.XAxis == XAxisDate {
		hoverX = hoverDate
	}

	for idx, id := range ranked {
		r, ok := ds.Get(id)
		if !ok {
			log.Debug("ranked region missing from dataset", zap.String("admin", id))
			continue
		}
		xs, ys := points(r, c)

		color := ""
		if idx < len(colors) {
			color = colors[idx]
		}
		substitute := color == ""

		var meta Meta
		if substitute {
			meta = Meta{
				Width: 1, WidthFocus: 3, WidthNoFocus: 1,
				Color: palette.SubstituteColor, ColorFocus: palette.SubstituteFocusColor, ColorNoFocus: palette.SubstituteColor,
				Substitute: true,
			}
		} else {
			meta = Meta{
				Width: 2, WidthFocus: 3, WidthNoFocus: 1,
				Color: color, ColorFocus: color, ColorNoFocus: palette.Transparentize(color, 0.8),
			}
		}
		meta.Kind = KindLine
		meta.Admin = id
		meta.HoverXLabel = hoverX
		meta.YLabel = c.Metric
		meta.FullName = r.Name

		width, lineColor := meta.Width, meta.Color
		if sel.active() {
			if sel.Geo == id {
				width = 3
			} else {
				width = 1
				if !substitute {
					lineColor = palette.Transparentize(color, 0.8)
				}
			}
		}

		t := Trace{
			Mode:          "lines",
			Type:          "scatter",
			Name:          r.Name,
			X:             xs,
			Y:             ys,
			Visible:       true,
			Marker:        Marker{Color: lineColor},
			Line:          &Line{Width: width},
			Meta:          &meta,
			HoverTemplate: hoverTemplate,
		}
		if !substitute {
			t.LegendGroup = id
		}
		d.addTrace(t)

		if y, ok := labelY(ys, c.YScale); !substitute && ok {
			d.addAnnotation(Annotation{
				X:       xs[len(xs)-1],
				Y:       y,
				XRef:    "x",
				YRef:    "y",
				Text:    Truncate(r.Name, labelLimit, labelTrail),
				Font:    Font{Family: fontFamily, Size: 10},
				XAnchor: "left",
				YAnchor: "center",
				Visible: true,
			})
		}

		markerColor := meta.Color
		if substitute {
			markerColor = palette.SubstituteFocusColor
		}
		for _, iv := range ds.Interventions[id] {
			addIntervention(d, r, iv, c, hoverX, markerColor, substitute)
		}
	}

	header := fmt.Sprintf("<b>%d</b> top K %s | <b>%s</b> x-axis | <b>%s</b> y-scale | <b>%s</b> normalization | <b>%s</b> source(s)",
		c.TopK, adminType, c.XAxis, c.YScale, c.Per100k, c.DataSources)
	d.addAnnotation(Annotation{
		X:       Num(0),
		Y:       1,
		XRef:    "paper",
		YRef:    "paper",
		XAnchor: "left",
		YAnchor: "center",
		Text:    header,
		Font:    Font{Family: fontFamily, Size: 10},
		Visible: true,
	})
	d.addAnnotation(Annotation{
		X:             Num(0.85),
		Y:             1,
		XRef:          "paper",
		YRef:          "paper",
		XAnchor:       "center",
		YAnchor:       "top",
		Text:          ShowLegend,
		Font:          Font{Family: fontFamily, Size: 10},
		CaptureEvents: true,
		Visible:       true,
		Meta:          &Meta{Kind: KindAnnotation, ID: LegendClickID},
	})

	log.Debug("chart built", zap.Int("traces", len(d.Data)), zap.Int("annotations", len(d.Layout.Annotations)))
	return d
}

func addIntervention(d *Description, r *dataset.RegionSeries, iv dataset.Intervention, c Controls, hoverX, color string, substitute bool) {
	if iv.Year > c.Year {
		return
	}
	v, ok := r.ValueAt(iv.Year, c.Field)
	if !ok {
		return
	}
	x := xValue(iv.Year, c.XAxis)
	meta := Meta{
		Kind:         KindMarker,
		Admin:        r.ID,
		Color:        color,
		ColorFocus:   palette.SubstituteFocusColor,
		ColorNoFocus: palette.Transparentize(color, 0.8),
		Substitute:   substitute,
		Label:        iv.Name,
		HoverXLabel:  hoverX,
		YLabel:       c.Metric,
		FullName:     r.Name,
	}
	d.addTrace(Trace{
		Mode:          "markers",
		Type:          "scatter",
		Name:          iv.Name,
		X:             []Coord{x},
		Y:             []float64{v},
		Visible:       !substitute,
		Marker:        Marker{Colors: []string{color}, Size: 8},
		Meta:          &meta,
		HoverTemplate: markerTemplate,
	})
	d.addShape(Shape{
		Type: "line",
		XRef: "x",
		YRef: "paper",
		X0:   x,
		X1:   x,
		Y0:   0,
		Y1:   1,
		Line: Line{Width: 1, Color: color, Dash: "dot"},
		Meta: &Meta{Kind: KindMarker, Admin: r.ID, Label: iv.Name},
	})
}

// labelY places the last-point label. On a log axis the value is log10-scaled
// with 0 drawn at 1; values with no finite position get no label.
func labelY(ys []float64, yScale string) (float64, bool) {
	if len(ys) == 0 {
		return 0, false
	}
	y := ys[len(ys)-1]
	if yScale == "log" {
		if y == 0 {
			y = 1
		}
		y = math.Log10(y)
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, false
	}
	return y, true
}

// points collects the plotted x/y values of a region up to the control year.
// Years without the metric are skipped.
func points(r *dataset.RegionSeries, c Controls) ([]Coord, []float64) {
	xs := []Coord{}
	ys := []float64{}
	for _, year := range r.Years() {
		if year > c.Year {
			continue
		}
		v, ok := r.Value(year, c.Field)
		if !ok {
			continue
		}
		xs = append(xs, xValue(year, c.XAxis))
		ys = append(ys, v)
	}
	return xs, ys
}

func xValue(year int, axis string) Coord {
	if axis == XAxisDate {
		return Str(strconv.Itoa(year))
	}
	return Num(float64(year))
}

// Truncate shortens s to limit runes followed by trail.
func Truncate(s string, limit int, trail string) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + trail
}
