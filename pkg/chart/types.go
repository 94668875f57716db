// Package chart builds the declarative, plotly-shaped description of the overview
// time-series chart. Every trace, annotation and shape has a stable integer id (its
// index in the owning slice) so interaction handlers can address them directly.
package chart

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind tags what a piece of chart metadata belongs to.
type Kind int

const (
	KindLine Kind = iota
	KindMarker
	KindAnnotation
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindMarker:
		return "marker"
	case KindAnnotation:
		return "annotation"
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < KindLine || k > KindAnnotation {
		return nil, fmt.Errorf("unknown kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "line":
		*k = KindLine
	case "marker":
		*k = KindMarker
	case "annotation":
		*k = KindAnnotation
	default:
		return fmt.Errorf("unknown kind %q", b)
	}
	return nil
}

// Meta is the per-trace state the focus protocol reads and mutates.
type Meta struct {
	Kind         Kind    `json:"type"`
	Admin        string  `json:"admin,omitempty"`
	Focus        bool    `json:"focus"`
	Width        float64 `json:"width,omitempty"`
	WidthFocus   float64 `json:"widthFocus,omitempty"`
	WidthNoFocus float64 `json:"widthNoFocus,omitempty"`
	Color        string  `json:"color,omitempty"`
	ColorFocus   string  `json:"colorFocus,omitempty"`
	ColorNoFocus string  `json:"colorNoFocus,omitempty"`
	Substitute   bool    `json:"substitute,omitempty"`
	Label        string  `json:"npi_name,omitempty"`
	ID           string  `json:"id,omitempty"`
	HoverXLabel  string  `json:"hoverXLabel,omitempty"`
	YLabel       string  `json:"yLabel,omitempty"`
	FullName     string  `json:"fullName,omitempty"`
}

// Coord is an axis value that is either a number or a string (date axes take
// year strings, linear and paper axes take numbers).
type Coord struct {
	num   float64
	str   string
	isStr bool
}

func Num(v float64) Coord   { return Coord{num: v} }
func Str(s string) Coord    { return Coord{str: s, isStr: true} }
func (c Coord) IsStr() bool { return c.isStr }

func (c Coord) String() string {
	if c.isStr {
		return c.str
	}
	return strconv.FormatFloat(c.num, 'f', -1, 64)
}

func (c Coord) MarshalJSON() ([]byte, error) {
	if c.isStr {
		return json.Marshal(c.str)
	}
	return json.Marshal(c.num)
}

func (c *Coord) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = Str(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*c = Num(f)
	return nil
}

// Marker holds a single color for line traces and a per-point color list for
// marker traces; it serializes to whichever is set.
type Marker struct {
	Color  string
	Colors []string
	Symbol string
	Size   int
}

func (m Marker) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if m.Colors != nil {
		out["color"] = m.Colors
	} else if m.Color != "" {
		out["color"] = m.Color
	}
	if m.Symbol != "" {
		out["symbol"] = m.Symbol
	}
	if m.Size != 0 {
		out["size"] = m.Size
	}
	return json.Marshal(out)
}

type Line struct {
	Width float64 `json:"width"`
	Color string  `json:"color,omitempty"`
	Dash  string  `json:"dash,omitempty"`
}

type Trace struct {
	ID            int       `json:"-"`
	Mode          string    `json:"mode"`
	Type          string    `json:"type"`
	Name          string    `json:"name"`
	X             []Coord   `json:"x"`
	Y             []float64 `json:"y"`
	Visible       bool      `json:"visible"`
	ShowLegend    bool      `json:"showlegend"`
	LegendGroup   string    `json:"legendgroup,omitempty"`
	Marker        Marker    `json:"marker"`
	Line          *Line     `json:"line,omitempty"`
	Meta          *Meta     `json:"meta,omitempty"`
	HoverTemplate string    `json:"hovertemplate,omitempty"`
}

type Font struct {
	Family string `json:"family,omitempty"`
	Size   int    `json:"size,omitempty"`
}

type Annotation struct {
	ID            int     `json:"-"`
	X             Coord   `json:"x"`
	Y             float64 `json:"y"`
	XRef          string  `json:"xref"`
	YRef          string  `json:"yref"`
	Text          string  `json:"text"`
	Font          Font    `json:"font"`
	ShowArrow     bool    `json:"showarrow"`
	XAnchor       string  `json:"xanchor,omitempty"`
	YAnchor       string  `json:"yanchor,omitempty"`
	CaptureEvents bool    `json:"captureevents"`
	Visible       bool    `json:"visible"`
	Meta          *Meta   `json:"meta,omitempty"`
}

type Shape struct {
	ID      int     `json:"-"`
	Type    string  `json:"type"`
	XRef    string  `json:"xref"`
	YRef    string  `json:"yref"`
	X0      Coord   `json:"x0"`
	X1      Coord   `json:"x1"`
	Y0      float64 `json:"y0"`
	Y1      float64 `json:"y1"`
	Line    Line    `json:"line"`
	Visible bool    `json:"visible"`
	Meta    *Meta   `json:"meta,omitempty"`
}

type Title struct {
	Text     string `json:"text"`
	Standoff int    `json:"standoff"`
}

type Axis struct {
	Type          string `json:"type"`
	Title         Title  `json:"title"`
	GridColor     string `json:"gridcolor"`
	LineColor     string `json:"linecolor"`
	AutoMargin    bool   `json:"automargin"`
	ZeroLineColor string `json:"zerolinecolor"`
	ZeroLineWidth int    `json:"zerolinewidth"`
	FixedRange    bool   `json:"fixedrange,omitempty"`
	HoverFormat   string `json:"hoverformat,omitempty"`
	RangeMode     string `json:"rangemode,omitempty"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	B int `json:"b"`
	T int `json:"t"`
}

type Legend struct {
	Margin        Margin  `json:"margin"`
	TraceGroupGap int     `json:"tracegroupgap"`
	BorderWidth   int     `json:"borderwidth"`
	BorderColor   string  `json:"bordercolor"`
	XAnchor       string  `json:"xanchor"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Orientation   string  `json:"orientation"`
	Font          Font    `json:"font"`
}

type HoverLabel struct {
	Font  Font   `json:"font"`
	Align string `json:"align"`
}

type Layout struct {
	Font        Font         `json:"font"`
	XAxis       Axis         `json:"xaxis"`
	YAxis       Axis         `json:"yaxis"`
	HoverLabel  HoverLabel   `json:"hoverlabel"`
	Margin      Margin       `json:"margin"`
	HoverMode   string       `json:"hovermode"`
	Height      int          `json:"height"`
	AutoSize    bool         `json:"autosize"`
	ShowLegend  bool         `json:"showlegend"`
	Legend      Legend       `json:"legend"`
	PlotBGColor string       `json:"plot_bgcolor"`
	Annotations []Annotation `json:"annotations"`
	Shapes      []Shape      `json:"shapes"`
}

type Config struct {
	Responsive             bool     `json:"responsive"`
	ModeBarButtonsToRemove []string `json:"modeBarButtonsToRemove"`
	DisplayLogo            bool     `json:"displaylogo"`
}

// Description is everything a renderer needs to draw the chart.
type Description struct {
	Header string  `json:"chartHeader"`
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
	Config Config  `json:"config"`
}

// Trace returns the trace with the given id.
func (d *Description) Trace(id int) (*Trace, bool) {
	if id < 0 || id >= len(d.Data) {
		return nil, false
	}
	return &d.Data[id], true
}

func (d *Description) Annotation(id int) (*Annotation, bool) {
	if id < 0 || id >= len(d.Layout.Annotations) {
		return nil, false
	}
	return &d.Layout.Annotations[id], true
}

// LineFor returns the id of the line trace drawn for a region.
func (d *Description) LineFor(admin string) (int, bool) {
	for i := range d.Data {
		m := d.Data[i].Meta
		if m != nil && m.Kind == KindLine && m.Admin == admin {
			return i, true
		}
	}
	return -1, false
}

// AnnotationByMetaID finds an annotation tagged with the given meta id.
func (d *Description) AnnotationByMetaID(id string) (int, bool) {
	for i := range d.Layout.Annotations {
		m := d.Layout.Annotations[i].Meta
		if m != nil && m.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (d *Description) addTrace(t Trace) int {
	t.ID = len(d.Data)
	d.Data = append(d.Data, t)
	return t.ID
}

func (d *Description) addAnnotation(a Annotation) int {
	a.ID = len(d.Layout.Annotations)
	d.Layout.Annotations = append(d.Layout.Annotations, a)
	return a.ID
}

func (d *Description) addShape(s Shape) int {
	s.ID = len(d.Layout.Shapes)
	d.Layout.Shapes = append(d.Layout.Shapes, s)
	return s.ID
}
