// Package focus keeps the chart and the map emphasizing the same region. Clicks on
// either surface mutate the chart description and the map layer in place.
package focus

import (
	"go.uber.org/zap"

	"github.com/sudorandom/regionviz/pkg/chart"
	"github.com/sudorandom/regionviz/pkg/geomap"
)

type Mode int

const (
	Unfocused Mode = iota
	LineFocused
	MarkerFocused
)

func (m Mode) String() string {
	switch m {
	case LineFocused:
		return "line"
	case MarkerFocused:
		return "marker"
	}
	return "none"
}

// State is the current emphasis. Region is set for both focused modes; Label
// only when a marker is focused.
type State struct {
	Mode   Mode
	Region string
	Label  string
}

func (s State) MarshalText() ([]byte, error) {
	switch s.Mode {
	case LineFocused:
		return []byte("line:" + s.Region), nil
	case MarkerFocused:
		return []byte("marker:" + s.Region + "/" + s.Label), nil
	}
	return []byte("none"), nil
}

// Machine owns the focus state of one chart description and map layer. It is not
// safe for concurrent use; the dashboard session serializes access.
type Machine struct {
	desc  *chart.Description
	layer *geomap.Layer
	state State
	log   *zap.Logger
}

// New wraps a freshly built chart. layer may be nil when no map is shown.
func New(desc *chart.Description, layer *geomap.Layer) *Machine {
	if desc == nil {
		desc = chart.Empty(chart.Controls{})
	}
	return &Machine{desc: desc, layer: layer, log: zap.L().Named("focus")}
}

func (m *Machine) State() State { return m.state }

func (m *Machine) Description() *chart.Description { return m.desc }

// Click applies a click on a line or marker trace. The clicked trace's metadata is
// read as it was before the click. It reports whether the trace exists.
func (m *Machine) Click(traceID int) bool {
	t, ok := m.desc.Trace(traceID)
	if !ok || t.Meta == nil {
		return false
	}
	clicked := *t.Meta
	label := t.Name

	for i := range m.desc.Data {
		tr := &m.desc.Data[i]
		if tr.Meta == nil {
			continue
		}
		switch {
		case clicked.Focus && clicked.Kind == chart.KindLine:
			restore(tr)
		case clicked.Focus && clicked.Kind == chart.KindMarker:
			focusMarkerAdmin(tr, clicked.Admin)
		case clicked.Kind == chart.KindLine:
			focusLine(tr, clicked.Admin)
		case clicked.Kind == chart.KindMarker:
			focusMarker(tr, clicked.Admin, label)
		}
	}

	for i := range m.desc.Layout.Shapes {
		s := &m.desc.Layout.Shapes[i]
		if s.Meta == nil {
			continue
		}
		switch {
		case !clicked.Focus:
			s.Visible = s.Meta.Admin == clicked.Admin
		case clicked.Kind == chart.KindLine:
			s.Visible = true
		case clicked.Kind == chart.KindMarker:
			s.Visible = s.Meta.Admin == clicked.Admin
		}
	}

	m.state = m.derive()
	m.syncMap()
	m.log.Debug("click", zap.Int("trace", traceID), zap.Stringer("kind", clicked.Kind),
		zap.Bool("wasFocused", clicked.Focus), zap.Stringer("mode", m.state.Mode))
	return true
}

// FocusRegion focuses a region picked on the map, as if its line had been
// clicked from a clean chart.
func (m *Machine) FocusRegion(region string) bool {
	m.Reset()
	id, ok := m.desc.LineFor(region)
	if !ok {
		if m.layer != nil {
			m.layer.SelectFromChart(region)
		}
		return false
	}
	return m.Click(id)
}

// SymbolClick focuses every trace tagged with the given meta id and shows only
// the annotations carrying it.
func (m *Machine) SymbolClick(id string) {
	if id == "" {
		return
	}
	for i := range m.desc.Data {
		if meta := m.desc.Data[i].Meta; meta != nil {
			meta.Focus = meta.ID == id
		}
	}
	for i := range m.desc.Layout.Annotations {
		a := &m.desc.Layout.Annotations[i]
		if a.Meta == nil || a.Meta.ID == chart.LegendClickID {
			continue
		}
		a.Visible = a.Meta.ID == id
	}
	m.state = m.derive()
}

// Reset returns every trace to its base style and drops all focus. Calling it
// twice is the same as calling it once.
func (m *Machine) Reset() {
	for i := range m.desc.Data {
		if m.desc.Data[i].Meta != nil {
			restore(&m.desc.Data[i])
		}
	}
	for i := range m.desc.Layout.Shapes {
		if m.desc.Layout.Shapes[i].Meta != nil {
			m.desc.Layout.Shapes[i].Visible = false
		}
	}
	for i := range m.desc.Layout.Annotations {
		a := &m.desc.Layout.Annotations[i]
		if a.Meta != nil && a.Meta.ID != chart.LegendClickID {
			a.Visible = false
		}
	}
	m.state = State{}
	if m.layer != nil {
		m.layer.Reset()
	}
}

// ToggleLegend shows or hides the chart legend and relabels the toggle.
func (m *Machine) ToggleLegend() {
	l := &m.desc.Layout
	l.ShowLegend = !l.ShowLegend
	id, ok := m.desc.AnnotationByMetaID(chart.LegendClickID)
	if !ok {
		return
	}
	if l.ShowLegend {
		l.Annotations[id].Text = chart.HideLegend
	} else {
		l.Annotations[id].Text = chart.ShowLegend
	}
}

func (m *Machine) derive() State {
	var line *chart.Meta
	for i := range m.desc.Data {
		meta := m.desc.Data[i].Meta
		if meta == nil || !meta.Focus {
			continue
		}
		if meta.Kind == chart.KindMarker {
			return State{Mode: MarkerFocused, Region: meta.Admin, Label: meta.Label}
		}
		if line == nil && meta.Kind == chart.KindLine {
			line = meta
		}
	}
	if line != nil {
		return State{Mode: LineFocused, Region: line.Admin}
	}
	return State{}
}

func (m *Machine) syncMap() {
	if m.layer == nil {
		return
	}
	if m.state.Mode == Unfocused {
		m.layer.Reset()
		return
	}
	m.layer.SelectFromChart(m.state.Region)
}

// restore puts a trace back to how it was built.
func restore(tr *chart.Trace) {
	meta := tr.Meta
	switch meta.Kind {
	case chart.KindLine:
		setWidth(tr, meta.Width)
		tr.Marker.Color = meta.Color
	case chart.KindMarker:
		tr.Marker.Colors = []string{meta.Color}
		tr.Visible = !meta.Substitute
	}
	meta.Focus = false
}

func emphasize(tr *chart.Trace, on bool) {
	meta := tr.Meta
	if on {
		setWidth(tr, meta.WidthFocus)
		tr.Marker.Color = meta.ColorFocus
	} else {
		setWidth(tr, meta.WidthNoFocus)
		tr.Marker.Color = meta.ColorNoFocus
	}
	meta.Focus = on
}

// focusMarkerAdmin handles a click on an already focused marker: the clicked
// region's markers return to their base color, every other marker is hidden.
func focusMarkerAdmin(tr *chart.Trace, admin string) {
	meta := tr.Meta
	switch meta.Kind {
	case chart.KindMarker:
		same := meta.Admin == admin
		if same {
			tr.Marker.Colors = []string{meta.Color}
		} else {
			tr.Marker.Colors = []string{meta.ColorNoFocus}
		}
		tr.Visible = same
		meta.Focus = false
	case chart.KindLine:
		emphasize(tr, meta.Admin == admin)
	}
}

func focusLine(tr *chart.Trace, admin string) {
	meta := tr.Meta
	switch meta.Kind {
	case chart.KindLine:
		emphasize(tr, meta.Admin == admin)
	case chart.KindMarker:
		tr.Visible = meta.Admin == admin
		tr.Marker.Colors = []string{meta.Color}
		meta.Focus = false
	}
}

func focusMarker(tr *chart.Trace, admin, label string) {
	meta := tr.Meta
	switch meta.Kind {
	case chart.KindMarker:
		switch {
		case meta.Admin == admin && meta.Label == label:
			tr.Marker.Colors = []string{meta.ColorFocus}
			meta.Focus = true
			tr.Visible = true
		case meta.Admin == admin:
			tr.Marker.Colors = []string{meta.ColorNoFocus}
			meta.Focus = false
			tr.Visible = true
		default:
			tr.Marker.Colors = []string{meta.ColorNoFocus}
			meta.Focus = false
			tr.Visible = false
		}
	case chart.KindLine:
		emphasize(tr, meta.Admin == admin)
	}
}

func setWidth(tr *chart.Trace, w float64) {
	if tr.Line == nil {
		tr.Line = &chart.Line{}
	}
	tr.Line.Width = w
}
