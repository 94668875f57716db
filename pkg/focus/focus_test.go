package focus

import (
	"encoding/json"
	"fmt"
	"testing"

	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudorandom/regionviz/pkg/chart"
	"github.com/sudorandom/regionviz/pkg/dataset"
	"github.com/sudorandom/regionviz/pkg/geomap"
	"github.com/sudorandom/regionviz/pkg/palette"
)

const field = "PfPR_rmean"

// Trace ids of the fixture chart.
const (
	lineR00 = 0
	itnR00  = 1
	irsR00  = 2
	lineR01 = 3
	itnR01  = 4
	lineR05 = 8
)

func fixture(t *testing.T) (*chart.Description, *geomap.Layer) {
	t.Helper()
	ds := dataset.New()
	fc := geojson.NewFeatureCollection()
	ids := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("R%02d", i)
		ds.Add(&dataset.RegionSeries{ID: id, Name: "Region " + id, Data: map[int]map[string]float64{
			2010: {field: float64(60 - i)},
			2014: {field: float64(70 - i)},
		}})
		ids = append(ids, id)

		f := geojson.NewPolygonFeature([][][]float64{{{float64(i), 0}, {float64(i) + 1, 0}, {float64(i) + 1, 1}, {float64(i), 0}}})
		f.SetProperty("ISO_A3", id)
		f.SetProperty("NAME", "Region "+id)
		fc.AddFeature(f)
	}
	ds.Interventions["R00"] = []dataset.Intervention{{Name: "ITN", Year: 2011}, {Name: "IRS", Year: 2013}}
	ds.Interventions["R01"] = []dataset.Intervention{{Name: "ITN", Year: 2012}}

	desc := chart.Build(ids, ds, chart.Controls{
		Metric: "Parasite Rate (pf)", Field: field, XAxis: chart.XAxisDate, YScale: "linear", TopK: 10, Year: 2015,
	}, chart.Selection{})
	require.Len(t, desc.Data, 9)
	require.Equal(t, "R05", desc.Data[lineR05].Meta.Admin)
	require.True(t, desc.Data[lineR05].Meta.Substitute)

	ix := geomap.NewIndex(fc)
	layer := geomap.NewLayer(ix, make([]geomap.FeatureStyle, ix.Len()), geomap.GlobalLevel)
	return desc, layer
}

func snapshot(t *testing.T, d *chart.Description) string {
	t.Helper()
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	return string(raw)
}

func TestClickLine(t *testing.T) {
	desc, layer := fixture(t)
	m := New(desc, layer)

	require.True(t, m.Click(lineR01))
	assert.Equal(t, State{Mode: LineFocused, Region: "R01"}, m.State())

	r01 := desc.Data[lineR01]
	assert.True(t, r01.Meta.Focus)
	assert.Equal(t, 3.0, r01.Line.Width)
	assert.Equal(t, palette.SeriesColors[1], r01.Marker.Color)

	r00 := desc.Data[lineR00]
	assert.False(t, r00.Meta.Focus)
	assert.Equal(t, 1.0, r00.Line.Width)
	assert.Equal(t, r00.Meta.ColorNoFocus, r00.Marker.Color)

	assert.False(t, desc.Data[itnR00].Visible)
	assert.Equal(t, []string{desc.Data[itnR00].Meta.Color}, desc.Data[itnR00].Marker.Colors)
	assert.True(t, desc.Data[itnR01].Visible)

	for _, s := range desc.Layout.Shapes {
		assert.Equal(t, s.Meta.Admin == "R01", s.Visible, "shape of %s", s.Meta.Admin)
	}

	fid, ok := layer.Selected()
	require.True(t, ok)
	assert.Equal(t, 1, fid)
}

func TestClickFocusedLineUnfocuses(t *testing.T) {
	desc, layer := fixture(t)
	m := New(desc, layer)

	m.Click(lineR01)
	m.Click(lineR01)

	assert.Equal(t, State{}, m.State())
	for _, tr := range desc.Data {
		assert.False(t, tr.Meta.Focus)
		if tr.Meta.Kind == chart.KindLine {
			assert.Equal(t, tr.Meta.Width, tr.Line.Width)
			assert.Equal(t, tr.Meta.Color, tr.Marker.Color)
		} else {
			assert.Equal(t, !tr.Meta.Substitute, tr.Visible)
		}
	}
	for _, s := range desc.Layout.Shapes {
		assert.True(t, s.Visible)
	}
	_, ok := layer.Selected()
	assert.False(t, ok)
}

func TestClickMarker(t *testing.T) {
	desc, _ := fixture(t)
	m := New(desc, nil)

	require.True(t, m.Click(itnR00))
	assert.Equal(t, State{Mode: MarkerFocused, Region: "R00", Label: "ITN"}, m.State())

	itn := desc.Data[itnR00]
	assert.True(t, itn.Meta.Focus)
	assert.True(t, itn.Visible)
	assert.Equal(t, []string{itn.Meta.ColorFocus}, itn.Marker.Colors)

	irs := desc.Data[irsR00]
	assert.False(t, irs.Meta.Focus)
	assert.True(t, irs.Visible)
	assert.Equal(t, []string{irs.Meta.ColorNoFocus}, irs.Marker.Colors)

	other := desc.Data[itnR01]
	assert.False(t, other.Visible, "same label on another region stays hidden")
	assert.Equal(t, []string{other.Meta.ColorNoFocus}, other.Marker.Colors)

	assert.True(t, desc.Data[lineR00].Meta.Focus)
	assert.Equal(t, 3.0, desc.Data[lineR00].Line.Width)
	assert.Equal(t, 1.0, desc.Data[lineR01].Line.Width)

	for _, s := range desc.Layout.Shapes {
		assert.Equal(t, s.Meta.Admin == "R00", s.Visible)
	}
}

func TestClickLineAfterMarkerMovesFocus(t *testing.T) {
	desc, layer := fixture(t)
	m := New(desc, layer)

	m.Click(itnR00)
	require.Equal(t, MarkerFocused, m.State().Mode)

	m.Click(lineR01)
	assert.Equal(t, State{Mode: LineFocused, Region: "R01"}, m.State())
	for _, tr := range desc.Data {
		if tr.Meta.Kind == chart.KindMarker {
			assert.False(t, tr.Meta.Focus, "marker %s/%s", tr.Meta.Admin, tr.Meta.Label)
		}
	}
	assert.False(t, desc.Data[itnR00].Visible)

	fid, ok := layer.Selected()
	require.True(t, ok)
	assert.Equal(t, 1, fid)

	// A later click on the old marker is an unfocused click again.
	m.Click(itnR00)
	assert.Equal(t, State{Mode: MarkerFocused, Region: "R00", Label: "ITN"}, m.State())
}

func TestClickFocusedMarker(t *testing.T) {
	desc, _ := fixture(t)
	m := New(desc, nil)

	m.Click(itnR00)
	m.Click(itnR00)

	assert.Equal(t, State{Mode: LineFocused, Region: "R00"}, m.State())
	for _, id := range []int{itnR00, irsR00} {
		tr := desc.Data[id]
		assert.False(t, tr.Meta.Focus)
		assert.True(t, tr.Visible)
		assert.Equal(t, []string{tr.Meta.Color}, tr.Marker.Colors)
	}
	assert.False(t, desc.Data[itnR01].Visible)
	assert.Equal(t, []string{desc.Data[itnR01].Meta.ColorNoFocus}, desc.Data[itnR01].Marker.Colors)
}

func TestClickUnknownTrace(t *testing.T) {
	desc, _ := fixture(t)
	m := New(desc, nil)
	before := snapshot(t, desc)

	assert.False(t, m.Click(99))
	assert.False(t, m.Click(-1))
	assert.Equal(t, before, snapshot(t, desc))
}

func TestResetIdempotent(t *testing.T) {
	desc, layer := fixture(t)
	m := New(desc, layer)

	m.Click(itnR00)
	m.Reset()
	once := snapshot(t, desc)
	m.Reset()
	assert.Equal(t, once, snapshot(t, desc))
	assert.Equal(t, State{}, m.State())
	assert.Equal(t, make([]geomap.FeatureStyle, 6), layer.Styles())
}

func TestFocusResetRoundTrip(t *testing.T) {
	desc, layer := fixture(t)
	pristine := snapshot(t, desc)
	m := New(desc, layer)

	require.True(t, m.FocusRegion("R02"))
	focused := snapshot(t, desc)
	assert.Equal(t, State{Mode: LineFocused, Region: "R02"}, m.State())

	m.Reset()
	assert.Equal(t, pristine, snapshot(t, desc))

	require.True(t, m.FocusRegion("R02"))
	assert.Equal(t, focused, snapshot(t, desc))
}

func TestFocusRegionReplacesFocus(t *testing.T) {
	desc, _ := fixture(t)
	m := New(desc, nil)

	m.Click(itnR00)
	require.True(t, m.FocusRegion("R01"))
	assert.Equal(t, State{Mode: LineFocused, Region: "R01"}, m.State())
	assert.False(t, desc.Data[itnR00].Meta.Focus)

	assert.False(t, m.FocusRegion("R99"))
	assert.Equal(t, State{}, m.State())
}

func TestToggleLegend(t *testing.T) {
	desc, _ := fixture(t)
	m := New(desc, nil)
	id, ok := desc.AnnotationByMetaID(chart.LegendClickID)
	require.True(t, ok)

	assert.False(t, m.Handle(Event{Kind: EventLegendClick}))
	assert.False(t, m.Handle(Event{Kind: EventLegendDoubleClick}))
	assert.False(t, desc.Layout.ShowLegend)

	require.True(t, m.Handle(Event{Kind: EventAnnotationClick, Annotation: id}))
	assert.True(t, desc.Layout.ShowLegend)
	assert.Equal(t, chart.HideLegend, desc.Layout.Annotations[id].Text)

	m.ToggleLegend()
	assert.False(t, desc.Layout.ShowLegend)
	assert.Equal(t, chart.ShowLegend, desc.Layout.Annotations[id].Text)

	assert.False(t, m.Handle(Event{Kind: EventAnnotationClick, Annotation: 0}), "label annotations do nothing")
}

func TestSymbolClick(t *testing.T) {
	desc, _ := fixture(t)
	desc.Data[lineR01].Meta.ID = "exec-1"
	m := New(desc, nil)

	require.True(t, m.Handle(Event{Kind: EventClick, SymbolID: "exec-1"}))
	assert.True(t, desc.Data[lineR01].Meta.Focus)
	assert.False(t, desc.Data[lineR00].Meta.Focus)
	assert.Equal(t, State{Mode: LineFocused, Region: "R01"}, m.State())

	legend, _ := desc.AnnotationByMetaID(chart.LegendClickID)
	assert.True(t, desc.Layout.Annotations[legend].Visible)
}

func TestHandleFeatureEvents(t *testing.T) {
	desc, layer := fixture(t)
	m := New(desc, layer)

	require.True(t, m.Handle(Event{Kind: EventFeatureHover, Feature: 2}))
	s, _ := layer.Style(2)
	assert.Equal(t, 2.5, s.Weight)
	require.True(t, m.Handle(Event{Kind: EventFeatureLeave, Feature: 2}))
	s, _ = layer.Style(2)
	assert.Equal(t, 0.0, s.Weight)

	require.True(t, m.Handle(Event{Kind: EventFeatureClick, Region: "R03"}))
	assert.Equal(t, "R03", m.State().Region)
	fid, ok := layer.Selected()
	require.True(t, ok)
	assert.Equal(t, 3, fid)

	require.True(t, m.Handle(Event{Kind: EventReset}))
	assert.Equal(t, State{}, m.State())

	noMap := New(desc, nil)
	assert.False(t, noMap.Handle(Event{Kind: EventFeatureHover}))
}

func TestEventKindText(t *testing.T) {
	var k EventKind
	require.NoError(t, k.UnmarshalText([]byte("featureclick")))
	assert.Equal(t, EventFeatureClick, k)
	assert.Error(t, k.UnmarshalText([]byte("drag")))

	raw, err := json.Marshal(Event{Kind: EventReset})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"reset"}`, string(raw))
}
