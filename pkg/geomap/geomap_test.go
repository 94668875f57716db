package geomap

import (
	"encoding/json"
	"math"
	"testing"

	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudorandom/regionviz/pkg/dataset"
	"github.com/sudorandom/regionviz/pkg/palette"
)

const field = "PfPR_rmean"

const fixture = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"ISO_A3": "UGA", "NAME": "Uganda"},
   "geometry": {"type": "Polygon", "coordinates": [[[29,-1],[35,-1],[35,4],[29,4],[29,-1]]]}},
  {"type": "Feature", "properties": {"ISO_A3": "KEN", "NAME": "Kenya"},
   "geometry": {"type": "Polygon", "coordinates": [[[34,-4],[41,-4],[41,5],[34,5],[34,-4]]]}},
  {"type": "Feature", "properties": {"ISO_A3": "TZA", "NAME": "Tanzania"},
   "geometry": {"type": "MultiPolygon", "coordinates": [[[[29,-11],[40,-11],[40,-1],[29,-1],[29,-11]]]]}},
  {"type": "Feature", "properties": {"NAME": "kampala district"},
   "geometry": {"type": "Polygon", "coordinates": [[[32,0],[33,0],[33,1],[32,1],[32,0]]]}},
  {"type": "Feature", "properties": {"ISO_A3": "XBB", "NAME": "Boxed"}, "bbox": [10,20,30,40],
   "geometry": {"type": "Point", "coordinates": [0,0]}}
]}`

const (
	fUGA = iota
	fKEN
	fTZA
	fKampala
	fBoxed
)

func newIndex(t *testing.T) *Index {
	t.Helper()
	fc, err := geojson.UnmarshalFeatureCollection([]byte(fixture))
	require.NoError(t, err)
	return NewIndex(fc)
}

func newDataset() *dataset.Dataset {
	ds := dataset.New()
	ds.Add(&dataset.RegionSeries{ID: "UGA", Name: "Uganda", Data: map[int]map[string]float64{
		2010: {field: 0.2},
		2015: {field: 0.4},
	}})
	ds.Add(&dataset.RegionSeries{ID: "KEN", Name: "Kenya", Data: map[int]map[string]float64{
		2010: {field: 0.1},
	}})
	return ds
}

func TestMatch(t *testing.T) {
	ix := newIndex(t)
	assert.Equal(t, 5, ix.Len())

	tests := []struct {
		region, parent string
		want           int
		ok             bool
	}{
		{"UGA", GlobalLevel, fUGA, true},
		{"uga", GlobalLevel, fUGA, true},
		{"Uganda", GlobalLevel, fUGA, true},
		{"KE", GlobalLevel, fKEN, true},
		{"Atlantis", GlobalLevel, -1, false},
		{"", GlobalLevel, -1, false},
		{"Kampala District", "UGA", fKampala, true},
		{"UGA", "UGA", -1, false},
	}
	for _, tt := range tests {
		got, ok := ix.Match(tt.region, tt.parent)
		assert.Equal(t, tt.ok, ok, "%s/%s", tt.region, tt.parent)
		assert.Equal(t, tt.want, got, "%s/%s", tt.region, tt.parent)
	}
}

func TestAdmin(t *testing.T) {
	ix := newIndex(t)
	assert.Equal(t, "UGA", ix.Admin(fUGA))
	assert.Equal(t, "Kampala District", ix.Admin(fKampala))
	assert.Equal(t, "", ix.Admin(99))
}

func TestJoin(t *testing.T) {
	ix := newIndex(t)
	j := ix.Join(newDataset(), field, "Parasite Rate (pf)", GlobalLevel, 2012, nil)
	require.NotNil(t, j)

	assert.Equal(t, []float64{0, 0.2, 0.24, 0.28, 0.32, 0.36}, j.Table.Boundaries)
	assert.Equal(t, 0.2, j.Values[fUGA])
	assert.Equal(t, 0.1, j.Values[fKEN])
	assert.True(t, math.IsNaN(j.Values[fTZA]))
	assert.Equal(t, "UGA", j.Regions[fUGA])
	assert.Equal(t, "", j.Regions[fTZA])

	require.Len(t, j.Collection.Features, 5)
	props := j.Collection.Features[fUGA].Properties
	assert.Equal(t, 0.2, props[PropDensity])
	assert.Equal(t, "Parasite Rate (pf)", props[PropDensityFeature])
	assert.Equal(t, j.Table.Boundaries, props[PropDensityPartition])
	assert.NotContains(t, j.Collection.Features[fTZA].Properties, PropDensity)
	assert.Contains(t, j.Collection.Features[fTZA].Properties, PropDensityPartition)

	orig, _ := ix.Feature(fUGA)
	assert.NotContains(t, orig.Properties, PropDensity, "indexed collection is not modified")

	assert.Nil(t, ix.Join(nil, field, "x", GlobalLevel, 2012, nil))
}

func TestStylesPalette(t *testing.T) {
	ix := newIndex(t)
	styles := Styles(ix.Join(newDataset(), field, "x", GlobalLevel, 2012, palette.Blue))
	require.Len(t, styles, 5)
	assert.Equal(t, palette.Blue[2], styles[fUGA].FillColor)
	assert.Equal(t, palette.Blue[1], styles[fKEN].FillColor)
	assert.Equal(t, palette.NoData, styles[fTZA].FillColor)
}

func TestStyles(t *testing.T) {
	ix := newIndex(t)
	styles := Styles(ix.Join(newDataset(), field, "Parasite Rate (pf)", GlobalLevel, 2012, nil))
	require.Len(t, styles, 5)

	assert.Equal(t, palette.Yellow[2], styles[fUGA].FillColor)
	assert.Equal(t, palette.Yellow[1], styles[fKEN].FillColor)
	assert.Equal(t, palette.NoData, styles[fTZA].FillColor)
	for _, s := range styles {
		assert.Equal(t, 1.0, s.Weight)
		assert.Equal(t, 0.6, s.Opacity)
		assert.Equal(t, "#ccc", s.Color)
		assert.Equal(t, "2", s.DashArray)
		assert.Equal(t, 0.4, s.FillOpacity)
	}
	assert.Nil(t, Styles(nil))
}

func TestBounds(t *testing.T) {
	ix := newIndex(t)

	uga := BBox{SouthWest: LatLng{-1, 29}, NorthEast: LatLng{4, 35}}
	assert.Equal(t, uga, ix.Bounds("UGA", GlobalLevel, 0))
	assert.Equal(t, uga, ix.Bounds("uganda", GlobalLevel, 0))
	assert.Equal(t, DefaultBounds, ix.Bounds(GlobalLevel, GlobalLevel, 0))
	assert.Equal(t, DefaultBounds, ix.Bounds("XXX", GlobalLevel, 0))

	all := BBox{SouthWest: LatLng{-11, 10}, NorthEast: LatLng{40, 41}}
	assert.Equal(t, all, ix.Bounds("UGA", "UGA", 1))
	assert.Equal(t, all, ix.Bounds("", "", 2))

	boxed, ok := ix.BBox(fBoxed)
	require.True(t, ok)
	assert.Equal(t, BBox{SouthWest: LatLng{20, 10}, NorthEast: LatLng{40, 30}}, boxed, "explicit bbox wins")

	tza, ok := ix.BBox(fTZA)
	require.True(t, ok)
	assert.Equal(t, LatLng{-6, 34.5}, tza.Center())

	raw, err := json.Marshal(uga)
	require.NoError(t, err)
	assert.JSONEq(t, `[[-1,29],[4,35]]`, string(raw))
}

func TestGlyphsSpikes(t *testing.T) {
	ix := newIndex(t)
	glyphs := ix.Glyphs(GlyphSpikes, newDataset(), field, "Parasite Rate (pf)", GlobalLevel, 2012, false)
	require.Len(t, glyphs, 2)

	// ids are visited in order, so KEN comes first
	ken, uga := glyphs[0], glyphs[1]
	assert.Equal(t, "KEN", ken.Admin)
	assert.Equal(t, "UGA", uga.Admin)

	assert.Equal(t, LatLng{1.5, 32}, uga.Center)
	require.Len(t, uga.Points, 3)
	assert.Equal(t, LatLng{1.5, 32}, uga.Points[0])
	assert.InDelta(t, 16.5, uga.Points[1].Lat(), 1e-9)
	assert.InDelta(t, 32.5, uga.Points[1].Lng(), 1e-9)
	assert.Equal(t, LatLng{1.5, 33}, uga.Points[2])
	assert.Equal(t, palette.GlyphColor, uga.Color)
	assert.Equal(t, `<div class="popup-region-name">Uganda</div><div>Parasite Rate (pf): 0.2</div>`, uga.Popup)
}

func TestGlyphsBubbles(t *testing.T) {
	ix := newIndex(t)
	glyphs := ix.Glyphs(GlyphBubbles, newDataset(), field, "Parasite Rate (pf)", GlobalLevel, 2012, false)
	require.Len(t, glyphs, 2)

	uga := glyphs[1]
	assert.InDelta(t, 450000, uga.Radius, 1e-6)
	assert.Equal(t, 0.5, uga.FillOpacity)
	assert.Equal(t, 1.25, uga.Weight)
	assert.Empty(t, uga.Points)
}

func TestGlyphsSkipped(t *testing.T) {
	ix := newIndex(t)
	ds := newDataset()
	assert.Nil(t, ix.Glyphs(GlyphChoropleth, ds, field, "x", GlobalLevel, 2012, false))
	assert.Nil(t, ix.Glyphs(GlyphSpikes, nil, field, "x", GlobalLevel, 2012, false))
	assert.Empty(t, ix.Glyphs(GlyphSpikes, ds, field, "x", GlobalLevel, 2000, false), "no value before the first year")

	counts := dataset.New()
	counts.Add(&dataset.RegionSeries{ID: "UGA", Name: "Uganda", Data: map[int]map[string]float64{2010: {field: 1}}})
	assert.Empty(t, ix.Glyphs(GlyphBubbles, counts, field, "x", GlobalLevel, 2012, true), "log of a unit maximum cannot scale")
}

func TestPopup(t *testing.T) {
	assert.Equal(t, "Ops! an unidentified region", Popup("", "Facilities", 3))
	assert.Equal(t, `<div class="popup-region-name">Kenya</div><div>Facilities: 12.35</div>`, Popup("Kenya", "Facilities", 12.345678))
	assert.Equal(t, `<div class="popup-region-name">Kenya</div><div>Facilities: No data</div>`, Popup("Kenya", "Facilities", math.NaN()))
	assert.Equal(t, `<div class="popup-region-name">Kenya</div><div>No data: 3</div>`, Popup("Kenya", "", 3))
}

func TestLayerHover(t *testing.T) {
	ix := newIndex(t)
	styles := Styles(ix.Join(newDataset(), field, "x", GlobalLevel, 2012, nil))
	l := NewLayer(ix, styles, GlobalLevel)

	l.Hover(fUGA)
	s, ok := l.Style(fUGA)
	require.True(t, ok)
	assert.Equal(t, 2.5, s.Weight)
	assert.Equal(t, "#999", s.Color)
	assert.Equal(t, "", s.DashArray)
	assert.Equal(t, 0.7, s.FillOpacity)
	assert.Equal(t, styles[fUGA].FillColor, s.FillColor, "fill color is kept")
	assert.Equal(t, styles[fUGA].Opacity, s.Opacity)

	l.Leave(fUGA)
	s, _ = l.Style(fUGA)
	assert.Equal(t, styles[fUGA], s)

	l.Hover(99)
	l.Leave(-1)
	assert.Equal(t, styles, l.Styles())
}

func TestLayerChartSelection(t *testing.T) {
	ix := newIndex(t)
	styles := Styles(ix.Join(newDataset(), field, "x", GlobalLevel, 2012, nil))
	l := NewLayer(ix, styles, GlobalLevel)

	require.True(t, l.SelectFromChart("KEN"))
	s, _ := l.Style(fKEN)
	assert.Equal(t, 3.0, s.Weight)
	assert.Equal(t, "#606060", s.Color)
	assert.Equal(t, 1.0, s.Opacity)
	id, ok := l.Selected()
	assert.True(t, ok)
	assert.Equal(t, fKEN, id)

	l.Hover(fKEN)
	s, _ = l.Style(fKEN)
	assert.Equal(t, 5.0, s.Weight)
	assert.Equal(t, 0.7125, s.FillOpacity)

	l.Leave(fKEN)
	s, _ = l.Style(fKEN)
	assert.Equal(t, 3.0, s.Weight, "selection survives hover")

	require.True(t, l.SelectFromChart("Uganda"))
	s, _ = l.Style(fKEN)
	assert.Equal(t, styles[fKEN], s, "previous selection is cleared")

	assert.False(t, l.SelectFromChart("Atlantis"))
	_, ok = l.Selected()
	assert.False(t, ok)

	l.SelectFromChart("TZA")
	l.Reset()
	assert.Equal(t, styles, l.Styles())
}

func TestLayerSubNationalSelection(t *testing.T) {
	ix := newIndex(t)
	l := NewLayer(ix, make([]FeatureStyle, ix.Len()), "UGA")

	assert.True(t, l.SelectFromChart("Kampala District"))
	assert.False(t, l.SelectFromChart("UGA"), "below the global level only names match")
}
