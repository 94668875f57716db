package geomap

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sudorandom/regionviz/pkg/dataset"
	"github.com/sudorandom/regionviz/pkg/palette"
)

type GlyphKind string

const (
	GlyphChoropleth GlyphKind = "choropleth"
	GlyphSpikes     GlyphKind = "spikes"
	GlyphBubbles    GlyphKind = "bubbles"
)

// Scale offsets: spikes are in degrees of latitude, bubbles in meters.
const (
	spikeOffsetLog     = 15
	spikeOffsetLinear  = 30
	bubbleOffsetLog    = 300000
	bubbleOffsetLinear = 900000
)

// Glyph is a proportional symbol drawn over a region. Spikes carry a triangle
// in Points; bubbles carry a circle Radius in meters around Center.
type Glyph struct {
	Kind        GlyphKind `json:"kind"`
	Admin       string    `json:"admin"`
	Value       float64   `json:"value"`
	Center      LatLng    `json:"center"`
	Points      []LatLng  `json:"points,omitempty"`
	Radius      float64   `json:"radius,omitempty"`
	Color       string    `json:"color"`
	FillColor   string    `json:"fillColor,omitempty"`
	FillOpacity float64   `json:"fillOpacity,omitempty"`
	Weight      float64   `json:"weight"`
	Popup       string    `json:"popup"`
}

// Glyphs sizes a spike or bubble for every region with a positive value at
// year, relative to the dataset maximum. On a log scale both the value and the
// maximum are log10-scaled first. Choropleth maps have no glyphs.
func (ix *Index) Glyphs(kind GlyphKind, ds *dataset.Dataset, field, label, parentGeo string, year int, logScale bool) []Glyph {
	if kind != GlyphSpikes && kind != GlyphBubbles {
		return nil
	}
	if ds.Len() == 0 {
		return nil
	}
	maxVal := ds.MaxValue(field)
	if maxVal <= 0 {
		return nil
	}

	var out []Glyph
	for _, id := range ds.IDs() {
		r, _ := ds.Get(id)
		v, ok := r.ValueAt(year, field)
		if !ok || v <= 0 {
			continue
		}
		fid, ok := ix.Match(id, parentGeo)
		if !ok {
			continue
		}
		box, ok := ix.BBox(fid)
		if !ok {
			continue
		}
		scaled, scaledMax := v, maxVal
		if logScale {
			scaled, scaledMax = math.Log10(v), math.Log10(maxVal)
		}

		g := Glyph{
			Kind:   kind,
			Admin:  ix.Admin(fid),
			Value:  v,
			Center: box.Center(),
			Color:  palette.GlyphColor,
			Popup:  Popup(r.Name, label, v),
		}
		switch kind {
		case GlyphSpikes:
			offset := float64(spikeOffsetLinear)
			if logScale {
				offset = spikeOffsetLog
			}
			h, ok := scaledRadius(scaled, scaledMax, offset)
			if !ok {
				continue
			}
			c := g.Center
			g.Points = []LatLng{c, {c.Lat() + h, c.Lng() + 0.5}, {c.Lat(), c.Lng() + 1}}
			g.Weight = 1
		case GlyphBubbles:
			offset := float64(bubbleOffsetLinear)
			if logScale {
				offset = bubbleOffsetLog
			}
			radius, ok := scaledRadius(scaled, scaledMax, offset)
			if !ok {
				continue
			}
			g.Radius = radius
			g.FillColor = palette.GlyphColor
			g.FillOpacity = 0.5
			g.Weight = 1.25
		}
		out = append(out, g)
	}
	return out
}

// scaledRadius is offset*v/max. Results that are not finite and positive are dropped.
func scaledRadius(v, maxVal, offset float64) (float64, bool) {
	r := offset * (v / maxVal)
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return 0, false
	}
	return r, true
}

// Popup renders the hover card of a region. NaN values and an empty label read
// as no data.
func Popup(admin, label string, v float64) string {
	if admin == "" {
		return "Ops! an unidentified region"
	}
	if label == "" {
		label = palette.NoDataLabel
	}
	value := palette.NoDataLabel
	if !math.IsNaN(v) {
		value = strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	}
	return fmt.Sprintf(`<div class="popup-region-name">%s</div><div>%s: %s</div>`, admin, label, value)
}
