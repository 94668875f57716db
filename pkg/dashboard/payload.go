package dashboard

import (
	"encoding/json"

	geojson "github.com/paulmach/go.geojson"

	"github.com/sudorandom/regionviz/pkg/chart"
	"github.com/sudorandom/regionviz/pkg/focus"
	"github.com/sudorandom/regionviz/pkg/geomap"
	"github.com/sudorandom/regionviz/pkg/palette"
)

// Payload is the JSON handed to the rendering front end.
type Payload struct {
	Generation uint64                     `json:"generation"`
	Header     string                     `json:"header"`
	Ranked     []string                   `json:"ranked"`
	Chart      *chart.Description         `json:"chart"`
	Features   *geojson.FeatureCollection `json:"features,omitempty"`
	Styles     []geomap.FeatureStyle      `json:"styles"`
	Bounds     geomap.BBox                `json:"bounds"`
	Glyphs     []geomap.Glyph             `json:"glyphs"`
	Legend     []palette.LegendRow        `json:"legend"`
	Focus      focus.State                `json:"focus"`
}

// Payload snapshots the output, including the current map styles and focus.
func (o *Output) Payload() Payload {
	p := Payload{
		Generation: o.Generation,
		Header:     o.Header,
		Ranked:     o.Ranked,
		Chart:      o.Chart,
		Bounds:     o.Bounds,
		Glyphs:     o.Glyphs,
		Legend:     o.Legend,
		Styles:     []geomap.FeatureStyle{},
	}
	if o.Join != nil {
		p.Features = o.Join.Collection
	}
	if o.Layer != nil {
		p.Styles = o.Layer.Styles()
	}
	if o.Machine != nil {
		p.Focus = o.Machine.State()
	}
	if p.Glyphs == nil {
		p.Glyphs = []geomap.Glyph{}
	}
	if p.Legend == nil {
		p.Legend = []palette.LegendRow{}
	}
	return p
}

func (o *Output) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Payload())
}
