// Package dashboard rebuilds the chart and map from one set of control-panel
// inputs and keeps the latest build for interaction.
package dashboard

import (
	"github.com/sudorandom/regionviz/pkg/chart"
	"github.com/sudorandom/regionviz/pkg/dataset"
	"github.com/sudorandom/regionviz/pkg/focus"
	"github.com/sudorandom/regionviz/pkg/geomap"
	"github.com/sudorandom/regionviz/pkg/palette"
	"github.com/sudorandom/regionviz/pkg/ranking"
)

// Input is everything a rebuild reads. Index may be nil when no map is drawn.
type Input struct {
	Dataset    *dataset.Dataset
	Index      *geomap.Index
	Controls   chart.Controls
	Geo        string
	ParentGeo  string
	AdminLevel int
	Glyph      geomap.GlyphKind
	Palette    []string // choropleth fills, palette.Yellow when empty
}

func (in Input) selection() chart.Selection {
	return chart.Selection{Geo: in.Geo, ParentGeo: in.ParentGeo}
}

// Output is one complete build. Machine and Layer are mutated by focus events;
// everything else is fixed once built.
type Output struct {
	Generation uint64
	Header     string
	Ranked     []string
	Chart      *chart.Description
	Join       *geomap.Join
	Bounds     geomap.BBox
	Glyphs     []geomap.Glyph
	Legend     []palette.LegendRow
	Layer      *geomap.Layer
	Machine    *focus.Machine
}

// Rebuild ranks the regions, builds the chart and joins the metric onto the map.
// It has no side effects.
func Rebuild(in Input) *Output {
	c := in.Controls
	sel := in.selection()

	ranked := ranking.SelectTopK(in.Dataset, c.Field, c.TopK, ranking.Pin{Geo: in.Geo, ParentGeo: in.ParentGeo})
	desc := chart.Build(ranked, in.Dataset, c, sel)
	out := &Output{
		Header: desc.Header,
		Ranked: ranked,
		Chart:  desc,
		Bounds: geomap.DefaultBounds,
	}

	if in.Index != nil {
		out.Join = in.Index.Join(in.Dataset, c.Field, c.Metric, in.ParentGeo, c.Year, in.Palette)
		out.Bounds = in.Index.Bounds(in.Geo, in.ParentGeo, in.AdminLevel)
		out.Glyphs = in.Index.Glyphs(in.Glyph, in.Dataset, c.Field, c.Metric, in.ParentGeo, c.Year, c.YScale == "log")
		out.Layer = geomap.NewLayer(in.Index, geomap.Styles(out.Join), in.ParentGeo)
		if sel.Geo != "" && sel.Geo != sel.ParentGeo {
			out.Layer.SelectFromChart(in.Geo)
		}
	}
	if out.Join != nil {
		out.Legend = palette.LegendRows(out.Join.Table, c.Metric)
	}
	out.Machine = focus.New(desc, out.Layer)
	return out
}
