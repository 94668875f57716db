package geomap

import (
	"math"

	geojson "github.com/paulmach/go.geojson"
	"go.uber.org/zap"

	"github.com/sudorandom/regionviz/pkg/dataset"
	"github.com/sudorandom/regionviz/pkg/palette"
)

const (
	PropDensity          = "density"
	PropDensityFeature   = "densityFeature"
	PropDensityPartition = "densityPartition"
)

// Join is a copy of the feature collection annotated with the current metric.
// Values and Regions are indexed by feature id; unmatched features hold NaN and "".
type Join struct {
	Collection *geojson.FeatureCollection
	Values     []float64
	Regions    []string
	Table      palette.Table
	Field      string
	Label      string
}

// Join matches every dataset region to a feature and records its value at year
// (falling back to the latest earlier year). The partition is computed over each
// region's maximum and minimum across all years. The indexed collection is not
// modified. A nil dataset yields a nil join. colors picks the fill palette;
// empty means palette.Yellow.
func (ix *Index) Join(ds *dataset.Dataset, field, label, parentGeo string, year int, colors []string) *Join {
	if ds == nil {
		return nil
	}
	log := zap.L().Named("geomap")

	n := len(ix.fc.Features)
	j := &Join{
		Collection: geojson.NewFeatureCollection(),
		Values:     make([]float64, n),
		Regions:    make([]string, n),
		Field:      field,
		Label:      label,
	}
	for i := range j.Values {
		j.Values[i] = math.NaN()
	}

	var maxes, mins []float64
	unmatched := 0
	for _, id := range ds.IDs() {
		r, _ := ds.Get(id)
		lo, hi := r.MinMax(field)
		maxes = append(maxes, hi)
		mins = append(mins, lo)

		fid, ok := ix.Match(id, parentGeo)
		if !ok {
			unmatched++
			continue
		}
		j.Regions[fid] = id
		if v, ok := r.ValueAt(year, field); ok {
			j.Values[fid] = v
		}
	}

	boundaries := palette.Partition(maxes, mins)
	j.Table = palette.NewTable(boundaries, colors)

	for i, f := range ix.fc.Features {
		props := make(map[string]interface{}, len(f.Properties)+3)
		for k, v := range f.Properties {
			props[k] = v
		}
		if j.Regions[i] != "" {
			if math.IsNaN(j.Values[i]) {
				props[PropDensity] = nil
			} else {
				props[PropDensity] = j.Values[i]
			}
			props[PropDensityFeature] = label
		}
		props[PropDensityPartition] = append([]float64(nil), boundaries...)
		j.Collection.AddFeature(&geojson.Feature{
			ID:          f.ID,
			Type:        f.Type,
			BoundingBox: f.BoundingBox,
			Geometry:    f.Geometry,
			Properties:  props,
		})
	}
	if unmatched > 0 {
		log.Debug("regions without a feature", zap.Int("count", unmatched), zap.String("parentGeo", parentGeo))
	}
	return j
}

// FeatureStyle is a leaflet path style.
type FeatureStyle struct {
	FillColor   string  `json:"fillColor,omitempty"`
	Color       string  `json:"color,omitempty"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	DashArray   string  `json:"dashArray"`
	FillOpacity float64 `json:"fillOpacity"`
}

// BaseStyle is the resting stroke of every feature.
var BaseStyle = FeatureStyle{
	Weight:      1,
	Opacity:     0.6,
	Color:       "#ccc",
	DashArray:   "2",
	FillOpacity: 0.4,
}

// Styles colors each feature by its joined value. Unmatched features and
// features without a value get the no-data fill.
func Styles(j *Join) []FeatureStyle {
	if j == nil {
		return nil
	}
	out := make([]FeatureStyle, len(j.Values))
	for i, v := range j.Values {
		s := BaseStyle
		s.FillColor = j.Table.ColorFor(v)
		out[i] = s
	}
	return out
}
