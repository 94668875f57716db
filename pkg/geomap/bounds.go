package geomap

import (
	"encoding/json"
	"math"

	geojson "github.com/paulmach/go.geojson"
)

// LatLng is a leaflet coordinate pair, latitude first.
type LatLng [2]float64

func (p LatLng) Lat() float64 { return p[0] }
func (p LatLng) Lng() float64 { return p[1] }

// BBox serializes as [[south, west], [north, east]].
type BBox struct {
	SouthWest LatLng
	NorthEast LatLng
}

var (
	// DefaultBounds frames the African continent.
	DefaultBounds = BBox{
		SouthWest: LatLng{-34.81916635512371, -17.62504269049066},
		NorthEast: LatLng{37.349994411766545, 51.13387},
	}
	MaxBounds = BBox{
		SouthWest: LatLng{-90, -180},
		NorthEast: LatLng{90, 180},
	}
)

func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]LatLng{b.SouthWest, b.NorthEast})
}

func (b *BBox) UnmarshalJSON(data []byte) error {
	var pair [2]LatLng
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	b.SouthWest, b.NorthEast = pair[0], pair[1]
	return nil
}

func (b BBox) Center() LatLng {
	return LatLng{
		(b.SouthWest.Lat() + b.NorthEast.Lat()) / 2,
		(b.SouthWest.Lng() + b.NorthEast.Lng()) / 2,
	}
}

// Union returns the smallest box containing both.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		SouthWest: LatLng{math.Min(b.SouthWest.Lat(), o.SouthWest.Lat()), math.Min(b.SouthWest.Lng(), o.SouthWest.Lng())},
		NorthEast: LatLng{math.Max(b.NorthEast.Lat(), o.NorthEast.Lat()), math.Max(b.NorthEast.Lng(), o.NorthEast.Lng())},
	}
}

// BBox returns the bounding box of a feature. An explicit GeoJSON bbox wins over
// the geometry. Features without coordinates have no box.
func (ix *Index) BBox(id int) (BBox, bool) {
	if b, ok := ix.boxes.Get(id); ok {
		return b, true
	}
	f, ok := ix.Feature(id)
	if !ok {
		return BBox{}, false
	}
	b, ok := featureBBox(f)
	if !ok {
		return BBox{}, false
	}
	ix.boxes.Add(id, b)
	return b, true
}

// Bounds is the view the map fits to. A selected region frames its own feature;
// admin levels 1 and 2 frame every feature; anything else uses DefaultBounds.
func (ix *Index) Bounds(geo, parentGeo string, adminLevel int) BBox {
	if geo != "" && geo != parentGeo {
		if id, ok := ix.Find(geo); ok {
			if b, ok := ix.BBox(id); ok {
				return b
			}
		}
	}
	if adminLevel == 1 || adminLevel == 2 {
		var out BBox
		found := false
		for id := range ix.fc.Features {
			b, ok := ix.BBox(id)
			if !ok {
				continue
			}
			if !found {
				out, found = b, true
				continue
			}
			out = out.Union(b)
		}
		if found {
			return out
		}
	}
	return DefaultBounds
}

func featureBBox(f *geojson.Feature) (BBox, bool) {
	if len(f.BoundingBox) == 4 {
		return BBox{
			SouthWest: LatLng{f.BoundingBox[1], f.BoundingBox[0]},
			NorthEast: LatLng{f.BoundingBox[3], f.BoundingBox[2]},
		}, true
	}
	if f.Geometry == nil {
		return BBox{}, false
	}
	acc := bboxAcc{}
	acc.geometry(f.Geometry)
	return acc.box, acc.found
}

type bboxAcc struct {
	box   BBox
	found bool
}

// add takes a GeoJSON position, longitude first.
func (a *bboxAcc) add(pos []float64) {
	if len(pos) < 2 {
		return
	}
	p := LatLng{pos[1], pos[0]}
	if !a.found {
		a.box = BBox{SouthWest: p, NorthEast: p}
		a.found = true
		return
	}
	a.box = a.box.Union(BBox{SouthWest: p, NorthEast: p})
}

func (a *bboxAcc) geometry(g *geojson.Geometry) {
	switch g.Type {
	case geojson.GeometryPoint:
		a.add(g.Point)
	case geojson.GeometryMultiPoint:
		for _, p := range g.MultiPoint {
			a.add(p)
		}
	case geojson.GeometryLineString:
		for _, p := range g.LineString {
			a.add(p)
		}
	case geojson.GeometryMultiLineString:
		for _, line := range g.MultiLineString {
			for _, p := range line {
				a.add(p)
			}
		}
	case geojson.GeometryPolygon:
		for _, ring := range g.Polygon {
			for _, p := range ring {
				a.add(p)
			}
		}
	case geojson.GeometryMultiPolygon:
		for _, poly := range g.MultiPolygon {
			for _, ring := range poly {
				for _, p := range ring {
					a.add(p)
				}
			}
		}
	case geojson.GeometryCollection:
		for _, sub := range g.Geometries {
			if sub != nil {
				a.geometry(sub)
			}
		}
	}
}
