// Package geomap joins region metrics onto GeoJSON features and produces the
// leaflet-shaped styles, bounds and glyphs of the choropleth map.
package geomap

import (
	"strings"

	"github.com/biter777/countries"
	lru "github.com/hashicorp/golang-lru/v2"
	geojson "github.com/paulmach/go.geojson"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GlobalLevel is the parentGeo value of the country-level map.
const GlobalLevel = "null"

const (
	propISO  = "ISO_A3"
	propName = "NAME"

	bboxCacheSize = 512
)

// Index looks up features by ISO_A3 code or name. Feature ids are positions in
// the collection.
type Index struct {
	fc     *geojson.FeatureCollection
	byISO  map[string]int
	byName map[string]int
	boxes  *lru.Cache[int, BBox]
}

func NewIndex(fc *geojson.FeatureCollection) *Index {
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}
	boxes, err := lru.New[int, BBox](bboxCacheSize)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	ix := &Index{
		fc:     fc,
		byISO:  make(map[string]int, len(fc.Features)),
		byName: make(map[string]int, len(fc.Features)),
		boxes:  boxes,
	}
	for i, f := range fc.Features {
		if iso := stringProp(f, propISO); iso != "" {
			if _, dup := ix.byISO[strings.ToUpper(iso)]; !dup {
				ix.byISO[strings.ToUpper(iso)] = i
			}
		}
		if name := stringProp(f, propName); name != "" {
			if _, dup := ix.byName[strings.ToLower(name)]; !dup {
				ix.byName[strings.ToLower(name)] = i
			}
		}
	}
	zap.L().Named("geomap").Debug("feature index built",
		zap.Int("features", len(fc.Features)), zap.Int("iso", len(ix.byISO)), zap.Int("names", len(ix.byName)))
	return ix
}

func (ix *Index) Len() int { return len(ix.fc.Features) }

func (ix *Index) Feature(id int) (*geojson.Feature, bool) {
	if id < 0 || id >= len(ix.fc.Features) {
		return nil, false
	}
	return ix.fc.Features[id], true
}

// Match finds the feature drawn for a region id. On the global level regions are
// ISO_A3 codes, though country names and alpha-2 codes are resolved too. Below
// it they are matched by feature NAME.
func (ix *Index) Match(region, parentGeo string) (int, bool) {
	if region == "" {
		return -1, false
	}
	if parentGeo == GlobalLevel {
		if id, ok := ix.byISO[strings.ToUpper(region)]; ok {
			return id, true
		}
		if c := countries.ByName(region); c != countries.Unknown {
			if id, ok := ix.byISO[c.Alpha3()]; ok {
				return id, true
			}
		}
		return -1, false
	}
	id, ok := ix.byName[strings.ToLower(region)]
	return id, ok
}

// Find resolves a selection to a feature by ISO_A3 first, then by name.
func (ix *Index) Find(geo string) (int, bool) {
	if id, ok := ix.byISO[strings.ToUpper(geo)]; ok {
		return id, true
	}
	id, ok := ix.byName[strings.ToLower(geo)]
	return id, ok
}

// Admin is the region key of a feature: its ISO_A3 code, or its title-cased NAME
// for sub-national features.
func (ix *Index) Admin(id int) string {
	f, ok := ix.Feature(id)
	if !ok {
		return ""
	}
	if iso := stringProp(f, propISO); iso != "" {
		return iso
	}
	return cases.Title(language.English).String(stringProp(f, propName))
}

func stringProp(f *geojson.Feature, key string) string {
	if f == nil || f.Properties == nil {
		return ""
	}
	s, _ := f.Properties[key].(string)
	return s
}
