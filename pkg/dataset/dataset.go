// Package dataset holds the per-region yearly metric series the dashboard is built from.
package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// RegionSeries is one region's sparse yearly metrics: year -> field -> value.
type RegionSeries struct {
	ID   string                     `json:"-"`
	Name string                     `json:"name"`
	Data map[int]map[string]float64 `json:"data"`
}

// Intervention is a labelled event on a region's timeline, drawn as a chart marker.
type Intervention struct {
	Name string `json:"name"`
	Year int    `json:"year"`
}

// Dataset is the full input of a rebuild, keyed by region id (ISO code or display name).
type Dataset struct {
	Regions       map[string]*RegionSeries
	Interventions map[string][]Intervention
}

func New() *Dataset {
	return &Dataset{
		Regions:       make(map[string]*RegionSeries),
		Interventions: make(map[string][]Intervention),
	}
}

// Len reports the number of regions; a nil dataset is empty.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Regions)
}

func (d *Dataset) Get(id string) (*RegionSeries, bool) {
	if d == nil {
		return nil, false
	}
	r, ok := d.Regions[id]
	return r, ok
}

// IDs returns region ids in ascending order.
func (d *Dataset) IDs() []string {
	if d == nil {
		return nil
	}
	ids := make([]string, 0, len(d.Regions))
	for id := range d.Regions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Add inserts or replaces a region series.
func (d *Dataset) Add(r *RegionSeries) {
	if d.Regions == nil {
		d.Regions = make(map[string]*RegionSeries)
	}
	d.Regions[r.ID] = r
}

// Years returns the years present in the series in ascending order.
func (r *RegionSeries) Years() []int {
	if r == nil {
		return nil
	}
	years := make([]int, 0, len(r.Data))
	for y := range r.Data {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Value returns the field value for exactly the given year.
func (r *RegionSeries) Value(year int, field string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	fields, ok := r.Data[year]
	if !ok {
		return 0, false
	}
	v, ok := fields[field]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ValueAt looks up field at year, falling back to the latest earlier year that
// has the field. It reports false when no year at or before the request has a value.
func (r *RegionSeries) ValueAt(year int, field string) (float64, bool) {
	years := r.Years()
	for i := len(years) - 1; i >= 0; i-- {
		if years[i] > year {
			continue
		}
		if v, ok := r.Value(years[i], field); ok {
			return v, true
		}
	}
	return 0, false
}

// Latest returns the value at the region's most recent year. A region whose most
// recent year lacks the field has no latest value.
func (r *RegionSeries) Latest(field string) (float64, bool) {
	years := r.Years()
	if len(years) == 0 {
		return 0, false
	}
	return r.Value(years[len(years)-1], field)
}

// MinMax returns the smallest and largest values of field across all years.
// Both are 0 when the series has no values.
func (r *RegionSeries) MinMax(field string) (lo, hi float64) {
	first := true
	for _, y := range r.Years() {
		v, ok := r.Value(y, field)
		if !ok {
			continue
		}
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// MaxValue is the largest value of field across every region.
func (d *Dataset) MaxValue(field string) float64 {
	m := 0.0
	first := true
	for _, id := range d.IDs() {
		_, hi := d.Regions[id].MinMax(field)
		if first || hi > m {
			m = hi
			first = false
		}
	}
	return m
}

type wireSeries struct {
	Name string                                `json:"name"`
	Data map[string]map[string]json.RawMessage `json:"data"`
}

// Decode parses the region payload {id: {name, data: {year: {field: value}}}}.
// Non-numeric field values are dropped so they read as missing.
func Decode(raw []byte) (*Dataset, error) {
	var wire map[string]wireSeries
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	ds := New()
	for id, ws := range wire {
		r := &RegionSeries{ID: id, Name: ws.Name, Data: make(map[int]map[string]float64, len(ws.Data))}
		if r.Name == "" {
			r.Name = id
		}
		for yearKey, fields := range ws.Data {
			year, err := strconv.Atoi(yearKey)
			if err != nil {
				return nil, fmt.Errorf("decode dataset: region %s: bad year %q: %w", id, yearKey, err)
			}
			vals := make(map[string]float64, len(fields))
			for field, rawVal := range fields {
				var v *float64
				if err := json.Unmarshal(rawVal, &v); err != nil || v == nil {
					continue
				}
				vals[field] = *v
			}
			r.Data[year] = vals
		}
		ds.Add(r)
	}
	return ds, nil
}

// DecodeInterventions parses {id: [{name, year}]} and attaches it to ds.
func DecodeInterventions(ds *Dataset, raw []byte) error {
	var wire map[string][]Intervention
	if err := json.Unmarshal(raw, &wire); err != nil {
		return fmt.Errorf("decode interventions: %w", err)
	}
	if ds.Interventions == nil {
		ds.Interventions = make(map[string][]Intervention, len(wire))
	}
	for id, list := range wire {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Year < list[j].Year })
		ds.Interventions[id] = list
	}
	return nil
}
