// Package regions lists the administrative regions a user can pick and filters
// them as the user types.
package regions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/biter777/countries"
	"github.com/cloudflare/ahocorasick"
	geojson "github.com/paulmach/go.geojson"
)

// All is the query that matches every option.
const All = "all"

// Option is a selectable region. Name is the region key (an ISO alpha-3 code on
// the country level), FullName is what the user sees.
type Option struct {
	Name     string `json:"name"`
	FullName string `json:"fullname"`
}

var admin0 = []Option{
	{Name: "UGA", FullName: "Uganda"},
	{Name: "TZA", FullName: "Tanzania"},
	{Name: "KEN", FullName: "Kenya"},
}

// Admin0 returns the supported countries. Every code must be a known ISO 3166
// alpha-3 code.
func Admin0() ([]Option, error) {
	out := make([]Option, 0, len(admin0))
	for _, o := range admin0 {
		c := countries.ByName(o.Name)
		if c == countries.Unknown || c.Alpha3() != o.Name {
			return nil, fmt.Errorf("admin-0 option %q is not an ISO 3166 alpha-3 code", o.Name)
		}
		out = append(out, o)
	}
	return out, nil
}

// FromFeatures builds sub-national options from feature names, sorted and
// without duplicates.
func FromFeatures(fc *geojson.FeatureCollection) []Option {
	if fc == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []Option
	for _, f := range fc.Features {
		name, _ := f.Properties["NAME"].(string)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, Option{Name: name, FullName: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out
}

// Filter matches options against typed queries. It is safe for concurrent use.
type Filter struct {
	options []Option
	folded  [][]byte
}

func NewFilter(options []Option) *Filter {
	f := &Filter{options: options, folded: make([][]byte, len(options))}
	for i, o := range options {
		f.folded[i] = []byte(strings.ToLower(o.FullName))
	}
	return f
}

// Search returns the options whose full name contains every whitespace
// separated term of query, ignoring case. An empty query or "all" returns every
// option.
func (f *Filter) Search(query string) []Option {
	if query == All {
		return append([]Option(nil), f.options...)
	}
	terms := uniqueTerms(query)
	if len(terms) == 0 {
		return append([]Option(nil), f.options...)
	}
	m := ahocorasick.NewStringMatcher(terms)
	var out []Option
	for i, text := range f.folded {
		if len(m.MatchThreadSafe(text)) == len(terms) {
			out = append(out, f.options[i])
		}
	}
	return out
}

func uniqueTerms(query string) []string {
	var terms []string
	seen := make(map[string]bool)
	for _, t := range strings.Fields(strings.ToLower(query)) {
		if !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}
	return terms
}
