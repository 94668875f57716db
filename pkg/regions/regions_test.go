package regions

import (
	"testing"

	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin0(t *testing.T) {
	opts, err := Admin0()
	require.NoError(t, err)
	assert.Equal(t, []Option{
		{Name: "UGA", FullName: "Uganda"},
		{Name: "TZA", FullName: "Tanzania"},
		{Name: "KEN", FullName: "Kenya"},
	}, opts)
}

func TestFromFeatures(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	for _, name := range []string{"Wakiso", "Kampala", "kampala", ""} {
		f := geojson.NewPointFeature([]float64{32, 0})
		f.SetProperty("NAME", name)
		fc.AddFeature(f)
	}
	assert.Equal(t, []Option{
		{Name: "Kampala", FullName: "Kampala"},
		{Name: "Wakiso", FullName: "Wakiso"},
	}, FromFeatures(fc))
	assert.Nil(t, FromFeatures(nil))
}

func TestSearch(t *testing.T) {
	f := NewFilter([]Option{
		{Name: "UGA", FullName: "Uganda"},
		{Name: "TZA", FullName: "United Republic of Tanzania"},
		{Name: "KEN", FullName: "Kenya"},
	})

	names := func(opts []Option) []string {
		out := []string{}
		for _, o := range opts {
			out = append(out, o.Name)
		}
		return out
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"UGA", "TZA", "KEN"}},
		{"all", []string{"UGA", "TZA", "KEN"}},
		{"   ", []string{"UGA", "TZA", "KEN"}},
		{"an", []string{"UGA", "TZA"}},
		{"AN", []string{"UGA", "TZA"}},
		{"tanz rep", []string{"TZA"}},
		{"rep rep", []string{"TZA"}},
		{"kenya uganda", []string{}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, names(f.Search(tt.query)))
		})
	}
}
