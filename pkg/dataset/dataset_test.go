package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = `{
  "UGA": {"name": "Uganda", "data": {
    "2010": {"PfPR_rmean": 0.4},
    "2012": {"PfPR_rmean": 0.3, "facilities": 120},
    "2015": {"PfPR_rmean": 0.2}
  }},
  "KEN": {"name": "Kenya", "data": {
    "2011": {"PfPR_rmean": 0.1},
    "2016": {"PfPR_rmean": "n/a"}
  }}
}`

func TestDecode(t *testing.T) {
	ds, err := Decode([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"KEN", "UGA"}, ds.IDs())

	uga, ok := ds.Get("UGA")
	require.True(t, ok)
	assert.Equal(t, "Uganda", uga.Name)
	assert.Equal(t, []int{2010, 2012, 2015}, uga.Years())

	ken, _ := ds.Get("KEN")
	_, ok = ken.Value(2016, "PfPR_rmean")
	assert.False(t, ok, "non-numeric values read as missing")
}

func TestDecodeBadYear(t *testing.T) {
	_, err := Decode([]byte(`{"X": {"name": "x", "data": {"later": {}}}}`))
	assert.Error(t, err)
}

func TestValueAt(t *testing.T) {
	ds, err := Decode([]byte(payload))
	require.NoError(t, err)
	uga, _ := ds.Get("UGA")

	tests := []struct {
		year int
		want float64
		ok   bool
	}{
		{2012, 0.3, true},
		{2013, 0.3, true},
		{2020, 0.2, true},
		{2010, 0.4, true},
		{2009, 0, false},
	}
	for _, tt := range tests {
		got, ok := uga.ValueAt(tt.year, "PfPR_rmean")
		assert.Equal(t, tt.ok, ok, "year %d", tt.year)
		assert.InDelta(t, tt.want, got, 1e-9, "year %d", tt.year)
	}

	v, ok := uga.ValueAt(2015, "facilities")
	assert.True(t, ok)
	assert.Equal(t, 120.0, v)
}

func TestLatestAndMinMax(t *testing.T) {
	ds, err := Decode([]byte(payload))
	require.NoError(t, err)

	uga, _ := ds.Get("UGA")
	v, ok := uga.Latest("PfPR_rmean")
	assert.True(t, ok)
	assert.Equal(t, 0.2, v)

	lo, hi := uga.MinMax("PfPR_rmean")
	assert.Equal(t, 0.2, lo)
	assert.Equal(t, 0.4, hi)

	ken, _ := ds.Get("KEN")
	_, ok = ken.Latest("PfPR_rmean")
	assert.False(t, ok, "latest year has no value")

	assert.Equal(t, 0.4, ds.MaxValue("PfPR_rmean"))
}

func TestNilSafety(t *testing.T) {
	var ds *Dataset
	assert.Equal(t, 0, ds.Len())
	assert.Nil(t, ds.IDs())
	_, ok := ds.Get("UGA")
	assert.False(t, ok)

	var r *RegionSeries
	_, ok = r.ValueAt(2010, "x")
	assert.False(t, ok)
}

func TestDecodeInterventions(t *testing.T) {
	ds := New()
	err := DecodeInterventions(ds, []byte(`{"UGA": [{"name": "ITN", "year": 2014}, {"name": "IRS", "year": 2011}]}`))
	require.NoError(t, err)
	assert.Equal(t, []Intervention{{Name: "IRS", Year: 2011}, {Name: "ITN", Year: 2014}}, ds.Interventions["UGA"])
}
