// Package sources knows where dashboard inputs come from: the metric catalogue,
// the control-panel options and the dataset and GeoJSON files on disk.
package sources

import (
	"errors"
	"fmt"
)

var ErrUnknownMetric = errors.New("unknown metric")

// MetricFields maps the display name of a metric to its dataset field.
var MetricFields = map[string]string{
	"Parasite Rate (pf)":  "PfPR_rmean",
	"Parasite Rate (pv)":  "PvPR_rmean",
	"Incidence Rate (pf)": "pf_incidence_rate_rmean",
	"Incidence Rate (pv)": "pv_incidence_rate_rmean",
	"Mortality Rate (pf)": "pf_mortality_rate_rmean",
	"Facilities":          "facilities",
}

// Option is a control-panel dropdown entry.
type Option struct {
	Name     string `json:"name"`
	Disabled bool   `json:"disabled"`
}

var (
	XAxisOptions = []Option{
		{Name: "Date"},
		{Name: "Days Since ...", Disabled: true},
	}
	MetricOptions = []Option{
		{Name: "Parasite Rate (pf)"},
		{Name: "Parasite Rate (pv)"},
		{Name: "Incidence Rate (pf)"},
		{Name: "Incidence Rate (pv)"},
		{Name: "Mortality Rate (pf)"},
		{Name: "Facilities", Disabled: true},
	}
	YScaleOptions = []Option{
		{Name: "Linear Scale"},
		{Name: "Log Scale", Disabled: true},
	}
	GeoLevels      = []string{"null", "Admin 1", "Admin 2"}
	Normalizations = []string{"None", "Per 100k"}
	Glyphs         = []string{"choropleth", "spikes", "bubbles"}
)

// yScales maps dropdown names to plotly axis types.
var yScales = map[string]string{
	"Linear Scale": "linear",
	"Log Scale":    "log",
}

// FieldFor resolves a metric display name to its dataset field.
func FieldFor(metric string) (string, error) {
	f, ok := MetricFields[metric]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	return f, nil
}

// AxisType returns the plotly axis type of a y-scale option. Plotly names are
// passed through; anything else is linear.
func AxisType(yScale string) string {
	if t, ok := yScales[yScale]; ok {
		return t
	}
	if yScale == "log" {
		return "log"
	}
	return "linear"
}

// AdminLevel turns a geo level option into its numeric admin level.
func AdminLevel(level string) int {
	for i, l := range GeoLevels {
		if l == level {
			return i
		}
	}
	return 0
}
