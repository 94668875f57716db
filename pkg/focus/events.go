package focus

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sudorandom/regionviz/pkg/chart"
)

type EventKind int

const (
	EventClick EventKind = iota
	EventLegendClick
	EventLegendDoubleClick
	EventAnnotationClick
	EventFeatureHover
	EventFeatureLeave
	EventFeatureClick
	EventReset
)

var eventNames = map[EventKind]string{
	EventClick:             "click",
	EventLegendClick:       "legendclick",
	EventLegendDoubleClick: "legenddoubleclick",
	EventAnnotationClick:   "annotationclick",
	EventFeatureHover:      "featurehover",
	EventFeatureLeave:      "featureleave",
	EventFeatureClick:      "featureclick",
	EventReset:             "reset",
}

func (k EventKind) String() string {
	if s, ok := eventNames[k]; ok {
		return s
	}
	return fmt.Sprintf("event(%d)", int(k))
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EventKind) UnmarshalText(b []byte) error {
	for kind, name := range eventNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown event %q", b)
}

// Event is a user interaction on the chart or the map. Trace addresses chart
// traces, Feature addresses map features, Annotation addresses chart annotations.
// Region names the region of a feature click.
type Event struct {
	Kind       EventKind `json:"kind"`
	Trace      int       `json:"trace,omitempty"`
	Annotation int       `json:"annotation,omitempty"`
	Feature    int       `json:"feature,omitempty"`
	Region     string    `json:"region,omitempty"`
	SymbolID   string    `json:"symbol,omitempty"`
}

// Handle dispatches an event and reports whether it changed anything. Legend
// clicks are swallowed; the legend is toggled through its annotation instead.
func (m *Machine) Handle(ev Event) bool {
	switch ev.Kind {
	case EventClick:
		if ev.SymbolID != "" {
			m.SymbolClick(ev.SymbolID)
			return true
		}
		return m.Click(ev.Trace)
	case EventLegendClick, EventLegendDoubleClick:
		return false
	case EventAnnotationClick:
		a, ok := m.desc.Annotation(ev.Annotation)
		if !ok || a.Meta == nil || a.Meta.ID != chart.LegendClickID {
			return false
		}
		m.ToggleLegend()
		return true
	case EventFeatureHover:
		if m.layer == nil {
			return false
		}
		m.layer.Hover(ev.Feature)
		return true
	case EventFeatureLeave:
		if m.layer == nil {
			return false
		}
		m.layer.Leave(ev.Feature)
		return true
	case EventFeatureClick:
		return m.FocusRegion(ev.Region)
	case EventReset:
		m.Reset()
		return true
	}
	m.log.Debug("unhandled event", zap.Stringer("kind", ev.Kind))
	return false
}
