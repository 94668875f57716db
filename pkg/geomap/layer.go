package geomap

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	hoverColor    = "#999"
	selectedColor = "#606060"

	selectedWeight      = 3
	selectedHoverWeight = 5
)

// Layer tracks the current style of every feature as hover and chart selection
// change it. It is safe for concurrent use.
type Layer struct {
	mu        sync.Mutex
	ix        *Index
	parentGeo string
	base      []FeatureStyle
	current   []FeatureStyle
	selected  int
}

func NewLayer(ix *Index, styles []FeatureStyle, parentGeo string) *Layer {
	return &Layer{
		ix:        ix,
		parentGeo: parentGeo,
		base:      append([]FeatureStyle(nil), styles...),
		current:   append([]FeatureStyle(nil), styles...),
		selected:  -1,
	}
}

// Styles returns a copy of the current styles.
func (l *Layer) Styles() []FeatureStyle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]FeatureStyle(nil), l.current...)
}

func (l *Layer) Style(id int) (FeatureStyle, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.valid(id) {
		return FeatureStyle{}, false
	}
	return l.current[id], true
}

// Selected reports the feature highlighted from the chart, if any.
func (l *Layer) Selected() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selected, l.selected >= 0
}

// Hover highlights a feature under the pointer. A chart-selected feature gets a
// heavier outline instead. Fill color and stroke opacity are left alone.
func (l *Layer) Hover(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.valid(id) {
		return
	}
	s := &l.current[id]
	if s.Weight == selectedWeight {
		s.Weight = selectedHoverWeight
		s.Color = selectedColor
		s.FillOpacity = 0.7125
		return
	}
	s.Weight = 2.5
	s.Color = hoverColor
	s.DashArray = ""
	s.FillOpacity = 0.7
}

// Leave restores a feature's base style, keeping the chart selection highlight.
func (l *Layer) Leave(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.valid(id) {
		return
	}
	l.current[id] = l.base[id]
	if id == l.selected {
		l.applySelected(id)
	}
}

// SelectFromChart highlights the feature of a region picked on the chart,
// clearing any earlier selection. It reports whether a feature was found.
func (l *Layer) SelectFromChart(region string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.selected >= 0 {
		l.current[l.selected] = l.base[l.selected]
	}
	for i := range l.current {
		if l.current[i].Weight == selectedWeight {
			l.current[i] = l.base[i]
		}
	}
	l.selected = -1

	var (
		id int
		ok bool
	)
	if l.parentGeo == GlobalLevel {
		id, ok = l.ix.Find(region)
	} else {
		id, ok = l.ix.byName[strings.ToLower(region)]
	}
	if !ok || !l.valid(id) {
		zap.L().Named("geomap").Debug("no feature for chart selection", zap.String("region", region))
		return false
	}
	l.applySelected(id)
	l.selected = id
	return true
}

// Reset drops every highlight.
func (l *Layer) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	copy(l.current, l.base)
	l.selected = -1
}

func (l *Layer) applySelected(id int) {
	s := &l.current[id]
	s.Weight = selectedWeight
	s.Color = selectedColor
	s.Opacity = 1
	s.DashArray = ""
	s.FillOpacity = 0.7
}

func (l *Layer) valid(id int) bool {
	return id >= 0 && id < len(l.current)
}
