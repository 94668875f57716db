// Package ranking picks which regions are plotted on the overview chart.
package ranking

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sudorandom/regionviz/pkg/dataset"
)

// minPivot is the smallest pivot used once at least that many regions are shown.
const minPivot = 5

// Pin describes the region the user selected on the map. Geo equal to ParentGeo
// means the whole parent scope is selected and nothing is pinned.
type Pin struct {
	Geo       string
	ParentGeo string
}

func (p Pin) active() bool {
	return p.Geo != "" && p.Geo != p.ParentGeo
}

// K3rd clamps k to the number of available regions n and derives the pivot count:
// a third of the requested k, raised to 5 when at least 5 regions are shown.
// The pivot is computed from the requested k, before clamping.
func K3rd(k, n int) (int, int) {
	k3rd := (k + 2) / 3
	if n < k {
		k = n
	}
	if k3rd < minPivot && k >= minPivot {
		k3rd = minPivot
	}
	return k, k3rd
}

// SelectTopK ranks regions by the value of field at each region's own latest year,
// highest first, and returns the first k ids. Regions without a latest value sort
// last. A pinned region present in the dataset is always part of the result: it is
// promoted to the pivot slot k3rd-1 when ranked below it, or inserted there and the
// last id dropped when it did not make the cut.
func SelectTopK(ds *dataset.Dataset, field string, k int, pin Pin) []string {
	if ds.Len() == 0 || field == "" || k <= 0 {
		return []string{}
	}
	log := zap.L().Named("ranking")

	k, k3rd := K3rd(k, ds.Len())

	type entry struct {
		id  string
		v   float64
		has bool
	}
	ids := ds.IDs()
	entries := make([]entry, len(ids))
	for i, id := range ids {
		r, _ := ds.Get(id)
		v, ok := r.Latest(field)
		entries[i] = entry{id: id, v: v, has: ok}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.has != b.has {
			return a.has
		}
		return a.v > b.v
	})

	selected := make([]string, 0, k)
	for _, e := range entries[:k] {
		selected = append(selected, e.id)
	}

	if !pin.active() {
		return selected
	}
	if _, ok := ds.Get(pin.Geo); !ok {
		log.Debug("data missing for selected admin", zap.String("geo", pin.Geo), zap.String("field", field))
		return selected
	}

	pivot := k3rd - 1
	if pivot >= len(selected) {
		pivot = len(selected) - 1
	}
	if pivot < 0 {
		return selected
	}

	idx := indexOf(selected, pin.Geo)
	switch {
	case idx > pivot:
		selected[pivot], selected[idx] = selected[idx], selected[pivot]
	case idx == -1:
		selected = append(selected[:pivot], append([]string{pin.Geo}, selected[pivot:]...)...)
		selected = selected[:len(selected)-1]
	}
	log.Debug("pinned region placed", zap.String("geo", pin.Geo), zap.Int("from", idx), zap.Int("pivot", pivot))
	return selected
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
