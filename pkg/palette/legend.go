package palette

import (
	"github.com/dustin/go-humanize"
)

const NoDataLabel = "No data"

type LegendRow struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// LegendRows lists the swatches shown next to the map: the no-data swatch first,
// then one row per bucket. The open-ended top bucket is labelled with the outcome.
func LegendRows(t Table, outcome string) []LegendRow {
	rows := make([]LegendRow, 0, len(t.Boundaries)+1)
	rows = append(rows, LegendRow{Color: LegendNoData, Label: NoDataLabel})
	for i, b := range t.Boundaries {
		label := humanize.Commaf(b)
		if i+1 < len(t.Boundaries) {
			label += "–" + humanize.Commaf(t.Boundaries[i+1])
		} else {
			label += "+ " + outcome
		}
		rows = append(rows, LegendRow{Color: t.ColorFor(b), Label: label})
	}
	return rows
}
