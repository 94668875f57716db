package sources

import (
	"bufio"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/sudorandom/regionviz/pkg/dataset"
)

// ParseSeriesCSV reads long-format series rows into a dataset:
//
//	region_id,region_name,year,field,value
//
// Blank lines and lines starting with # are skipped, as are rows that do not
// parse. An empty or non-numeric value marks the field as missing for that year.
func ParseSeriesCSV(r io.Reader) (*dataset.Dataset, error) {
	ds := dataset.New()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		reader := csv.NewReader(strings.NewReader(line))
		record, err := reader.Read()
		if err != nil || len(record) < 5 {
			continue
		}

		id := strings.TrimSpace(record[0])
		year, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if id == "" || err != nil {
			continue
		}

		rs, ok := ds.Get(id)
		if !ok {
			rs = &dataset.RegionSeries{ID: id, Name: strings.TrimSpace(record[1]), Data: map[int]map[string]float64{}}
			if rs.Name == "" {
				rs.Name = id
			}
			ds.Add(rs)
		}
		fields, ok := rs.Data[year]
		if !ok {
			fields = map[string]float64{}
			rs.Data[year] = fields
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
		if err != nil || math.IsNaN(v) {
			continue
		}
		fields[strings.TrimSpace(record[3])] = v
	}
	return ds, scanner.Err()
}
