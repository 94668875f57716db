package sources

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	geojson "github.com/paulmach/go.geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sudorandom/regionviz/pkg/dataset"
	"github.com/sudorandom/regionviz/pkg/utils"
)

// Paths lists the input files of a dashboard. Interventions is optional.
type Paths struct {
	Dataset       string
	Interventions string
	GeoJSON       string
}

type Bundle struct {
	Dataset  *dataset.Dataset
	Features *geojson.FeatureCollection
}

// LoadDataset reads a region series file. Files ending in .csv are parsed as
// long-format rows, anything else as the JSON payload.
func LoadDataset(path string) (*dataset.Dataset, error) {
	data, err := utils.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		ds, err := ParseSeriesCSV(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return ds, nil
	}
	ds, err := dataset.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// LoadInterventions attaches the intervention markers in path to ds.
func LoadInterventions(ds *dataset.Dataset, path string) error {
	data, err := utils.ReadFile(path)
	if err != nil {
		return err
	}
	if err := dataset.DecodeInterventions(ds, data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func LoadGeoJSON(path string) (*geojson.FeatureCollection, error) {
	data, err := utils.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// LoadBundle reads the dataset and the GeoJSON concurrently. The first error
// cancels the rest.
func LoadBundle(ctx context.Context, p Paths) (*Bundle, error) {
	log := zap.L().Named("sources")
	g, ctx := errgroup.WithContext(ctx)

	var b Bundle
	g.Go(func() error {
		ds, err := LoadDataset(p.Dataset)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.Interventions != "" {
			if err := LoadInterventions(ds, p.Interventions); err != nil {
				return err
			}
		}
		b.Dataset = ds
		return nil
	})
	if p.GeoJSON != "" {
		g.Go(func() error {
			fc, err := LoadGeoJSON(p.GeoJSON)
			if err != nil {
				return err
			}
			b.Features = fc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if b.Features == nil {
		b.Features = geojson.NewFeatureCollection()
	}
	log.Info("inputs loaded",
		zap.String("dataset", p.Dataset), zap.Int("regions", b.Dataset.Len()),
		zap.String("geojson", p.GeoJSON), zap.Int("features", len(b.Features.Features)))
	return &b, nil
}
