package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/sudorandom/regionviz/pkg/config"
	"github.com/sudorandom/regionviz/pkg/dashboard"
	"github.com/sudorandom/regionviz/pkg/focus"
	"github.com/sudorandom/regionviz/pkg/ranking"
	"github.com/sudorandom/regionviz/pkg/regions"
	"github.com/sudorandom/regionviz/pkg/sources"
	"github.com/sudorandom/regionviz/pkg/utils"
)

type RenderCmd struct {
	Overrides `embed:""`

	Out     string `short:"o" default:"-" help:"Output file, '-' for stdout."`
	NoCache bool   `help:"Skip the render cache even when it is enabled."`
}

func (r *RenderCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.setup(&r.Overrides)
	if err != nil {
		return err
	}
	log := zap.L().Named("render")

	in, err := loader(cfg)(ctx)
	if err != nil {
		return err
	}

	var payload []byte
	if cfg.Cache.Enabled && !r.NoCache {
		store, err := utils.OpenStore(cfg.Cache.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		var hit bool
		payload, hit, err = dashboard.NewCache(store, cfg.Cache.TTL).Render(in, revision(cfg))
		if err != nil {
			return err
		}
		log.Debug("render cache", zap.Bool("hit", hit))
	} else {
		payload, err = json.Marshal(dashboard.Rebuild(in))
		if err != nil {
			return err
		}
	}

	log.Info("rendered", zap.String("out", r.Out), zap.String("size", humanize.Bytes(uint64(len(payload)))))
	return utils.WriteTo(os.Stdout, r.Out, payload)
}

// revision identifies the input files by size and modification time.
func revision(cfg *config.Config) string {
	var parts []string
	for _, p := range []string{cfg.Inputs.Dataset, cfg.Inputs.Interventions, cfg.Inputs.GeoJSON} {
		if p == "" {
			continue
		}
		fi, err := os.Stat(p)
		if err != nil {
			parts = append(parts, p)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%d:%d", p, fi.Size(), fi.ModTime().UnixNano()))
	}
	return strings.Join(parts, "|")
}

type RankCmd struct {
	Overrides `embed:""`
}

func (r *RankCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.setup(&r.Overrides)
	if err != nil {
		return err
	}
	in, err := loader(cfg)(ctx)
	if err != nil {
		return err
	}
	c := in.Controls
	ranked := ranking.SelectTopK(in.Dataset, c.Field, c.TopK, ranking.Pin{Geo: in.Geo, ParentGeo: in.ParentGeo})
	for i, id := range ranked {
		series, _ := in.Dataset.Get(id)
		value := "no data"
		if v, ok := series.Latest(c.Field); ok {
			value = humanize.CommafWithDigits(v, 2)
		}
		fmt.Printf("%-5s %-6s %-30s %s\n", humanize.Ordinal(i+1), id, series.Name, value)
	}
	return nil
}

type FocusCmd struct {
	Overrides `embed:""`

	Events string `arg:"" type:"existingfile" help:"JSON file with a list of events, e.g. [{\"kind\": \"click\", \"trace\": 0}]."`
	Out    string `short:"o" default:"-" help:"Output file, '-' for stdout."`
}

func (f *FocusCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.setup(&f.Overrides)
	if err != nil {
		return err
	}
	log := zap.L().Named("focus")

	raw, err := utils.ReadFile(f.Events)
	if err != nil {
		return err
	}
	var events []focus.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return fmt.Errorf("parse %s: %w", f.Events, err)
	}

	s := dashboard.NewSession()
	res := <-s.Load(ctx, loader(cfg))
	if res.Err != nil {
		return res.Err
	}
	if !res.Installed {
		return errors.New("rebuild superseded")
	}
	for _, ev := range events {
		changed := s.Handle(ev)
		log.Debug("event", zap.Stringer("kind", ev.Kind), zap.Bool("changed", changed))
	}

	payload, err := s.Render()
	if err != nil {
		return err
	}
	return utils.WriteTo(os.Stdout, f.Out, payload)
}

type SearchCmd struct {
	Query    string `arg:"" optional:"" help:"Search terms; empty or 'all' lists every option."`
	GeoLevel string `default:"null" help:"null lists countries; 'Admin 1' lists features of the map file."`
}

func (s *SearchCmd) Run(g *Globals) error {
	cfg, err := g.setup(nil)
	if err != nil {
		return err
	}

	var opts []regions.Option
	if sources.AdminLevel(s.GeoLevel) == 0 {
		opts, err = regions.Admin0()
		if err != nil {
			return err
		}
	} else {
		fc, err := sources.LoadGeoJSON(cfg.Inputs.GeoJSON)
		if err != nil {
			return err
		}
		opts = regions.FromFeatures(fc)
	}

	out, err := json.MarshalIndent(regions.NewFilter(opts).Search(s.Query), "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteTo(os.Stdout, "-", append(out, '\n'))
}

// controlOptions lists every dropdown of the control panel.
type controlOptions struct {
	XAxis          []sources.Option `json:"xAxis"`
	Metrics        []sources.Option `json:"metrics"`
	YScale         []sources.Option `json:"yScale"`
	GeoLevels      []string         `json:"geoLevels"`
	Normalizations []string         `json:"normalizations"`
	Glyphs         []string         `json:"glyphs"`
	Admin0         []regions.Option `json:"admin0"`
}

func newControlOptions() (controlOptions, error) {
	admin0, err := regions.Admin0()
	if err != nil {
		return controlOptions{}, err
	}
	return controlOptions{
		XAxis:          sources.XAxisOptions,
		Metrics:        sources.MetricOptions,
		YScale:         sources.YScaleOptions,
		GeoLevels:      sources.GeoLevels,
		Normalizations: sources.Normalizations,
		Glyphs:         sources.Glyphs,
		Admin0:         admin0,
	}, nil
}

type OptionsCmd struct{}

func (o *OptionsCmd) Run() error {
	opts, err := newControlOptions()
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteTo(os.Stdout, "-", append(out, '\n'))
}
