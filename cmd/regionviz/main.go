package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/sudorandom/regionviz/pkg/chart"
	"github.com/sudorandom/regionviz/pkg/config"
	"github.com/sudorandom/regionviz/pkg/dashboard"
	"github.com/sudorandom/regionviz/pkg/geomap"
	"github.com/sudorandom/regionviz/pkg/logging"
	"github.com/sudorandom/regionviz/pkg/sources"
)

type Globals struct {
	Config   string `short:"c" type:"path" help:"YAML config file." env:"REGIONVIZ_CONFIG"`
	LogLevel string `help:"Override the configured log level (debug, info, warn, error)."`
}

// Overrides are control-panel flags shared by the commands that build a dashboard.
type Overrides struct {
	Metric    string `help:"Metric display name, e.g. 'Incidence Rate (pf)'."`
	Year      int    `help:"Last year shown."`
	TopK      int    `name:"top-k" help:"Number of regions plotted."`
	Geo       string `help:"Selected region (ISO alpha-3 code or admin name)."`
	ParentGeo string `help:"Region the selection is scoped to."`
	GeoLevel  string `help:"Geo level: null, 'Admin 1' or 'Admin 2'."`
	Glyph     string `help:"Map glyph: choropleth, spikes or bubbles."`
	YScale    string `name:"y-scale" help:"'Linear Scale' or 'Log Scale'."`
	Palette   string `help:"Choropleth palette: yellow, blue or grey."`
}

func (o Overrides) apply(cfg *config.Config) error {
	c := &cfg.Controls
	if o.Metric != "" {
		c.Metric = o.Metric
	}
	if o.Year > 0 {
		c.Year = o.Year
	}
	if o.TopK > 0 {
		c.TopK = o.TopK
	}
	if o.Geo != "" {
		c.Geo = o.Geo
	}
	if o.ParentGeo != "" {
		c.ParentGeo = o.ParentGeo
	}
	if o.GeoLevel != "" {
		c.GeoLevel = o.GeoLevel
	}
	if o.Glyph != "" {
		c.Glyph = o.Glyph
	}
	if o.YScale != "" {
		c.YScale = o.YScale
	}
	if o.Palette != "" {
		cfg.Map.Palette = o.Palette
	}
	return cfg.Validate()
}

// setup loads the config, installs the global logger and applies overrides.
func (g *Globals) setup(o *Overrides) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	if o != nil {
		if err := o.apply(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// input turns loaded files and the configured controls into a rebuild input.
func input(cfg *config.Config, b *sources.Bundle) (dashboard.Input, error) {
	c := cfg.Controls
	field, err := sources.FieldFor(c.Metric)
	if err != nil {
		return dashboard.Input{}, err
	}
	return dashboard.Input{
		Dataset: b.Dataset,
		Index:   geomap.NewIndex(b.Features),
		Controls: chart.Controls{
			Metric:      c.Metric,
			Field:       field,
			XAxis:       c.XAxis,
			YScale:      sources.AxisType(c.YScale),
			Per100k:     c.Per100k,
			DataSources: c.DataSources,
			TopK:        c.TopK,
			Year:        c.Year,
		},
		Geo:        c.Geo,
		ParentGeo:  c.ParentGeo,
		AdminLevel: sources.AdminLevel(c.GeoLevel),
		Glyph:      geomap.GlyphKind(c.Glyph),
		Palette:    cfg.Colors(),
	}, nil
}

func loader(cfg *config.Config) dashboard.Loader {
	return func(ctx context.Context) (dashboard.Input, error) {
		b, err := sources.LoadBundle(ctx, cfg.Paths())
		if err != nil {
			return dashboard.Input{}, err
		}
		return input(cfg, b)
	}
}

type CLI struct {
	Globals

	Render  RenderCmd  `cmd:"" help:"Render the chart and map payload as JSON."`
	Rank    RankCmd    `cmd:"" help:"Print the regions the chart would plot."`
	Focus   FocusCmd   `cmd:"" help:"Replay interaction events and print the resulting payload."`
	Search  SearchCmd  `cmd:"" help:"Search the region picker options."`
	Options OptionsCmd `cmd:"" help:"Print the control-panel options."`
	Cache   CacheCmd   `cmd:"" help:"Manage the render cache."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("regionviz"),
		kong.Description("Ranked regional metric charts and choropleth maps."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	kctx.BindTo(ctx, (*context.Context)(nil))
	err := kctx.Run(&cli.Globals)
	stop()
	_ = zap.L().Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "regionviz:", err)
		os.Exit(1)
	}
}
