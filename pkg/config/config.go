// Package config loads regionviz settings from an optional YAML file and
// REGIONVIZ_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sudorandom/regionviz/pkg/palette"
	"github.com/sudorandom/regionviz/pkg/sources"
)

const envPrefix = "REGIONVIZ"

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Inputs   Inputs   `mapstructure:"inputs"`
	Controls Controls `mapstructure:"controls"`
	Map      Map      `mapstructure:"map"`
	Cache    Cache    `mapstructure:"cache"`
	Log      Log      `mapstructure:"log"`
}

type Inputs struct {
	Dataset       string `mapstructure:"dataset"`
	Interventions string `mapstructure:"interventions"`
	GeoJSON       string `mapstructure:"geojson"`
}

// Controls hold the initial control-panel state.
type Controls struct {
	Metric      string `mapstructure:"metric"`
	XAxis       string `mapstructure:"x_axis"`
	YScale      string `mapstructure:"y_scale"`
	Per100k     string `mapstructure:"per_100k"`
	DataSources string `mapstructure:"data_sources"`
	TopK        int    `mapstructure:"top_k"`
	Year        int    `mapstructure:"year"`
	Geo         string `mapstructure:"geo"`
	ParentGeo   string `mapstructure:"parent_geo"`
	GeoLevel    string `mapstructure:"geo_level"`
	Glyph       string `mapstructure:"glyph"`
}

// Map configures the choropleth. Palette is yellow, blue or grey.
type Map struct {
	Palette string `mapstructure:"palette"`
}

// Cache configures the render cache. An empty path keeps it in memory.
type Cache struct {
	Enabled bool          `mapstructure:"enabled"`
	Path    string        `mapstructure:"path"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

// setDefaults registers every key so env overrides work without a file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("inputs.dataset", "")
	v.SetDefault("inputs.interventions", "")
	v.SetDefault("inputs.geojson", "")

	v.SetDefault("controls.metric", "Parasite Rate (pf)")
	v.SetDefault("controls.x_axis", "Date")
	v.SetDefault("controls.y_scale", "Linear Scale")
	v.SetDefault("controls.per_100k", "None")
	v.SetDefault("controls.data_sources", "MAP")
	v.SetDefault("controls.top_k", 10)
	v.SetDefault("controls.year", time.Now().Year())
	v.SetDefault("controls.geo", "null")
	v.SetDefault("controls.parent_geo", "null")
	v.SetDefault("controls.geo_level", "null")
	v.SetDefault("controls.glyph", "choropleth")

	v.SetDefault("map.palette", "yellow")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads the YAML file at path when path is not empty, merges REGIONVIZ_*
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Controls.TopK <= 0 {
		return fmt.Errorf("%w: controls.top_k must be positive, got %d", ErrInvalid, c.Controls.TopK)
	}
	if _, err := sources.FieldFor(c.Controls.Metric); err != nil {
		return fmt.Errorf("%w: controls.metric: %w", ErrInvalid, err)
	}
	if !optionNamed(sources.XAxisOptions, c.Controls.XAxis) {
		return fmt.Errorf("%w: controls.x_axis %q", ErrInvalid, c.Controls.XAxis)
	}
	if !optionNamed(sources.YScaleOptions, c.Controls.YScale) && c.Controls.YScale != "linear" && c.Controls.YScale != "log" {
		return fmt.Errorf("%w: controls.y_scale %q", ErrInvalid, c.Controls.YScale)
	}
	if !contains(sources.Normalizations, c.Controls.Per100k) {
		return fmt.Errorf("%w: controls.per_100k %q", ErrInvalid, c.Controls.Per100k)
	}
	if !contains(sources.GeoLevels, c.Controls.GeoLevel) {
		return fmt.Errorf("%w: controls.geo_level %q", ErrInvalid, c.Controls.GeoLevel)
	}
	if !contains(sources.Glyphs, c.Controls.Glyph) {
		return fmt.Errorf("%w: controls.glyph %q", ErrInvalid, c.Controls.Glyph)
	}
	if _, ok := palette.ByName(c.Map.Palette); !ok {
		return fmt.Errorf("%w: map.palette %q", ErrInvalid, c.Map.Palette)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache.ttl must not be negative", ErrInvalid)
	}
	return nil
}

// Paths returns the input files in the form the loaders take.
func (c *Config) Paths() sources.Paths {
	return sources.Paths{
		Dataset:       c.Inputs.Dataset,
		Interventions: c.Inputs.Interventions,
		GeoJSON:       c.Inputs.GeoJSON,
	}
}

// Colors returns the configured choropleth palette.
func (c *Config) Colors() []string {
	colors, _ := palette.ByName(c.Map.Palette)
	return colors
}

func optionNamed(opts []sources.Option, name string) bool {
	for _, o := range opts {
		if o.Name == name {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
