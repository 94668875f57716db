package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/sudorandom/regionviz/pkg/config"
	"github.com/sudorandom/regionviz/pkg/dashboard"
	"github.com/sudorandom/regionviz/pkg/geomap"
	"github.com/sudorandom/regionviz/pkg/sources"
	"github.com/sudorandom/regionviz/pkg/utils"
)

type CacheCmd struct {
	Warm  CacheWarmCmd  `cmd:"" help:"Render every glyph kind for the configured controls."`
	List  CacheListCmd  `cmd:"" help:"List stored renders."`
	Clear CacheClearCmd `cmd:"" help:"Remove every stored render."`
}

// openCache opens the configured store. The caller closes the store.
func openCache(cfg *config.Config) (*utils.Store, *dashboard.Cache, error) {
	store, err := utils.OpenStore(cfg.Cache.Path)
	if err != nil {
		return nil, nil, err
	}
	return store, dashboard.NewCache(store, cfg.Cache.TTL), nil
}

type CacheWarmCmd struct {
	Overrides `embed:""`
}

func (w *CacheWarmCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.setup(&w.Overrides)
	if err != nil {
		return err
	}
	in, err := loader(cfg)(ctx)
	if err != nil {
		return err
	}
	store, cache, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := cache.Warm(glyphInputs(in), revision(cfg))
	if err != nil {
		return err
	}
	fmt.Printf("stored %d renders\n", n)
	return nil
}

// glyphInputs repeats in once per glyph kind.
func glyphInputs(in dashboard.Input) []dashboard.Input {
	out := make([]dashboard.Input, 0, len(sources.Glyphs))
	for _, g := range sources.Glyphs {
		in.Glyph = geomap.GlyphKind(g)
		out = append(out, in)
	}
	return out
}

type CacheListCmd struct{}

func (l *CacheListCmd) Run(g *Globals) error {
	cfg, err := g.setup(nil)
	if err != nil {
		return err
	}
	store, cache, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := cache.Entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%-24s %s\n", e.Key, humanize.Bytes(uint64(e.Size)))
	}
	return nil
}

type CacheClearCmd struct{}

func (c *CacheClearCmd) Run(g *Globals) error {
	cfg, err := g.setup(nil)
	if err != nil {
		return err
	}
	store, cache, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := cache.Clear()
	if err != nil {
		return err
	}
	fmt.Printf("removed %d renders\n", n)
	return nil
}
