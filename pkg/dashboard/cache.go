package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/sudorandom/regionviz/pkg/chart"
	"github.com/sudorandom/regionviz/pkg/dataset"
	"github.com/sudorandom/regionviz/pkg/geomap"
	"github.com/sudorandom/regionviz/pkg/utils"
)

const cachePrefix = "render/"

// Cache stores rendered payloads keyed by a hash of the rebuild input.
type Cache struct {
	store *utils.Store
	ttl   time.Duration
	log   *zap.Logger
}

func NewCache(store *utils.Store, ttl time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl, log: zap.L().Named("cache")}
}

// cacheKey covers the controls, the selection and the dataset contents. The
// feature collection is identified by revision, which the caller derives from
// the GeoJSON file.
type cacheKey struct {
	Controls      chart.Controls
	Geo           string
	ParentGeo     string
	AdminLevel    int
	Glyph         geomap.GlyphKind
	Palette       []string
	Features      int
	Revision      string
	Regions       map[string]*dataset.RegionSeries
	Interventions map[string][]dataset.Intervention
}

// Key returns the cache key of in.
func Key(in Input, revision string) (string, error) {
	k := cacheKey{
		Controls:   in.Controls,
		Geo:        in.Geo,
		ParentGeo:  in.ParentGeo,
		AdminLevel: in.AdminLevel,
		Glyph:      in.Glyph,
		Palette:    in.Palette,
		Revision:   revision,
	}
	if in.Dataset != nil {
		k.Regions = in.Dataset.Regions
		k.Interventions = in.Dataset.Interventions
	}
	if in.Index != nil {
		k.Features = in.Index.Len()
	}
	raw, err := json.Marshal(k)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	return cachePrefix + strconv.FormatUint(xxhash.Sum64(raw), 16), nil
}

// Render returns the rendered payload for in, building and storing it on a
// miss. hit reports whether the payload came from the store.
func (c *Cache) Render(in Input, revision string) (payload []byte, hit bool, err error) {
	key, err := Key(in, revision)
	if err != nil {
		return nil, false, err
	}
	payload, err = c.store.Get(key)
	switch {
	case err == nil:
		c.log.Debug("render cache hit", zap.String("key", key))
		return payload, true, nil
	case !errors.Is(err, utils.ErrNotFound):
		return nil, false, fmt.Errorf("render cache: %w", err)
	}

	payload, err = json.Marshal(Rebuild(in))
	if err != nil {
		return nil, false, fmt.Errorf("render: %w", err)
	}
	if err := c.store.Put(key, payload, c.ttl); err != nil {
		c.log.Warn("failed to store render", zap.String("key", key), zap.Error(err))
	}
	return payload, false, nil
}

// Warm renders every input and stores the payloads in one batch. It reports
// how many payloads were stored.
func (c *Cache) Warm(ins []Input, revision string) (int, error) {
	batch := make(map[string][]byte, len(ins))
	for _, in := range ins {
		key, err := Key(in, revision)
		if err != nil {
			return 0, err
		}
		payload, err := json.Marshal(Rebuild(in))
		if err != nil {
			return 0, fmt.Errorf("render: %w", err)
		}
		batch[key] = payload
	}
	if err := c.store.BatchPut(batch, c.ttl); err != nil {
		return 0, fmt.Errorf("warm render cache: %w", err)
	}
	c.log.Info("render cache warmed", zap.Int("entries", len(batch)))
	return len(batch), nil
}

// Entry is a stored render.
type Entry struct {
	Key  string `json:"key"`
	Size int    `json:"size"`
}

// Entries lists the stored renders in key order.
func (c *Cache) Entries() ([]Entry, error) {
	var out []Entry
	err := c.store.ForEach(cachePrefix, func(k, v []byte) error {
		out = append(out, Entry{Key: string(k), Size: len(v)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list render cache: %w", err)
	}
	return out, nil
}

// Clear removes every stored render and reports how many were removed.
func (c *Cache) Clear() (int, error) {
	entries, err := c.Entries()
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := c.store.Delete(e.Key); err != nil {
			return 0, fmt.Errorf("clear render cache: %w", err)
		}
	}
	return len(entries), nil
}
