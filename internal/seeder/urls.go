package seeder

import (
	"fmt"

	"github.com/jaennil/guide_helper/backend/seeder/internal/tile"
)

// URLList returns the GetMap query of every tile of the configured layer
// and zoom, in pyramid enumeration order. It performs no I/O. Levels
// deeper than tile.MaxListZoom are rejected; the dispatcher streams them
// instead.
func URLList(cfg Config) ([]string, error) {
	if cfg.zoom > tile.MaxListZoom {
		return nil, &ConfigError{
			Field:  "zoom_level",
			Reason: fmt.Sprintf("%d tiles are too many to list, the deepest listable level is %d", tile.Count(cfg.zoom), tile.MaxListZoom),
			Err:    tile.ErrTooManyTiles,
		}
	}

	size := cfg.ImageSize()
	urls := make([]string, 0, tile.Count(cfg.zoom))

	err := tile.Each(cfg.zoom, cfg.tileSize, cfg.gutterSize, cfg.order, func(_ tile.Coordinates, b tile.BoundingBox) bool {
		urls = append(urls, cfg.template.Instantiate(b, size, size))
		return true
	})
	if err != nil {
		return nil, err
	}

	return urls, nil
}
