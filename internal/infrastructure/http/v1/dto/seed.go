package dto

import "github.com/jaennil/guide_helper/backend/seeder/internal/seeder"

// SeedRequest starts a seeding job. Zero values fall back to the service
// configuration.
type SeedRequest struct {
	Layer      string `json:"layer"`
	URLFormat  string `json:"url_format"`
	Version    string `json:"version" validate:"omitempty,oneof=1.1.1 1.3.0"`
	TileSize   int    `json:"tile_size" validate:"gte=0"`
	GutterSize *int   `json:"gutter_size" validate:"omitempty,gte=0"`
	Endpoint   string `json:"endpoint" validate:"omitempty,url"`
	MaxThreads int    `json:"max_threads" validate:"gte=0"`
	MinZoom    *int   `json:"min_zoom" validate:"omitempty,gte=0,lte=30"`
	MaxZoom    *int   `json:"max_zoom" validate:"omitempty,gte=0,lte=30"`
	DryRun     bool   `json:"dry_run"`
	Resume     bool   `json:"resume"`
}

// Options merges the request over defaults.
func (r SeedRequest) Options(defaults seeder.Options, minZoom, maxZoom int) (seeder.Options, int, int) {
	opts := defaults
	if r.Layer != "" {
		opts.Layer = r.Layer
	}
	if r.URLFormat != "" {
		opts.URLFormat = r.URLFormat
		// a new format brings its own layer and version unless given
		if r.Layer == "" {
			opts.Layer = ""
		}
		if r.Version == "" {
			opts.Version = ""
		}
	}
	if r.Version != "" {
		opts.Version = r.Version
	}
	if r.TileSize != 0 {
		opts.TileSize = r.TileSize
	}
	if r.GutterSize != nil {
		opts.GutterSize = *r.GutterSize
	}
	if r.Endpoint != "" {
		opts.Endpoint = r.Endpoint
	}
	if r.MaxThreads != 0 {
		opts.MaxThreads = r.MaxThreads
	}
	if r.MinZoom != nil {
		minZoom = *r.MinZoom
	}
	if r.MaxZoom != nil {
		maxZoom = *r.MaxZoom
	}
	opts.DryRun = opts.DryRun || r.DryRun
	opts.Resume = opts.Resume || r.Resume

	return opts, minZoom, maxZoom
}

type SeedResponse struct {
	ID string `json:"id"`
}

type URLsResponse struct {
	Layer string   `json:"layer"`
	Zoom  int      `json:"zoom"`
	Count int      `json:"count"`
	URLs  []string `json:"urls"`
}
