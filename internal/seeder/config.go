package seeder

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/jaennil/guide_helper/backend/seeder/internal/tile"
	"github.com/jaennil/guide_helper/backend/seeder/internal/wms"
)

var ErrInvalidConfig = errors.New("invalid seeding configuration")

// ConfigError names the offending option of a rejected configuration.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("seeding config: %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("seeding config: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidConfig, e.Err}
	}
	return []error{ErrInvalidConfig}
}

// Options is the raw per-layer seeding input, as loaded from env, flags or
// an API request.
type Options struct {
	Layer      string
	URLFormat  string
	Version    string
	TileSize   int
	GutterSize int
	Endpoint   string
	MaxThreads int
	Zoom       int
	DryRun     bool
	Resume     bool
}

// Config is a validated, immutable seeding configuration for one layer at
// one zoom level.
type Config struct {
	layer      string
	template   *wms.Template
	version    string
	order      tile.AxisOrder
	tileSize   int
	gutterSize int
	endpoint   string
	maxThreads int
	zoom       int
	dryRun     bool
	resume     bool
}

// NewConfig validates opts. Every problem that would otherwise surface
// deep inside the pyramid generator is reported here.
func NewConfig(opts Options) (Config, error) {
	if opts.URLFormat == "" {
		return Config{}, &ConfigError{Field: "url_format", Reason: "required"}
	}
	template, err := wms.ParseURLFormat(opts.URLFormat)
	if err != nil {
		return Config{}, &ConfigError{Field: "url_format", Reason: "cannot parse", Err: err}
	}

	version := opts.Version
	if version == "" {
		version = template.Version()
	}
	order, err := tile.AxisOrderForVersion(version)
	if err != nil {
		return Config{}, &ConfigError{Field: "version", Reason: fmt.Sprintf("%q is not 1.1.1 or 1.3.0", version), Err: err}
	}
	if v := template.Version(); v != "" && v != version {
		return Config{}, &ConfigError{Field: "version", Reason: fmt.Sprintf("%q does not match url format version %q", version, v)}
	}

	layer := opts.Layer
	if layer == "" {
		layer = template.Layers()
	}
	if l := template.Layers(); l != "" && l != layer {
		return Config{}, &ConfigError{Field: "layer", Reason: fmt.Sprintf("%q does not match url format layers %q", layer, l)}
	}
	if layer == "" {
		return Config{}, &ConfigError{Field: "layer", Reason: "required"}
	}

	if opts.TileSize <= 0 {
		return Config{}, &ConfigError{Field: "tile_size", Reason: fmt.Sprintf("must be positive, got %d", opts.TileSize)}
	}
	if opts.GutterSize < 0 {
		return Config{}, &ConfigError{Field: "gutter_size", Reason: fmt.Sprintf("must not be negative, got %d", opts.GutterSize)}
	}
	if 2*opts.GutterSize >= opts.TileSize {
		return Config{}, &ConfigError{Field: "gutter_size", Reason: fmt.Sprintf("%d must be less than half the tile size %d", opts.GutterSize, opts.TileSize)}
	}
	if opts.Zoom < 0 || opts.Zoom > tile.MaxZoom {
		return Config{}, &ConfigError{Field: "zoom_level", Reason: fmt.Sprintf("must be within 0..%d, got %d", tile.MaxZoom, opts.Zoom)}
	}

	if !opts.DryRun {
		if opts.Endpoint == "" {
			return Config{}, &ConfigError{Field: "endpoint", Reason: "required unless dry run"}
		}
		u, err := url.ParseRequestURI(opts.Endpoint)
		if err != nil {
			return Config{}, &ConfigError{Field: "endpoint", Reason: "not a url", Err: err}
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return Config{}, &ConfigError{Field: "endpoint", Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
		}
	}

	return Config{
		layer:      layer,
		template:   template,
		version:    version,
		order:      order,
		tileSize:   opts.TileSize,
		gutterSize: opts.GutterSize,
		endpoint:   opts.Endpoint,
		maxThreads: opts.MaxThreads,
		zoom:       opts.Zoom,
		dryRun:     opts.DryRun,
		resume:     opts.Resume,
	}, nil
}

// WithZoom returns a copy of c for another zoom level.
func (c Config) WithZoom(zoom int) (Config, error) {
	if zoom < 0 || zoom > tile.MaxZoom {
		return Config{}, &ConfigError{Field: "zoom_level", Reason: fmt.Sprintf("must be within 0..%d, got %d", tile.MaxZoom, zoom)}
	}
	c.zoom = zoom
	return c, nil
}

func (c Config) Layer() string             { return c.layer }
func (c Config) Template() *wms.Template   { return c.template }
func (c Config) Version() string           { return c.version }
func (c Config) AxisOrder() tile.AxisOrder { return c.order }
func (c Config) TileSize() int             { return c.tileSize }
func (c Config) GutterSize() int           { return c.gutterSize }
func (c Config) Endpoint() string          { return c.endpoint }
func (c Config) MaxThreads() int           { return c.maxThreads }
func (c Config) Zoom() int                 { return c.zoom }
func (c Config) DryRun() bool              { return c.dryRun }
func (c Config) Resume() bool              { return c.resume }

// ImageSize is the requested width and height in pixels; the gutter
// enlarges the image as well as the box.
func (c Config) ImageSize() int {
	return c.tileSize + 2*c.gutterSize
}
