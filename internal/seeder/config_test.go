package seeder

import (
	"errors"
	"testing"

	"github.com/jaennil/guide_helper/backend/seeder/internal/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(argoOptions(2))
	require.NoError(t, err)

	assert.Equal(t, "imos:argo_profile_layer_map", cfg.Layer())
	assert.Equal(t, "1.1.1", cfg.Version())
	assert.Equal(t, tile.LonLat, cfg.AxisOrder())
	assert.Equal(t, 296, cfg.ImageSize())
	assert.Equal(t, 2, cfg.Zoom())
	assert.True(t, cfg.DryRun())
}

func TestNewConfigDefaultsFromURLFormat(t *testing.T) {
	opts := argoOptions(0)
	opts.Layer = ""
	opts.Version = ""

	cfg, err := NewConfig(opts)
	require.NoError(t, err)
	assert.Equal(t, "imos:argo_profile_layer_map", cfg.Layer())
	assert.Equal(t, "1.1.1", cfg.Version())
}

func TestNewConfigLayerWithoutURLFormatLayers(t *testing.T) {
	opts := argoOptions(0)
	opts.URLFormat = "SERVICE=WMS&REQUEST=GetMap&VERSION=1.1.1&SRS=EPSG%3A4326&BBOX=0,0,1,1&WIDTH=256&HEIGHT=256"
	opts.Layer = "ocean"

	cfg, err := NewConfig(opts)
	require.NoError(t, err)
	assert.Equal(t, "ocean", cfg.Layer())

	opts.Layer = ""
	_, err = NewConfig(opts)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewConfigRejects(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Options)
		field  string
	}{
		{"unknown version", func(o *Options) { o.Version = "1.0.0" }, "version"},
		{"version mismatch", func(o *Options) { o.Version = "1.3.0" }, "version"},
		{"layer mismatch", func(o *Options) { o.Layer = "default_bathy" }, "layer"},
		{"zero tile size", func(o *Options) { o.TileSize = 0 }, "tile_size"},
		{"negative tile size", func(o *Options) { o.TileSize = -256 }, "tile_size"},
		{"negative gutter", func(o *Options) { o.GutterSize = -1 }, "gutter_size"},
		{"gutter of half a tile", func(o *Options) { o.GutterSize = 128 }, "gutter_size"},
		{"negative zoom", func(o *Options) { o.Zoom = -1 }, "zoom_level"},
		{"missing url format", func(o *Options) { o.URLFormat = "" }, "url_format"},
		{"url format without bbox", func(o *Options) { o.URLFormat = "LAYERS=a&WIDTH=1&HEIGHT=1" }, "url_format"},
		{"missing endpoint", func(o *Options) { o.DryRun = false; o.Endpoint = "" }, "endpoint"},
		{"relative endpoint", func(o *Options) { o.DryRun = false; o.Endpoint = "geoserver/wms" }, "endpoint"},
		{"ftp endpoint", func(o *Options) { o.DryRun = false; o.Endpoint = "ftp://host/wms" }, "endpoint"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := argoOptions(2)
			tc.modify(&opts)

			_, err := NewConfig(opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))

			var configErr *ConfigError
			require.True(t, errors.As(err, &configErr))
			assert.Equal(t, tc.field, configErr.Field)
		})
	}
}

func TestNewConfigVersionErrorWrapsTileError(t *testing.T) {
	opts := argoOptions(2)
	opts.Version = "2.0"

	_, err := NewConfig(opts)
	assert.ErrorIs(t, err, tile.ErrUnsupportedVersion)
}

func TestConfigWithZoom(t *testing.T) {
	cfg, err := NewConfig(argoOptions(2))
	require.NoError(t, err)

	other, err := cfg.WithZoom(5)
	require.NoError(t, err)
	assert.Equal(t, 5, other.Zoom())
	assert.Equal(t, 2, cfg.Zoom())

	_, err = cfg.WithZoom(-2)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
