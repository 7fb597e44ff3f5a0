package wms

import (
	"testing"

	"github.com/jaennil/guide_helper/backend/seeder/internal/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const argoSample = "LAYERS=imos%3Aargo_profile_layer_map&TRANSPARENT=TRUE&VERSION=1.1.1&FORMAT=image%2Fpng&QUERYABLE=true&EXCEPTIONS=application%2Fvnd.ogc.se_xml&SERVICE=WMS&REQUEST=GetMap&STYLES=&SRS=EPSG%3A4326&BBOX=86.484375,-3.515625,138.515625,48.515625&WIDTH=296&HEIGHT=296"

func TestParseURLFormat(t *testing.T) {
	tmpl, err := ParseURLFormat(argoSample)
	require.NoError(t, err)

	assert.Equal(t, "imos:argo_profile_layer_map", tmpl.Layers())
	assert.Equal(t, "1.1.1", tmpl.Version())
	assert.Equal(t, "EPSG:4326", tmpl.SRS())

	styles, ok := tmpl.Param("styles")
	assert.True(t, ok)
	assert.Equal(t, "", styles)

	assert.Equal(t,
		"LAYERS=imos%3Aargo_profile_layer_map&TRANSPARENT=TRUE&VERSION=1.1.1&FORMAT=image%2Fpng&QUERYABLE=true&EXCEPTIONS=application%2Fvnd.ogc.se_xml&SERVICE=WMS&REQUEST=GetMap&STYLES=&SRS=EPSG%3A4326&BBOX={bbox}&WIDTH={width}&HEIGHT={height}",
		tmpl.String())
}

func TestParseURLFormatStripsBaseURL(t *testing.T) {
	tmpl, err := ParseURLFormat("http://tiles.example.org/geoserver/wms?LAYERS=a&BBOX=0,0,1,1&WIDTH=256&HEIGHT=256")
	require.NoError(t, err)
	assert.Equal(t, "LAYERS=a&BBOX=-45,45,0,90&WIDTH=256&HEIGHT=256",
		tmpl.Instantiate(tile.BoundingBox{-45, 45, 0, 90}, 256, 256))
}

func TestInstantiateRoundTripsSample(t *testing.T) {
	tmpl, err := ParseURLFormat(argoSample)
	require.NoError(t, err)

	got := tmpl.Instantiate(tile.BoundingBox{86.484375, -3.515625, 138.515625, 48.515625}, 296, 296)
	assert.Equal(t, argoSample, got)
}

func TestInstantiateIsReproducible(t *testing.T) {
	tmpl, err := ParseURLFormat(argoSample)
	require.NoError(t, err)

	box := tile.BoundingBox{-48.515625, -93.515625, 3.515625, -41.484375}
	assert.Equal(t, tmpl.Instantiate(box, 296, 296), tmpl.Instantiate(box, 296, 296))
}

func TestInstantiateKeepsKeyCase(t *testing.T) {
	tmpl, err := ParseURLFormat("service=WMS&bbox=1,2,3,4&width=10&height=20&format=image/png")
	require.NoError(t, err)
	assert.Equal(t, "service=WMS&bbox=0,0,1.5,1.5&width=300&height=300&format=image/png",
		tmpl.Instantiate(tile.BoundingBox{0, 0, 1.5, 1.5}, 300, 300))
}

func TestParseURLFormatErrors(t *testing.T) {
	_, err := ParseURLFormat("   ")
	assert.ErrorIs(t, err, ErrEmptyFormat)

	_, err = ParseURLFormat("LAYERS=a&WIDTH=256&HEIGHT=256")
	assert.ErrorIs(t, err, ErrMissingParam)

	_, err = ParseURLFormat("LAYERS=a&BBOX=0,0,1,1&HEIGHT=256")
	assert.ErrorIs(t, err, ErrMissingParam)

	_, err = ParseURLFormat("BBOX=0,0,1,1&BBOX=1,1,2,2&WIDTH=1&HEIGHT=1")
	assert.Error(t, err)
}

func TestSRSFallsBackToCRS(t *testing.T) {
	tmpl, err := ParseURLFormat("VERSION=1.3.0&CRS=EPSG%3A4326&BBOX=0,0,1,1&WIDTH=1&HEIGHT=1")
	require.NoError(t, err)
	assert.Equal(t, "EPSG:4326", tmpl.SRS())
	assert.Equal(t, "1.3.0", tmpl.Version())
}
