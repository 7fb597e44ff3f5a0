package tile

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundingBoxWithGutter(t *testing.T) {
	tileDimension := TileDimension(1)

	t.Run("zoom 1, tile 256px, gutter 0px", func(t *testing.T) {
		gutter := GutterDimension(0, tileDimension, 256)
		box := BoundingBoxWithGutter(-180, -90, tileDimension, gutter)
		assert.Equal(t, BoundingBox{-180, -90, -90, 0}, box)
	})

	t.Run("zoom 1, tile 256px, gutter 20px", func(t *testing.T) {
		gutter := GutterDimension(20, tileDimension, 256)
		assert.Equal(t, 7.03125, gutter)

		box := BoundingBoxWithGutter(-180, -90, tileDimension, gutter)
		assert.Equal(t, BoundingBox{-187.03125, -97.03125, -82.96875, 7.03125}, box)
	})

	t.Run("negative gutter shrinks the box", func(t *testing.T) {
		box := BoundingBoxWithGutter(0, 0, 10, -1)
		assert.Equal(t, BoundingBox{1, 1, 9, 9}, box)
	})
}

func TestBoundingBoxString(t *testing.T) {
	assert.Equal(t, "-45,45,0,90", BoundingBox{-45, 45, 0, 90}.String())
	assert.Equal(t, "106.76513671875,-14.17236328125,108.39111328125,-12.54638671875",
		BoundingBox{106.76513671875, -14.17236328125, 108.39111328125, -12.54638671875}.String())
}

func TestGenerateZoom0(t *testing.T) {
	boxes, err := GenerateForVersion(0, 256, 0, Version111)
	require.NoError(t, err)
	assert.Equal(t, []BoundingBox{{-180, -90, 0, 90}, {0, -90, 180, 90}}, boxes)
}

func TestGenerateZoom1Gutter20(t *testing.T) {
	expected := []BoundingBox{
		{-187.03125, -97.03125, -82.96875, 7.03125},
		{-187.03125, -7.03125, -82.96875, 97.03125},
		{-97.03125, -97.03125, 7.03125, 7.03125},
		{-97.03125, -7.03125, 7.03125, 97.03125},
		{-7.03125, -97.03125, 97.03125, 7.03125},
		{-7.03125, -7.03125, 97.03125, 97.03125},
		{82.96875, -97.03125, 187.03125, 7.03125},
		{82.96875, -7.03125, 187.03125, 97.03125},
	}

	boxes, err := GenerateForVersion(1, 256, 20, Version111)
	require.NoError(t, err)
	assert.Equal(t, expected, boxes)
}

func TestGenerateZoom1Version130(t *testing.T) {
	expected := []BoundingBox{
		{-97.03125, -187.03125, 7.03125, -82.96875},
		{-7.03125, -187.03125, 97.03125, -82.96875},
		{-97.03125, -97.03125, 7.03125, 7.03125},
		{-7.03125, -97.03125, 97.03125, 7.03125},
		{-97.03125, -7.03125, 7.03125, 97.03125},
		{-7.03125, -7.03125, 97.03125, 97.03125},
		{-97.03125, 82.96875, 7.03125, 187.03125},
		{-7.03125, 82.96875, 97.03125, 187.03125},
	}

	boxes, err := GenerateForVersion(1, 256, 20, Version130)
	require.NoError(t, err)
	assert.Equal(t, expected, boxes)
}

func TestVersion130IsAxisSwapOf111(t *testing.T) {
	for zoom := 0; zoom <= 4; zoom++ {
		lonLat, err := Generate(zoom, 256, 20, LonLat)
		require.NoError(t, err)
		latLon, err := Generate(zoom, 256, 20, LatLon)
		require.NoError(t, err)

		require.Len(t, latLon, len(lonLat))
		for i := range lonLat {
			assert.Equal(t, lonLat[i].Swap(), latLon[i], "zoom %d tile %d", zoom, i)
		}
	}
}

func TestGenerateTileCount(t *testing.T) {
	for zoom := 0; zoom <= 8; zoom++ {
		boxes, err := GenerateForVersion(zoom, 256, 0, Version111)
		require.NoError(t, err)

		expected := 2 * int(math.Pow(4, float64(zoom)))
		assert.Len(t, boxes, expected, "zoom %d", zoom)
		assert.Equal(t, expected, Count(zoom))
	}
}

func TestGenerateWithoutGutterTilesThePlane(t *testing.T) {
	zoom := 3
	boxes, err := Generate(zoom, 256, 0, LonLat)
	require.NoError(t, err)

	var area float64
	for i, b := range boxes {
		assert.Less(t, b.MinX(), b.MaxX())
		assert.Less(t, b.MinY(), b.MaxY())
		assert.GreaterOrEqual(t, b.MinX(), -180.0)
		assert.LessOrEqual(t, b.MaxX(), 180.0)
		assert.GreaterOrEqual(t, b.MinY(), -90.0)
		assert.LessOrEqual(t, b.MaxY(), 90.0)
		area += (b.MaxX() - b.MinX()) * (b.MaxY() - b.MinY())

		// rows advance in the inner loop
		if (i+1)%Rows(zoom) != 0 {
			next := boxes[i+1]
			assert.Equal(t, b.MinX(), next.MinX())
			assert.Equal(t, b.MaxY(), next.MinY())
		}
	}
	assert.Equal(t, 360.0*180.0, area)
}

func TestGenerateGutterExpandsEveryTile(t *testing.T) {
	plain, err := Generate(2, 256, 0, LonLat)
	require.NoError(t, err)
	padded, err := Generate(2, 256, 20, LonLat)
	require.NoError(t, err)

	gutter := GutterDimension(20, TileDimension(2), 256)
	for i := range plain {
		assert.Equal(t, plain[i][0]-gutter, padded[i][0])
		assert.Equal(t, plain[i][1]-gutter, padded[i][1])
		assert.Equal(t, plain[i][2]+gutter, padded[i][2])
		assert.Equal(t, plain[i][3]+gutter, padded[i][3])
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	first, err := Generate(5, 256, 20, LatLon)
	require.NoError(t, err)
	second, err := Generate(5, 256, 20, LatLon)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEachStopsEarly(t *testing.T) {
	visited := 0
	err := Each(4, 256, 0, LonLat, func(c Coordinates, _ BoundingBox) bool {
		visited++
		return visited < 3
	})
	require.NoError(t, err)
	assert.Equal(t, 3, visited)
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	_, err := Generate(-1, 256, 0, LonLat)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = Generate(2, 0, 0, LonLat)
	require.Error(t, err)

	var geometryErr *GeometryError
	require.True(t, errors.As(err, &geometryErr))
	assert.Equal(t, 2, geometryErr.Zoom)

	_, err = GenerateForVersion(1, 256, 0, "1.0.0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestGenerateRefusesUnlistableZoom(t *testing.T) {
	_, err := Generate(MaxZoom, 256, 20, LonLat)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyTiles)

	boxes, err := Generate(MaxListZoom, 256, 0, LonLat)
	require.NoError(t, err)
	assert.Len(t, boxes, Count(MaxListZoom))
}

func TestEachStreamsDeepestZoom(t *testing.T) {
	var first []BoundingBox
	err := Each(MaxZoom, 256, 20, LonLat, func(_ Coordinates, b BoundingBox) bool {
		first = append(first, b)
		return len(first) < 2
	})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, -180.0-GutterDimension(20, TileDimension(MaxZoom), 256), first[0][0])
	assert.Equal(t, 2*(1<<60), Count(MaxZoom))
}

func TestAxisOrderForVersion(t *testing.T) {
	order, err := AxisOrderForVersion("1.1.1")
	require.NoError(t, err)
	assert.Equal(t, LonLat, order)

	order, err = AxisOrderForVersion("1.3.0")
	require.NoError(t, err)
	assert.Equal(t, LatLon, order)

	_, err = AxisOrderForVersion("")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}
