// Package tile computes the bounding boxes of a WMS tile pyramid covering
// the whole EPSG:4326 extent (360° x 180°).
package tile

import (
	"math"
	"strconv"
)

// BoundingBox holds four coordinates in emission order. For LonLat axis
// order that is (minLon, minLat, maxLon, maxLat), for LatLon it is
// (minLat, minLon, maxLat, maxLon).
type BoundingBox [4]float64

func (b BoundingBox) MinX() float64 { return b[0] }
func (b BoundingBox) MinY() float64 { return b[1] }
func (b BoundingBox) MaxX() float64 { return b[2] }
func (b BoundingBox) MaxY() float64 { return b[3] }

// Swap returns the box with its two axes exchanged.
func (b BoundingBox) Swap() BoundingBox {
	return BoundingBox{b[1], b[0], b[3], b[2]}
}

// String renders the box the way a WMS BBOX parameter expects it:
// shortest decimal representation, comma separated, no spaces.
func (b BoundingBox) String() string {
	buf := make([]byte, 0, 64)
	for i, v := range b {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendFloat(buf, v, 'f', -1, 64)
	}
	return string(buf)
}

// BoundingBoxWithGutter expands the square tile whose lower-left corner is
// (minX, minY) by gutterDimension on every side.
func BoundingBoxWithGutter(minX, minY, tileDimension, gutterDimension float64) BoundingBox {
	return BoundingBox{
		minX - gutterDimension,
		minY - gutterDimension,
		minX + tileDimension + gutterDimension,
		minY + tileDimension + gutterDimension,
	}
}

// TileDimension is the coordinate span of one tile side at zoom.
func TileDimension(zoom int) float64 {
	return 180.0 / math.Exp2(float64(zoom))
}

// GutterDimension converts a gutter in pixels into coordinate units for a
// tile of tilePixels covering span degrees.
func GutterDimension(gutterPixels int, span float64, tilePixels int) float64 {
	return float64(gutterPixels) * span / float64(tilePixels)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
