package tile

import "fmt"

// AxisOrder selects the coordinate order of emitted boxes.
type AxisOrder int

const (
	// LonLat is the WMS 1.1.1 order for EPSG:4326: x is longitude.
	LonLat AxisOrder = iota
	// LatLon is the WMS 1.3.0 order for EPSG:4326: latitude leads.
	LatLon
)

const (
	Version111 = "1.1.1"
	Version130 = "1.3.0"
)

// MaxZoom keeps 2*4^zoom representable as an int.
const MaxZoom = 30

// MaxListZoom is the deepest level Generate materializes; deeper levels
// are only reachable through Each.
const MaxListZoom = 10

func (o AxisOrder) String() string {
	switch o {
	case LonLat:
		return "lon/lat"
	case LatLon:
		return "lat/lon"
	default:
		return "unknown"
	}
}

// AxisOrderForVersion maps a WMS protocol version to its axis order.
func AxisOrderForVersion(version string) (AxisOrder, error) {
	switch version {
	case Version111:
		return LonLat, nil
	case Version130:
		return LatLon, nil
	default:
		return 0, ErrUnsupportedVersion
	}
}

// Coordinates address one tile inside a zoom level.
type Coordinates struct {
	Column int
	Row    int
}

// Columns returns the number of tile columns at zoom.
func Columns(zoom int) int {
	return 1 << (zoom + 1)
}

// Rows returns the number of tile rows at zoom.
func Rows(zoom int) int {
	return 1 << zoom
}

// Count returns the number of tiles at zoom, 2*4^zoom.
func Count(zoom int) int {
	return Columns(zoom) * Rows(zoom)
}

// Each calls fn for every tile at zoom, columns in the outer loop and rows
// in the inner one. Iteration stops early when fn returns false.
func Each(zoom, tilePixels, gutterPixels int, order AxisOrder, fn func(Coordinates, BoundingBox) bool) error {
	if zoom < 0 || zoom > MaxZoom {
		return &GeometryError{Zoom: zoom, Column: -1, Row: -1, Reason: "zoom level out of range", Err: ErrInvalidInput}
	}
	if tilePixels <= 0 {
		return &GeometryError{Zoom: zoom, Column: -1, Row: -1, Reason: "tile size must be positive", Err: ErrInvalidInput}
	}
	if order != LonLat && order != LatLon {
		return &GeometryError{Zoom: zoom, Column: -1, Row: -1, Reason: "unknown axis order", Err: ErrInvalidInput}
	}

	dimension := TileDimension(zoom)
	gutter := GutterDimension(gutterPixels, dimension, tilePixels)
	if !finite(dimension) || !finite(gutter) {
		return &GeometryError{Zoom: zoom, Column: -1, Row: -1, Reason: "tile or gutter dimension is not finite", Err: ErrNonFinite}
	}

	columns, rows := Columns(zoom), Rows(zoom)
	for column := 0; column < columns; column++ {
		for row := 0; row < rows; row++ {
			lon := -180 + float64(column)*dimension
			lat := -90 + float64(row)*dimension

			box := BoundingBoxWithGutter(lon, lat, dimension, gutter)
			for _, v := range box {
				if !finite(v) {
					return &GeometryError{Zoom: zoom, Column: column, Row: row, Reason: "bounding box is not finite", Err: ErrNonFinite}
				}
			}
			if order == LatLon {
				box = box.Swap()
			}

			if !fn(Coordinates{Column: column, Row: row}, box) {
				return nil
			}
		}
	}

	return nil
}

// Generate returns every bounding box at zoom in enumeration order.
func Generate(zoom, tilePixels, gutterPixels int, order AxisOrder) ([]BoundingBox, error) {
	if zoom < 0 || zoom > MaxZoom {
		return nil, &GeometryError{Zoom: zoom, Column: -1, Row: -1, Reason: "zoom level out of range", Err: ErrInvalidInput}
	}
	if zoom > MaxListZoom {
		return nil, &GeometryError{Zoom: zoom, Column: -1, Row: -1, Reason: fmt.Sprintf("%d tiles are too many to list", Count(zoom)), Err: ErrTooManyTiles}
	}

	boxes := make([]BoundingBox, 0, Count(zoom))
	err := Each(zoom, tilePixels, gutterPixels, order, func(_ Coordinates, b BoundingBox) bool {
		boxes = append(boxes, b)
		return true
	})
	if err != nil {
		return nil, err
	}

	return boxes, nil
}

// GenerateForVersion is Generate with the axis order taken from a WMS
// version string.
func GenerateForVersion(zoom, tilePixels, gutterPixels int, version string) ([]BoundingBox, error) {
	order, err := AxisOrderForVersion(version)
	if err != nil {
		return nil, &GeometryError{Zoom: zoom, Column: -1, Row: -1, Reason: "version " + version, Err: err}
	}
	return Generate(zoom, tilePixels, gutterPixels, order)
}
