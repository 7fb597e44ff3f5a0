package tile

import (
	"errors"
	"fmt"
)

var (
	ErrNonFinite          = errors.New("non-finite tile geometry")
	ErrInvalidInput       = errors.New("invalid tile pyramid input")
	ErrUnsupportedVersion = errors.New("unsupported wms version")
	ErrTooManyTiles       = errors.New("too many tiles to list")
)

// GeometryError reports a pyramid that cannot be generated. It always
// points at a configuration defect, never at a transient fault.
type GeometryError struct {
	Zoom   int
	Column int
	Row    int
	Reason string
	Err    error
}

func (e *GeometryError) Error() string {
	if e.Column >= 0 && e.Row >= 0 {
		return fmt.Sprintf("tile geometry at zoom %d col %d row %d: %s", e.Zoom, e.Column, e.Row, e.Reason)
	}
	return fmt.Sprintf("tile geometry at zoom %d: %s", e.Zoom, e.Reason)
}

func (e *GeometryError) Unwrap() error {
	return e.Err
}
