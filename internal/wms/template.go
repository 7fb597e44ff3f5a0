// Package wms turns a sample GetMap request into a reusable URL format and
// fills it in for individual tiles.
package wms

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jaennil/guide_helper/backend/seeder/internal/tile"
)

const (
	ParamBBox   = "BBOX"
	ParamWidth  = "WIDTH"
	ParamHeight = "HEIGHT"
	ParamLayers = "LAYERS"
	ParamVer    = "VERSION"
	ParamSRS    = "SRS"
	ParamCRS    = "CRS"
)

var (
	ErrEmptyFormat  = errors.New("empty url format")
	ErrMissingParam = errors.New("url format is missing a required parameter")
)

type slot int

const (
	slotLiteral slot = iota
	slotBBox
	slotWidth
	slotHeight
)

type segment struct {
	raw  string
	slot slot
}

// Template is a GetMap query string with placeholders for BBOX, WIDTH and
// HEIGHT. Every other parameter is kept byte for byte, in sample order.
type Template struct {
	segments []segment
	params   map[string]string
}

// ParseURLFormat builds a Template from a sample request. Both a full URL
// and a bare query string are accepted; anything before '?' is dropped.
func ParseURLFormat(sample string) (*Template, error) {
	query := strings.TrimSpace(sample)
	if i := strings.IndexByte(query, '?'); i >= 0 {
		query = query[i+1:]
	}
	if query == "" {
		return nil, ErrEmptyFormat
	}

	t := &Template{
		params: make(map[string]string),
	}

	seen := make(map[slot]bool)
	for _, raw := range strings.Split(query, "&") {
		key, value, _ := strings.Cut(raw, "=")
		upper := strings.ToUpper(key)

		s := slotLiteral
		switch upper {
		case ParamBBox:
			s = slotBBox
		case ParamWidth:
			s = slotWidth
		case ParamHeight:
			s = slotHeight
		}

		if s != slotLiteral {
			if seen[s] {
				return nil, fmt.Errorf("duplicate %s parameter in url format", upper)
			}
			seen[s] = true
			// keep the key spelling of the sample
			raw = key + "="
		}
		t.segments = append(t.segments, segment{raw: raw, slot: s})

		if decoded, err := url.QueryUnescape(value); err == nil {
			t.params[upper] = decoded
		} else {
			t.params[upper] = value
		}
	}

	required := []struct {
		slot slot
		name string
	}{{slotBBox, ParamBBox}, {slotWidth, ParamWidth}, {slotHeight, ParamHeight}}
	for _, r := range required {
		if !seen[r.slot] {
			return nil, fmt.Errorf("%w: %s", ErrMissingParam, r.name)
		}
	}

	return t, nil
}

// Instantiate fills the template for one tile.
func (t *Template) Instantiate(bbox tile.BoundingBox, width, height int) string {
	var sb strings.Builder
	sb.Grow(t.size() + 96)

	for i, s := range t.segments {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(s.raw)
		switch s.slot {
		case slotBBox:
			sb.WriteString(bbox.String())
		case slotWidth:
			sb.WriteString(strconv.Itoa(width))
		case slotHeight:
			sb.WriteString(strconv.Itoa(height))
		}
	}

	return sb.String()
}

// Param returns the decoded value of a sample parameter, keys are case
// insensitive.
func (t *Template) Param(key string) (string, bool) {
	v, ok := t.params[strings.ToUpper(key)]
	return v, ok
}

func (t *Template) Layers() string {
	v, _ := t.Param(ParamLayers)
	return v
}

func (t *Template) Version() string {
	v, _ := t.Param(ParamVer)
	return v
}

// SRS returns the spatial reference of the sample, CRS for 1.3.0 requests.
func (t *Template) SRS() string {
	if v, ok := t.Param(ParamSRS); ok {
		return v
	}
	v, _ := t.Param(ParamCRS)
	return v
}

// String renders the format with {bbox}, {width} and {height} markers.
func (t *Template) String() string {
	parts := make([]string, len(t.segments))
	for i, s := range t.segments {
		switch s.slot {
		case slotBBox:
			parts[i] = s.raw + "{bbox}"
		case slotWidth:
			parts[i] = s.raw + "{width}"
		case slotHeight:
			parts[i] = s.raw + "{height}"
		default:
			parts[i] = s.raw
		}
	}
	return strings.Join(parts, "&")
}

func (t *Template) size() int {
	n := 0
	for _, s := range t.segments {
		n += len(s.raw) + 1
	}
	return n
}
