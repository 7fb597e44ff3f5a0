// Package progress persists per-tile seeding outcomes so that an
// interrupted run can be resumed without re-requesting seeded tiles.
package progress

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

type Status string

const (
	StatusSeeded Status = "seeded"
	StatusFailed Status = "failed"
)

type Key struct {
	Layer      string
	Zoom       int
	Descriptor string
}

// Bucket groups every key of one layer at one zoom level.
func (k Key) Bucket() string {
	return fmt.Sprintf("seed:%s:%d", k.Layer, k.Zoom)
}

// Field identifies the descriptor inside its bucket.
func (k Key) Field() string {
	return strconv.FormatUint(xxhash.Sum64String(k.Descriptor), 16)
}

type Stats struct {
	Seeded int64 `json:"seeded"`
	Failed int64 `json:"failed"`
}

type Store interface {
	MarkSeeded(ctx context.Context, k Key) error
	MarkFailed(ctx context.Context, k Key, reason string) error
	IsSeeded(ctx context.Context, k Key) (bool, error)
	Stats(ctx context.Context, layer string, zoom int) (Stats, error)
	Close() error
}
