package progress

import (
	"context"
	"sync"
)

type entry struct {
	status Status
	reason string
}

// MapStore keeps progress in memory for the lifetime of the process.
type MapStore struct {
	m sync.Map
}

func NewMapStore() *MapStore {
	return &MapStore{}
}

var _ Store = (*MapStore)(nil)

func (s *MapStore) MarkSeeded(_ context.Context, k Key) error {
	s.m.Store(k, entry{status: StatusSeeded})
	return nil
}

func (s *MapStore) MarkFailed(_ context.Context, k Key, reason string) error {
	s.m.Store(k, entry{status: StatusFailed, reason: reason})
	return nil
}

func (s *MapStore) IsSeeded(_ context.Context, k Key) (bool, error) {
	v, exists := s.m.Load(k)
	if !exists {
		return false, nil
	}
	return v.(entry).status == StatusSeeded, nil
}

func (s *MapStore) Stats(_ context.Context, layer string, zoom int) (Stats, error) {
	var stats Stats
	s.m.Range(func(key, value any) bool {
		k := key.(Key)
		if k.Layer != layer || k.Zoom != zoom {
			return true
		}
		switch value.(entry).status {
		case StatusSeeded:
			stats.Seeded++
		case StatusFailed:
			stats.Failed++
		}
		return true
	})
	return stats, nil
}

func (s *MapStore) Close() error {
	return nil
}
