package progress

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jaennil/guide_helper/backend/seeder/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "progress.db"), logger.NewNoOp())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testStore(t *testing.T, store Store) {
	ctx := context.Background()
	seeded := Key{Layer: "imos:argo", Zoom: 2, Descriptor: "BBOX=-45,45,0,90&WIDTH=256&HEIGHT=256"}
	failed := Key{Layer: "imos:argo", Zoom: 2, Descriptor: "BBOX=0,45,45,90&WIDTH=256&HEIGHT=256"}
	other := Key{Layer: "imos:argo", Zoom: 3, Descriptor: seeded.Descriptor}

	ok, err := store.IsSeeded(ctx, seeded)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.MarkSeeded(ctx, seeded))
	require.NoError(t, store.MarkFailed(ctx, failed, "status 502"))

	ok, err = store.IsSeeded(ctx, seeded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.IsSeeded(ctx, failed)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.IsSeeded(ctx, other)
	require.NoError(t, err)
	assert.False(t, ok, "zoom levels are tracked separately")

	stats, err := store.Stats(ctx, "imos:argo", 2)
	require.NoError(t, err)
	assert.Equal(t, Stats{Seeded: 1, Failed: 1}, stats)

	// a later success overrides an earlier failure
	require.NoError(t, store.MarkSeeded(ctx, failed))
	stats, err = store.Stats(ctx, "imos:argo", 2)
	require.NoError(t, err)
	assert.Equal(t, Stats{Seeded: 2}, stats)
}

func TestMapStore(t *testing.T) {
	testStore(t, NewMapStore())
}

func TestSQLiteStore(t *testing.T) {
	testStore(t, newTestSQLiteStore(t))
}

func TestKeyBucketAndField(t *testing.T) {
	k := Key{Layer: "default_bathy", Zoom: 4, Descriptor: "BBOX=1,2,3,4"}
	assert.Equal(t, "seed:default_bathy:4", k.Bucket())
	assert.Equal(t, k.Field(), Key{Descriptor: "BBOX=1,2,3,4"}.Field())
	assert.NotEqual(t, k.Field(), Key{Descriptor: "BBOX=1,2,3,5"}.Field())
}

func TestStatusEncoding(t *testing.T) {
	assert.Equal(t, "seeded", encodeStatus(StatusSeeded, ""))
	assert.Equal(t, "failed:status 500: oops", encodeStatus(StatusFailed, "status 500: oops"))
	assert.Equal(t, StatusFailed, decodeStatus("failed:status 500: oops"))
	assert.Equal(t, StatusSeeded, decodeStatus("seeded"))

	stats := countStatuses([]string{"seeded", "failed:x", "seeded", "garbage"})
	assert.Equal(t, Stats{Seeded: 2, Failed: 1}, stats)
}
