package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravenhall/waggle/internal/waggle/service/learning"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "learning.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveIsUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &learning.Pattern{ID: "p1", Strategy: "read before write", Domain: "editing", Quality: 0.7}
	require.NoError(t, s.Save(ctx, p))

	p.Quality = 0.9
	require.NoError(t, s.Save(ctx, p))

	got, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0.9, got.Quality)

	found, err := s.Find(ctx, "read", 10)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestGetUnknown(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPatternNotFound)
}

func TestFindRanksByQuality(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &learning.Pattern{ID: "low", Strategy: "cache results", Quality: 0.2}))
	require.NoError(t, s.Save(ctx, &learning.Pattern{ID: "high", Strategy: "cache invalidation", Quality: 0.9}))
	require.NoError(t, s.Save(ctx, &learning.Pattern{ID: "other", Strategy: "unrelated", Quality: 1.0}))

	found, err := s.Find(ctx, "cache", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "high", found[0].ID)
	assert.Equal(t, "low", found[1].ID)
}

func TestTouchIncrementsUseCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &learning.Pattern{ID: "p1", Strategy: "s", Quality: 0.5}))
	require.NoError(t, s.Touch(ctx, "p1"))
	require.NoError(t, s.Touch(ctx, "p1"))

	got, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.UseCount)

	assert.ErrorIs(t, s.Touch(ctx, "missing"), ErrPatternNotFound)
}

func TestConsolidate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, s.Save(ctx, &learning.Pattern{ID: "stale", Strategy: "s", Quality: 0.1, CreatedAt: old}))
	require.NoError(t, s.Save(ctx, &learning.Pattern{ID: "good", Strategy: "s", Quality: 0.9, CreatedAt: old}))
	require.NoError(t, s.Save(ctx, &learning.Pattern{ID: "used", Strategy: "s", Quality: 0.1, UseCount: 3, CreatedAt: old}))

	// Backdate updated_at so the stale row falls behind the cutoff.
	_, err := s.db.Exec(`UPDATE `+TablePatterns+` SET updated_at = ?`, old.UnixMilli())
	require.NoError(t, err)

	removed, err := s.Consolidate(ctx, 0.5, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = s.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrPatternNotFound)
	_, err = s.Get(ctx, "good")
	assert.NoError(t, err)
	_, err = s.Get(ctx, "used")
	assert.NoError(t, err)
}

func TestRecordMetric(t *testing.T) {
	s := newTestStore(t)

	err := s.RecordMetric(context.Background(), &learning.MetricSample{
		CPUPercent: 12.5,
		MemPercent: 40.0,
		LoadAvg:    0.8,
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM `+TableMetrics).Scan(&count))
	assert.Equal(t, 1, count)
}
