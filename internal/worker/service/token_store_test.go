package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"token-pulse/internal/worker/model"
	"token-pulse/internal/worker/writer/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	mu        sync.Mutex
	err       error
	snapshots []token.Snapshot
}

func (f *fakeWriter) BWrite(_ context.Context, batch []token.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.snapshots = append(f.snapshots, batch...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

type fakeTokenDAO struct {
	snapshot    []*model.DiscoveryToken
	found       bool
	snapshotErr error
	rows        []*model.DiscoveryToken
	listCalls   int
}

func (f *fakeTokenDAO) GetSnapshot(context.Context, string) ([]*model.DiscoveryToken, bool, error) {
	return f.snapshot, f.found, f.snapshotErr
}

func (f *fakeTokenDAO) ListByCategory(context.Context, string) ([]*model.DiscoveryToken, error) {
	f.listCalls++
	return f.rows, nil
}

func (f *fakeTokenDAO) DeleteStale(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func TestTokenStoreSaveStampsTokens(t *testing.T) {
	db, cache := &fakeWriter{}, &fakeWriter{}
	store := NewTokenStore(db, cache, &fakeTokenDAO{}, zap.NewNop())
	fixed := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	tokens := []*model.DiscoveryToken{{Mint: "A"}, {Mint: "B"}}
	require.NoError(t, store.Save(context.Background(), tokens, model.CategoryAI, "ai-tokens"))

	require.Len(t, db.snapshots, 1)
	require.Len(t, cache.snapshots, 1)
	assert.Equal(t, "ai-tokens", cache.snapshots[0].CacheKey)
	for _, tk := range tokens {
		assert.Equal(t, model.CategoryAI, tk.Category)
		assert.Equal(t, fixed, tk.UpdatedAt)
	}
}

func TestTokenStoreDBFailureDoesNotBlockCache(t *testing.T) {
	db := &fakeWriter{err: errors.New("connection refused")}
	cache := &fakeWriter{}
	store := NewTokenStore(db, cache, &fakeTokenDAO{}, zap.NewNop())

	err := store.Save(context.Background(), []*model.DiscoveryToken{{Mint: "A"}}, model.CategoryTrending, "trending-tokens")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db:")
	require.Len(t, cache.snapshots, 1)
	assert.Equal(t, "A", cache.snapshots[0].Tokens[0].Mint)
}

func TestTokenStoreLoadCacheFirst(t *testing.T) {
	d := &fakeTokenDAO{snapshot: []*model.DiscoveryToken{{Mint: "cached"}}, found: true}
	store := NewTokenStore(nil, nil, d, zap.NewNop())

	tokens, err := store.Load(context.Background(), model.CategoryAI, "ai-tokens")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "cached", tokens[0].Mint)
	assert.Zero(t, d.listCalls)
}

func TestTokenStoreLoadFallsBackToDB(t *testing.T) {
	d := &fakeTokenDAO{snapshotErr: errors.New("redis down"), rows: []*model.DiscoveryToken{{Mint: "row"}}}
	store := NewTokenStore(nil, nil, d, zap.NewNop())

	tokens, err := store.Load(context.Background(), model.CategoryAI, "ai-tokens")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "row", tokens[0].Mint)
	assert.Equal(t, 1, d.listCalls)
}
