package job

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"token-pulse/internal/worker/discovery"
	"token-pulse/internal/worker/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSchedulerRunsImmediatelyAndOnTick(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var runs atomic.Int32
	s.RegisterJob("tick", 20*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	s.Stop(stopCtx)
}

func TestSchedulerJobDeadline(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	deadlines := make(chan time.Duration, 2)
	report := func(ctx context.Context) error {
		d, ok := ctx.Deadline()
		if !ok {
			deadlines <- -1
			return nil
		}
		deadlines <- time.Until(d)
		return nil
	}
	s.RegisterJob("bounded", time.Hour, report)
	s.RegisterJobWithoutDeadline("unbounded", time.Hour, report)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	var got []time.Duration
	for i := 0; i < 2; i++ {
		select {
		case d := <-deadlines:
			got = append(got, d)
		case <-time.After(time.Second):
			t.Fatal("job did not run")
		}
	}
	// 普通周期任务的截止时间为 interval/2，另一个没有截止时间
	assert.Contains(t, got, time.Duration(-1))
	for _, d := range got {
		if d >= 0 {
			assert.LessOrEqual(t, d, 30*time.Minute)
			assert.Greater(t, d, 29*time.Minute)
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	s.Stop(stopCtx)
}

func TestRegisterCronJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	require.Error(t, s.RegisterCronJob("bad", "not a cron", func(context.Context) error { return nil }))

	var runs atomic.Int32
	require.NoError(t, s.RegisterCronJob("every5", "*/5 * * * *", func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	// 启动时立即执行一次
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	s.Stop(stopCtx)
}

func TestDiscoveryRefreshRunsAllInOrder(t *testing.T) {
	var order []string
	fetch := func(category string, err error) discovery.Refresher {
		return discovery.Refresher{Category: category, Fetch: func(ctx context.Context) ([]*model.DiscoveryToken, error) {
			order = append(order, category)
			if err != nil {
				return nil, err
			}
			return []*model.DiscoveryToken{{Mint: category}}, nil
		}}
	}

	job := NewDiscoveryRefresh([]discovery.Refresher{
		fetch(model.CategoryBluechipMeme, nil),
		fetch(model.CategoryXStock, errors.New("xstock down")),
		fetch(model.CategoryLsts, nil),
	}, zap.NewNop())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xstock down")
	// 单个类目失败不影响后续类目
	assert.Equal(t, []string{model.CategoryBluechipMeme, model.CategoryXStock, model.CategoryLsts}, order)

	order = nil
	require.NoError(t, job.RunCategory(context.Background(), model.CategoryLsts))
	assert.Equal(t, []string{model.CategoryLsts}, order)
	assert.Error(t, job.RunCategory(context.Background(), "unknown"))
}

func TestDiscoveryRefreshStopsWhenCancelled(t *testing.T) {
	calls := 0
	r := discovery.Refresher{Category: "x", Fetch: func(ctx context.Context) ([]*model.DiscoveryToken, error) {
		calls++
		return nil, nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDiscoveryRefresh([]discovery.Refresher{r, r}, zap.NewNop()).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func allCategoryRefreshers(slow time.Duration, ran *[]string, mu *sync.Mutex) []discovery.Refresher {
	categories := []string{
		model.CategoryBluechipMeme, model.CategoryXStock, model.CategoryLsts,
		model.CategoryAI, model.CategoryTrending, model.CategoryPopular,
	}
	refreshers := make([]discovery.Refresher, 0, len(categories))
	for i, category := range categories {
		delay := time.Duration(0)
		if i == 0 {
			delay = slow
		}
		refreshers = append(refreshers, discovery.Refresher{Category: category, Fetch: func(ctx context.Context) ([]*model.DiscoveryToken, error) {
			time.Sleep(delay)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			mu.Lock()
			*ran = append(*ran, category)
			mu.Unlock()
			return nil, nil
		}})
	}
	return refreshers
}

func TestDiscoveryRefreshDeadlineDoesNotSkipCategories(t *testing.T) {
	var (
		mu  sync.Mutex
		ran []string
	)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// 第一个类目超过截止时间，后续类目照常执行
	err := NewDiscoveryRefresh(allCategoryRefreshers(60*time.Millisecond, &ran, &mu), zap.NewNop()).Run(ctx)
	require.NoError(t, err)
	assert.Len(t, ran, 6)
	assert.Equal(t, model.CategoryPopular, ran[5])
}

func TestDiscoveryJobSlowCategoryDelaysButRunsAll(t *testing.T) {
	var (
		mu  sync.Mutex
		ran []string
	)
	s := NewScheduler(zap.NewNop())
	refresh := NewDiscoveryRefresh(allCategoryRefreshers(300*time.Millisecond, &ran, &mu), zap.NewNop())
	s.RegisterJobWithoutDeadline("discovery_refresh", 200*time.Millisecond, refresh.Run)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ran) >= 6
	}, 2*time.Second, 10*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	s.Stop(stopCtx)
}

type staleTokenDAO struct {
	before time.Time
	err    error
}

func (d *staleTokenDAO) GetSnapshot(context.Context, string) ([]*model.DiscoveryToken, bool, error) {
	return nil, false, nil
}

func (d *staleTokenDAO) ListByCategory(context.Context, string) ([]*model.DiscoveryToken, error) {
	return nil, nil
}

func (d *staleTokenDAO) DeleteStale(_ context.Context, before time.Time) (int64, error) {
	d.before = before
	return 3, d.err
}

func TestTokenCleanupCutoff(t *testing.T) {
	d := &staleTokenDAO{}
	job := NewTokenCleanup(d, 48*time.Hour, zap.NewNop())
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC), d.before)

	d.err = errors.New("db down")
	assert.Error(t, job.Run(context.Background()))
}
