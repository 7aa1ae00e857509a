package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/cache"
	"github.com/fundlane/fundlane/pkg/models"
	"github.com/fundlane/fundlane/pkg/repositories"
)

// fakeMarketClient serves canned schemes and counts fetches.
type fakeMarketClient struct {
	mu      sync.Mutex
	schemes map[int]models.Scheme
	navs    map[int][]models.NavPoint
	calls   int
}

func (f *fakeMarketClient) FetchScheme(ctx context.Context, schemeCode int) (models.Scheme, []models.NavPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	s, ok := f.schemes[schemeCode]
	if !ok {
		return models.Scheme{}, nil, pkg.ErrSchemeNotFound
	}
	return s, f.navs[schemeCode], nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func newFundServiceForTest() (FundService, *repositories.MemorySchemeRepository, *fakeMarketClient) {
	repo := repositories.NewMemorySchemeRepository()
	market := &fakeMarketClient{
		schemes: map[int]models.Scheme{
			120503: {
				SchemeCode: 120503,
				SchemeName: "Axis Bluechip Fund Direct Plan Growth",
				FundHouse:  "Axis Mutual Fund",
				Category:   "Equity Scheme - Large Cap Fund",
				LatestNav:  decimal.RequireFromString("58.41"),
				NavDate:    day("2026-08-28"),
			},
		},
		navs: map[int][]models.NavPoint{
			120503: {
				{Date: day("2026-08-28"), Nav: decimal.RequireFromString("58.41")},
				{Date: day("2026-08-27"), Nav: decimal.RequireFromString("58.02")},
			},
		},
	}
	svc := NewFundService(zap.NewNop(), repo, market, cache.NewMemoryNavCache(time.Minute), 365)
	return svc, repo, market
}

func TestRefresh_UpsertsSchemeAndHistory(t *testing.T) {
	svc, repo, _ := newFundServiceForTest()
	ctx := context.Background()

	resp, err := svc.Refresh(ctx, []int{120503})
	require.NoError(t, err)
	assert.Equal(t, []int{120503}, resp.Refreshed)
	assert.Empty(t, resp.Failed)

	scheme, err := repo.FindByCode(ctx, 120503)
	require.NoError(t, err)
	assert.Equal(t, "Axis Mutual Fund", scheme.FundHouse)

	points, err := repo.NavHistory(ctx, 120503, 10)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestRefresh_CollectsFailures(t *testing.T) {
	svc, _, _ := newFundServiceForTest()

	resp, err := svc.Refresh(context.Background(), []int{120503, 999999})
	require.NoError(t, err)
	assert.Equal(t, []int{120503}, resp.Refreshed)
	assert.Equal(t, []int{999999}, resp.Failed)
}

func TestNavHistory_CachesSecondRead(t *testing.T) {
	repo := repositories.NewMemorySchemeRepository()
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, models.Scheme{SchemeCode: 120503, SchemeName: "Axis Bluechip"}))
	require.NoError(t, repo.UpsertNavs(ctx, 120503, []models.NavPoint{
		{Date: day("2026-08-28"), Nav: decimal.RequireFromString("58.41")},
	}))

	navCache := &countingCache{inner: cache.NewMemoryNavCache(time.Minute)}
	svc := NewFundService(zap.NewNop(), repo, &fakeMarketClient{}, navCache, 365)

	first, err := svc.NavHistory(ctx, 120503)
	require.NoError(t, err)
	require.Len(t, first.Points, 1)
	assert.Equal(t, 1, navCache.sets)

	second, err := svc.NavHistory(ctx, 120503)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	// Cache hit: no second write.
	assert.Equal(t, 1, navCache.sets)
}

func TestNavHistory_UnknownScheme(t *testing.T) {
	svc, _, _ := newFundServiceForTest()

	_, err := svc.NavHistory(context.Background(), 999999)
	assert.ErrorIs(t, err, pkg.ErrSchemeNotFound)
}

func TestRefresh_InvalidatesCache(t *testing.T) {
	svc, repo, market := newFundServiceForTest()
	ctx := context.Background()

	_, err := svc.Refresh(ctx, []int{120503})
	require.NoError(t, err)

	history, err := svc.NavHistory(ctx, 120503)
	require.NoError(t, err)
	require.Len(t, history.Points, 2)

	// Upstream publishes a new NAV; refresh must drop the cached history.
	market.mu.Lock()
	market.navs[120503] = append([]models.NavPoint{
		{Date: day("2026-08-29"), Nav: decimal.RequireFromString("58.90")},
	}, market.navs[120503]...)
	market.mu.Unlock()

	_, err = svc.Refresh(ctx, []int{120503})
	require.NoError(t, err)

	after, err := svc.NavHistory(ctx, 120503)
	require.NoError(t, err)
	assert.Len(t, after.Points, 3)

	points, err := repo.NavHistory(ctx, 120503, 10)
	require.NoError(t, err)
	assert.Len(t, points, 3)
}

// countingCache wraps a NavCache and counts writes.
type countingCache struct {
	inner cache.NavCache
	sets  int
}

func (c *countingCache) Get(ctx context.Context, schemeCode int, out any) error {
	return c.inner.Get(ctx, schemeCode, out)
}

func (c *countingCache) Set(ctx context.Context, schemeCode int, value any) error {
	c.sets++
	return c.inner.Set(ctx, schemeCode, value)
}

func (c *countingCache) Invalidate(ctx context.Context, schemeCode int) error {
	return c.inner.Invalidate(ctx, schemeCode)
}
