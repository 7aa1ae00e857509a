package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg/cache"
	"github.com/fundlane/fundlane/pkg/models"
	"github.com/fundlane/fundlane/pkg/repositories"
	"github.com/fundlane/fundlane/services/invest-api/internal/views"
)

type FundService interface {
	ListSchemes(ctx context.Context, filter models.SchemeFilter) ([]views.SchemeResponse, error)
	GetScheme(ctx context.Context, schemeCode int) (views.SchemeResponse, error)
	NavHistory(ctx context.Context, schemeCode int) (views.NavHistoryResponse, error)
	// Refresh re-fetches the given schemes from the upstream provider and
	// upserts them. Empty input refreshes every known scheme. Per-scheme
	// failures are collected, not fatal.
	Refresh(ctx context.Context, schemeCodes []int) (views.RefreshResponse, error)
}

type FundServiceImpl struct {
	logger          *zap.Logger
	schemes         repositories.SchemeRepository
	market          MarketDataClient
	navCache        cache.NavCache
	navHistoryLimit int
}

func NewFundService(logger *zap.Logger, schemes repositories.SchemeRepository, market MarketDataClient, navCache cache.NavCache, navHistoryLimit int) FundService {
	return &FundServiceImpl{
		logger:          logger,
		schemes:         schemes,
		market:          market,
		navCache:        navCache,
		navHistoryLimit: navHistoryLimit,
	}
}

func (s *FundServiceImpl) ListSchemes(ctx context.Context, filter models.SchemeFilter) ([]views.SchemeResponse, error) {
	schemes, err := s.schemes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return views.ToSchemeResponses(schemes), nil
}

func (s *FundServiceImpl) GetScheme(ctx context.Context, schemeCode int) (views.SchemeResponse, error) {
	scheme, err := s.schemes.FindByCode(ctx, schemeCode)
	if err != nil {
		return views.SchemeResponse{}, err
	}
	return views.ToSchemeResponse(scheme), nil
}

// NavHistory serves from the TTL cache when it can; a miss reads the store
// and repopulates the cache.
func (s *FundServiceImpl) NavHistory(ctx context.Context, schemeCode int) (views.NavHistoryResponse, error) {
	var cached views.NavHistoryResponse
	if err := s.navCache.Get(ctx, schemeCode, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("nav cache read failed", zap.Int("schemeCode", schemeCode), zap.Error(err))
	}

	// Confirm the scheme exists so an unknown code is a 404, not an empty
	// history.
	if _, err := s.schemes.FindByCode(ctx, schemeCode); err != nil {
		return views.NavHistoryResponse{}, err
	}
	points, err := s.schemes.NavHistory(ctx, schemeCode, s.navHistoryLimit)
	if err != nil {
		return views.NavHistoryResponse{}, err
	}

	resp := views.ToNavHistoryResponse(schemeCode, points)
	if err := s.navCache.Set(ctx, schemeCode, resp); err != nil {
		s.logger.Warn("nav cache write failed", zap.Int("schemeCode", schemeCode), zap.Error(err))
	}
	return resp, nil
}

func (s *FundServiceImpl) Refresh(ctx context.Context, schemeCodes []int) (views.RefreshResponse, error) {
	if len(schemeCodes) == 0 {
		known, err := s.schemes.List(ctx, models.SchemeFilter{})
		if err != nil {
			return views.RefreshResponse{}, err
		}
		for _, sc := range known {
			schemeCodes = append(schemeCodes, sc.SchemeCode)
		}
	}

	resp := views.RefreshResponse{Refreshed: []int{}}
	for _, code := range schemeCodes {
		if err := s.refreshOne(ctx, code); err != nil {
			s.logger.Error("scheme refresh failed", zap.Int("schemeCode", code), zap.Error(err))
			resp.Failed = append(resp.Failed, code)
			continue
		}
		resp.Refreshed = append(resp.Refreshed, code)
	}
	return resp, nil
}

func (s *FundServiceImpl) refreshOne(ctx context.Context, schemeCode int) error {
	scheme, points, err := s.market.FetchScheme(ctx, schemeCode)
	if err != nil {
		return err
	}
	if err := s.schemes.Upsert(ctx, scheme); err != nil {
		return err
	}
	if err := s.schemes.UpsertNavs(ctx, scheme.SchemeCode, points); err != nil {
		return err
	}
	// Drop the stale cache entry; the next read repopulates it.
	if err := s.navCache.Invalidate(ctx, schemeCode); err != nil {
		s.logger.Warn("nav cache invalidate failed", zap.Int("schemeCode", schemeCode), zap.Error(err))
	}
	return nil
}
