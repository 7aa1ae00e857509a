package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/models"
	"github.com/fundlane/fundlane/pkg/utils"
)

// upstreamDateLayout is the day format the NAV provider uses in its history
// payloads.
const upstreamDateLayout = "02-01-2006"

// MarketDataClient fetches scheme metadata and NAV history from the upstream
// NAV provider.
type MarketDataClient interface {
	FetchScheme(ctx context.Context, schemeCode int) (models.Scheme, []models.NavPoint, error)
}

type MarketDataClientImpl struct {
	logger  *zap.Logger
	client  *http.Client
	baseURL string
	limiter *pkg.DistributedLimiter
}

func NewMarketDataClient(logger *zap.Logger, baseURL string, limiter *pkg.DistributedLimiter) MarketDataClient {
	return &MarketDataClientImpl{
		logger: logger,
		client: utils.NewHTTPClient(
			utils.WithClientTimeout(10*time.Second),
			utils.WithResponseHeaderTimeout(5*time.Second),
			utils.WithMaxConnsPerHost(20),
		),
		baseURL: baseURL,
		limiter: limiter,
	}
}

// navEnvelope mirrors the provider's response shape.
type navEnvelope struct {
	Meta struct {
		SchemeCode     int    `json:"scheme_code"`
		SchemeName     string `json:"scheme_name"`
		FundHouse      string `json:"fund_house"`
		SchemeCategory string `json:"scheme_category"`
	} `json:"meta"`
	Data []struct {
		Date string `json:"date"`
		Nav  string `json:"nav"`
	} `json:"data"`
}

func (c *MarketDataClientImpl) FetchScheme(ctx context.Context, schemeCode int) (models.Scheme, []models.NavPoint, error) {
	if c.limiter != nil && !c.limiter.Allow(ctx) {
		return models.Scheme{}, nil, pkg.NewAppError(pkg.ErrRateLimitedCode, "nav provider rate limit reached", pkg.ErrRateLimitExceeded)
	}

	url := fmt.Sprintf("%s/mf/%d", c.baseURL, schemeCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Scheme{}, nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return models.Scheme{}, nil, pkg.NewAppError(pkg.ErrUpstreamNavCode, "nav provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.Scheme{}, nil, pkg.ErrSchemeNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return models.Scheme{}, nil, pkg.NewAppError(pkg.ErrUpstreamNavCode,
			fmt.Sprintf("nav provider returned status %d", resp.StatusCode), nil)
	}

	var envelope navEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return models.Scheme{}, nil, pkg.NewAppError(pkg.ErrUpstreamNavCode, "nav provider returned malformed payload", err)
	}
	if envelope.Meta.SchemeCode == 0 || len(envelope.Data) == 0 {
		return models.Scheme{}, nil, pkg.ErrSchemeNotFound
	}

	points := make([]models.NavPoint, 0, len(envelope.Data))
	for _, d := range envelope.Data {
		date, err := time.Parse(upstreamDateLayout, d.Date)
		if err != nil {
			c.logger.Warn("skipping nav point with malformed date",
				zap.Int("schemeCode", schemeCode), zap.String("date", d.Date))
			continue
		}
		nav, err := decimal.NewFromString(d.Nav)
		if err != nil {
			c.logger.Warn("skipping nav point with malformed value",
				zap.Int("schemeCode", schemeCode), zap.String("nav", d.Nav))
			continue
		}
		points = append(points, models.NavPoint{Date: date, Nav: nav})
	}
	if len(points) == 0 {
		return models.Scheme{}, nil, pkg.NewAppError(pkg.ErrUpstreamNavCode, "nav provider returned no usable nav points", nil)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.After(points[j].Date) })

	scheme := models.Scheme{
		SchemeCode: envelope.Meta.SchemeCode,
		SchemeName: envelope.Meta.SchemeName,
		FundHouse:  envelope.Meta.FundHouse,
		Category:   envelope.Meta.SchemeCategory,
		LatestNav:  points[0].Nav,
		NavDate:    points[0].Date,
	}
	return scheme, points, nil
}
