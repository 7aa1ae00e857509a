package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
)

const navProviderPayload = `{
	"meta": {
		"scheme_code": 120503,
		"scheme_name": "Axis Bluechip Fund Direct Plan Growth",
		"fund_house": "Axis Mutual Fund",
		"scheme_category": "Equity Scheme - Large Cap Fund"
	},
	"data": [
		{"date": "27-08-2026", "nav": "58.02"},
		{"date": "28-08-2026", "nav": "58.41"},
		{"date": "bad-date", "nav": "1.00"},
		{"date": "26-08-2026", "nav": "oops"}
	]
}`

func TestFetchScheme_ParsesAndSortsNewestFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mf/120503", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(navProviderPayload))
	}))
	defer srv.Close()

	client := NewMarketDataClient(zap.NewNop(), srv.URL, nil)
	scheme, points, err := client.FetchScheme(context.Background(), 120503)
	require.NoError(t, err)

	assert.Equal(t, 120503, scheme.SchemeCode)
	assert.Equal(t, "Axis Mutual Fund", scheme.FundHouse)
	assert.Equal(t, "58.41", scheme.LatestNav.String())

	// Malformed rows are skipped, the rest sorted newest first.
	require.Len(t, points, 2)
	assert.True(t, points[0].Date.After(points[1].Date))
	assert.Equal(t, "58.41", points[0].Nav.String())
}

func TestFetchScheme_UnknownScheme(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewMarketDataClient(zap.NewNop(), srv.URL, nil)
	_, _, err := client.FetchScheme(context.Background(), 999999)
	assert.ErrorIs(t, err, pkg.ErrSchemeNotFound)
}

func TestFetchScheme_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewMarketDataClient(zap.NewNop(), srv.URL, nil)
	_, _, err := client.FetchScheme(context.Background(), 120503)

	var appErr pkg.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkg.ErrUpstreamNavCode.Code, appErr.Code.Code)
}

func TestFetchScheme_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := NewMarketDataClient(zap.NewNop(), srv.URL, nil)
	_, _, err := client.FetchScheme(context.Background(), 120503)

	var appErr pkg.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkg.ErrUpstreamNavCode.Code, appErr.Code.Code)
}

func TestFetchScheme_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(navProviderPayload))
	}))
	defer srv.Close()

	limiter := pkg.NewDistributedLimiter(nil, "test:nav_rate", 1, 1, time.Minute, zap.NewNop())
	client := NewMarketDataClient(zap.NewNop(), srv.URL, limiter)

	_, _, err := client.FetchScheme(context.Background(), 120503)
	require.NoError(t, err)

	_, _, err = client.FetchScheme(context.Background(), 120503)
	var appErr pkg.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkg.ErrRateLimitedCode.Code, appErr.Code.Code)
}
