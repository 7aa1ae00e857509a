package views

import (
	"time"

	"github.com/fundlane/fundlane/pkg/models"
)

type SchemeResponse struct {
	SchemeCode int    `json:"schemeCode"`
	SchemeName string `json:"schemeName"`
	FundHouse  string `json:"fundHouse"`
	Category   string `json:"category,omitempty"`
	Nav        string `json:"nav"`
	NavDate    string `json:"navDate"`
}

// NavPointResponse is one dated NAV observation; dates use ISO-8601 days.
type NavPointResponse struct {
	Date string `json:"date"`
	Nav  string `json:"nav"`
}

type NavHistoryResponse struct {
	SchemeCode int                `json:"schemeCode"`
	Points     []NavPointResponse `json:"points"`
}

// RefreshRequest narrows a NAV refresh to specific schemes; empty means all.
type RefreshRequest struct {
	SchemeCodes []int `json:"schemeCodes"`
}

type RefreshResponse struct {
	Refreshed []int `json:"refreshed"`
	Failed    []int `json:"failed,omitempty"`
}

const navDateLayout = "2006-01-02"

func ToSchemeResponse(s models.Scheme) SchemeResponse {
	return SchemeResponse{
		SchemeCode: s.SchemeCode,
		SchemeName: s.SchemeName,
		FundHouse:  s.FundHouse,
		Category:   s.Category,
		Nav:        s.LatestNav.String(),
		NavDate:    s.NavDate.Format(navDateLayout),
	}
}

func ToSchemeResponses(schemes []models.Scheme) []SchemeResponse {
	out := make([]SchemeResponse, 0, len(schemes))
	for _, s := range schemes {
		out = append(out, ToSchemeResponse(s))
	}
	return out
}

func ToNavHistoryResponse(schemeCode int, points []models.NavPoint) NavHistoryResponse {
	resp := NavHistoryResponse{SchemeCode: schemeCode, Points: make([]NavPointResponse, 0, len(points))}
	for _, p := range points {
		resp.Points = append(resp.Points, NavPointResponse{
			Date: p.Date.Format(navDateLayout),
			Nav:  p.Nav.String(),
		})
	}
	return resp
}

// ParseNavDate parses an ISO-8601 day (2006-01-02).
func ParseNavDate(s string) (time.Time, error) {
	return time.Parse(navDateLayout, s)
}
