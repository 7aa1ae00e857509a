package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Scheme maps to table `schemes`: one row per mutual-fund scheme with its
// most recent NAV.
type Scheme struct {
	SchemeCode int
	SchemeName string
	FundHouse  string
	Category   string
	LatestNav  decimal.Decimal
	NavDate    time.Time
	UpdatedAt  time.Time
}

// NavPoint is one dated NAV observation in a scheme's history.
type NavPoint struct {
	Date time.Time
	Nav  decimal.Decimal
}

// SchemeFilter narrows scheme listings.
type SchemeFilter struct {
	FundHouse string
	Search    string // case-insensitive substring on scheme name
}
