package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundlane/fundlane/pkg"
)

// Mandate maps to table `mandates`. Limit is the ceiling for auto-debits
// funded by this standing bank authorization.
type Mandate struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Nickname  string
	Bank      string
	Limit     decimal.Decimal
	Status    pkg.MandateStatus
	CreatedAt time.Time
}
