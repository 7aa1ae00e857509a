package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/views"
)

// Order maps to table `orders`. PaymentReference is stored AES-encrypted; the
// repository owns the encrypt/decrypt round trip.
type Order struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	SchemeCode         int
	SchemeName         string
	FundHouse          string
	Nav                decimal.Decimal
	OrderType          pkg.OrderType
	Amount             decimal.Decimal
	Frequency          pkg.Frequency
	SIPStartDate       string
	PayoutAccount      string
	TargetScheme       string
	TransferStartDate  string
	PaymentMethod      string
	PaymentGateway     string
	PaymentReference   string
	Status             pkg.OrderStatus
	ReceiptEmailSentAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (o Order) ToReceiptJob() views.ReceiptJob {
	return views.ReceiptJob{
		OrderID:    o.ID.String(),
		UserID:     o.UserID.String(),
		SchemeName: o.SchemeName,
		FundHouse:  o.FundHouse,
		OrderType:  string(o.OrderType),
		Amount:     o.Amount.StringFixed(2),
		Nav:        o.Nav.String(),
		ExecutedAt: o.UpdatedAt,
	}
}

// OrderFilter narrows List results. Zero values mean "no constraint".
type OrderFilter struct {
	UserID uuid.UUID
	Status pkg.OrderStatus
}
