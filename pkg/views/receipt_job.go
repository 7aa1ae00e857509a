package views

import "time"

// ReceiptJob is the payload published to the receipt topic when an order
// transitions to executed. The worker validates it before rendering the email.
type ReceiptJob struct {
	OrderID    string    `json:"orderId" validate:"required,uuid"`
	UserID     string    `json:"userId" validate:"required,uuid"`
	SchemeName string    `json:"schemeName" validate:"required"`
	FundHouse  string    `json:"fundHouse" validate:"required"`
	OrderType  string    `json:"orderType" validate:"required"`
	Amount     string    `json:"amount" validate:"required"`
	Nav        string    `json:"nav" validate:"required"`
	ExecutedAt time.Time `json:"executedAt" validate:"required"`
}
