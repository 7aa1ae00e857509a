package views

import (
	"time"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/models"
)

// OrderRequest is the place-order payload. Nav and amount arrive as strings
// so clients never round currency through floats; the service parses both
// into decimals.
type OrderRequest struct {
	SchemeCode        int    `json:"schemeCode" binding:"required"`
	SchemeName        string `json:"schemeName" binding:"required"`
	FundHouse         string `json:"fundHouse" binding:"required"`
	Nav               string `json:"nav" binding:"required"`
	OrderType         string `json:"orderType" binding:"required,oneof=lumpsum sip redeem swp stp"`
	Amount            string `json:"amount" binding:"required"`
	Frequency         string `json:"frequency" binding:"omitempty,oneof=daily weekly monthly quarterly"`
	SIPStartDate      string `json:"sipStartDate"`
	PayoutAccount     string `json:"payoutAccount"`
	TargetScheme      string `json:"targetScheme"`
	TransferStartDate string `json:"transferStartDate"`
	PaymentMethod     string `json:"paymentMethod" binding:"required"`
	PaymentGateway    string `json:"paymentGateway"`
	PaymentReference  string `json:"paymentReference"`
}

// OrderStatusRequest updates an order's status.
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=executed failed"`
}

type OrderResponse struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId"`
	SchemeCode         int        `json:"schemeCode"`
	SchemeName         string     `json:"schemeName"`
	FundHouse          string     `json:"fundHouse"`
	Nav                string     `json:"nav"`
	OrderType          string     `json:"orderType"`
	Amount             string     `json:"amount"`
	Frequency          string     `json:"frequency,omitempty"`
	SIPStartDate       string     `json:"sipStartDate,omitempty"`
	PayoutAccount      string     `json:"payoutAccount,omitempty"`
	TargetScheme       string     `json:"targetScheme,omitempty"`
	TransferStartDate  string     `json:"transferStartDate,omitempty"`
	PaymentMethod      string     `json:"paymentMethod"`
	PaymentGateway     string     `json:"paymentGateway,omitempty"`
	Status             string     `json:"status"`
	ReceiptEmailSentAt *time.Time `json:"receiptEmailSentAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func ToOrderResponse(o models.Order) OrderResponse {
	return OrderResponse{
		ID:                 o.ID.String(),
		UserID:             o.UserID.String(),
		SchemeCode:         o.SchemeCode,
		SchemeName:         o.SchemeName,
		FundHouse:          o.FundHouse,
		Nav:                o.Nav.String(),
		OrderType:          string(o.OrderType),
		Amount:             o.Amount.StringFixed(2),
		Frequency:          string(o.Frequency),
		SIPStartDate:       o.SIPStartDate,
		PayoutAccount:      o.PayoutAccount,
		TargetScheme:       o.TargetScheme,
		TransferStartDate:  o.TransferStartDate,
		PaymentMethod:      o.PaymentMethod,
		PaymentGateway:     o.PaymentGateway,
		Status:             string(o.Status),
		ReceiptEmailSentAt: o.ReceiptEmailSentAt,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

func ToOrderResponses(orders []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderResponse(o))
	}
	return out
}

// ParseOrderStatus narrows the already oneof-validated string.
func ParseOrderStatus(s string) pkg.OrderStatus {
	return pkg.OrderStatus(s)
}
