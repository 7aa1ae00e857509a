package pkg

const (
	HeaderTraceId       string = "X-Trace-Id"
	HeaderRequestId     string = "X-Request-Id"
	HeaderInternalToken string = "X-Internal-Token"
)

const (
	TraceId  string = "trace_id"
	Identity string = "identity"
	OrderId  string = "order_id"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusExecuted   OrderStatus = "executed"
	OrderStatusFailed     OrderStatus = "failed"
)

// orderTransitions lists the allowed status moves. Executed and failed are
// terminal; there is no cancel or retry path.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing: {OrderStatusExecuted, OrderStatusFailed},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type OrderType string

const (
	OrderTypeLumpsum OrderType = "lumpsum"
	OrderTypeSIP     OrderType = "sip"
	OrderTypeRedeem  OrderType = "redeem"
	OrderTypeSWP     OrderType = "swp"
	OrderTypeSTP     OrderType = "stp"
)

type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// InstalmentsPerYear maps a SIP frequency to the number of instalments in a
// year, used by the calculators.
var InstalmentsPerYear = map[Frequency]int{
	FrequencyDaily:     365,
	FrequencyWeekly:    52,
	FrequencyMonthly:   12,
	FrequencyQuarterly: 4,
}

type MandateStatus string

const (
	MandateStatusActive MandateStatus = "active"
	MandateStatusPaused MandateStatus = "paused"
)

// Toggle flips a mandate between its only two states.
func (s MandateStatus) Toggle() MandateStatus {
	if s == MandateStatusActive {
		return MandateStatusPaused
	}
	return MandateStatusActive
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
)
