package views

// SIPRequest estimates the future value of a recurring investment.
// Instalment and returns arrive as strings for decimal-exact arithmetic.
type SIPRequest struct {
	Instalment           string `json:"instalment" binding:"required"`
	Frequency            string `json:"frequency" binding:"required,oneof=daily weekly monthly quarterly"`
	Years                int    `json:"years" binding:"required,min=1,max=50"`
	ExpectedAnnualReturn string `json:"expectedAnnualReturn" binding:"required"`
}

// LumpsumRequest estimates single-sum compounding.
type LumpsumRequest struct {
	Amount               string `json:"amount" binding:"required"`
	Years                int    `json:"years" binding:"required,min=1,max=50"`
	ExpectedAnnualReturn string `json:"expectedAnnualReturn" binding:"required"`
}

type CalculatorResponse struct {
	Invested       string `json:"invested"`
	EstimatedValue string `json:"estimatedValue"`
	EstimatedGain  string `json:"estimatedGain"`
}
