package services

import (
	"github.com/shopspring/decimal"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/services/invest-api/internal/views"
)

var hundred = decimal.NewFromInt(100)

type CalculatorService interface {
	// SIPFutureValue projects a recurring instalment with instalments
	// invested at the start of each period (annuity-due).
	SIPFutureValue(req views.SIPRequest) (views.CalculatorResponse, error)
	// LumpsumFutureValue compounds a single investment annually.
	LumpsumFutureValue(req views.LumpsumRequest) (views.CalculatorResponse, error)
}

type CalculatorServiceImpl struct{}

func NewCalculatorService() CalculatorService {
	return &CalculatorServiceImpl{}
}

func (s *CalculatorServiceImpl) SIPFutureValue(req views.SIPRequest) (views.CalculatorResponse, error) {
	instalment, err := decimal.NewFromString(req.Instalment)
	if err != nil || !instalment.IsPositive() {
		return views.CalculatorResponse{}, pkg.NewAppError(pkg.ErrInvalidInputCode, "instalment must be a positive decimal", err)
	}
	annualRate, err := parseReturnRate(req.ExpectedAnnualReturn)
	if err != nil {
		return views.CalculatorResponse{}, err
	}
	perYear, ok := pkg.InstalmentsPerYear[pkg.Frequency(req.Frequency)]
	if !ok {
		return views.CalculatorResponse{}, pkg.NewAppError(pkg.ErrInvalidInputCode, "unknown frequency", nil)
	}

	// FV = P * ((1+i)^n - 1) / i * (1+i), i = periodic rate, n = instalments.
	n := perYear * req.Years
	i := annualRate.Div(hundred).Div(decimal.NewFromInt(int64(perYear)))
	invested := instalment.Mul(decimal.NewFromInt(int64(n)))

	var futureValue decimal.Decimal
	if i.IsZero() {
		futureValue = invested
	} else {
		onePlusI := decimal.NewFromInt(1).Add(i)
		growth := onePlusI.Pow(decimal.NewFromInt(int64(n))).Sub(decimal.NewFromInt(1))
		futureValue = instalment.Mul(growth).Div(i).Mul(onePlusI)
	}
	return toCalculatorResponse(invested, futureValue), nil
}

func (s *CalculatorServiceImpl) LumpsumFutureValue(req views.LumpsumRequest) (views.CalculatorResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return views.CalculatorResponse{}, pkg.NewAppError(pkg.ErrInvalidInputCode, "amount must be a positive decimal", err)
	}
	annualRate, err := parseReturnRate(req.ExpectedAnnualReturn)
	if err != nil {
		return views.CalculatorResponse{}, err
	}

	// FV = P * (1+r)^t
	r := annualRate.Div(hundred)
	futureValue := amount.Mul(decimal.NewFromInt(1).Add(r).Pow(decimal.NewFromInt(int64(req.Years))))
	return toCalculatorResponse(amount, futureValue), nil
}

// parseReturnRate accepts an annual percentage between 0 and 100.
func parseReturnRate(s string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(s)
	if err != nil || rate.IsNegative() || rate.GreaterThan(hundred) {
		return decimal.Decimal{}, pkg.NewAppError(pkg.ErrInvalidInputCode, "expectedAnnualReturn must be a percentage between 0 and 100", err)
	}
	return rate, nil
}

func toCalculatorResponse(invested, futureValue decimal.Decimal) views.CalculatorResponse {
	return views.CalculatorResponse{
		Invested:       invested.StringFixed(2),
		EstimatedValue: futureValue.StringFixed(2),
		EstimatedGain:  futureValue.Sub(invested).StringFixed(2),
	}
}
