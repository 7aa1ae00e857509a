package services

import (
	"fmt"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/services/invest-api/internal/views"
)

// riskQuestion holds one questionnaire entry. Option order is the score:
// index 0 scores 0 points, index 1 scores 1, and so on.
type riskQuestion struct {
	id      string
	text    string
	options []string
}

var riskQuestions = []riskQuestion{
	{
		id:   "horizon",
		text: "How long do you plan to stay invested?",
		options: []string{
			"Under 1 year",
			"1 to 3 years",
			"3 to 7 years",
			"More than 7 years",
		},
	},
	{
		id:   "drawdown",
		text: "Your portfolio drops 20% in a month. What do you do?",
		options: []string{
			"Sell everything",
			"Sell a part and wait",
			"Hold and do nothing",
			"Buy more at the lower price",
		},
	},
	{
		id:   "income",
		text: "How stable is your income?",
		options: []string{
			"Irregular",
			"Somewhat stable",
			"Stable",
			"Stable with surplus to invest",
		},
	},
	{
		id:   "experience",
		text: "How familiar are you with market-linked products?",
		options: []string{
			"None",
			"Fixed deposits and gold only",
			"Some mutual funds",
			"Stocks, funds and derivatives",
		},
	},
	{
		id:   "goal",
		text: "What is the primary goal for this money?",
		options: []string{
			"Capital protection",
			"Regular income",
			"Balanced growth",
			"Maximum long-term growth",
		},
	},
}

// riskBucket maps a score range to a profile and a model allocation.
type riskBucket struct {
	minScore      int
	profile       string
	equityPercent int
	summary       string
}

// Buckets are checked highest-first; with 5 questions of up to 3 points the
// score range is 0..15.
var riskBuckets = []riskBucket{
	{11, "aggressive", 75, "Comfortable with volatility; equity-heavy allocation suits your horizon."},
	{6, "moderate", 50, "Balanced mix of growth and stability across equity and debt."},
	{0, "conservative", 25, "Capital preservation first; debt-heavy allocation with a small equity kicker."},
}

type RiskService interface {
	Questions() []views.RiskQuestionResponse
	// ScoreProfile validates and scores a full answer set.
	ScoreProfile(req views.RiskProfileRequest) (views.RiskProfileResponse, error)
}

type RiskServiceImpl struct{}

func NewRiskService() RiskService {
	return &RiskServiceImpl{}
}

func (s *RiskServiceImpl) Questions() []views.RiskQuestionResponse {
	out := make([]views.RiskQuestionResponse, 0, len(riskQuestions))
	for _, q := range riskQuestions {
		options := make([]views.RiskOptionResponse, 0, len(q.options))
		for i, text := range q.options {
			options = append(options, views.RiskOptionResponse{Index: i, Text: text})
		}
		out = append(out, views.RiskQuestionResponse{ID: q.id, Text: q.text, Options: options})
	}
	return out
}

func (s *RiskServiceImpl) ScoreProfile(req views.RiskProfileRequest) (views.RiskProfileResponse, error) {
	score := 0
	for _, q := range riskQuestions {
		answer, ok := req.Answers[q.id]
		if !ok {
			return views.RiskProfileResponse{}, pkg.NewAppError(pkg.ErrInvalidInputCode,
				fmt.Sprintf("missing answer for question %q", q.id), nil)
		}
		if answer < 0 || answer >= len(q.options) {
			return views.RiskProfileResponse{}, pkg.NewAppError(pkg.ErrInvalidInputCode,
				fmt.Sprintf("answer for question %q out of range", q.id), nil)
		}
		score += answer
	}
	if len(req.Answers) != len(riskQuestions) {
		return views.RiskProfileResponse{}, pkg.NewAppError(pkg.ErrInvalidInputCode,
			"answers contain unknown question ids", nil)
	}

	for _, b := range riskBuckets {
		if score >= b.minScore {
			return views.RiskProfileResponse{
				Score:         score,
				Profile:       b.profile,
				EquityPercent: b.equityPercent,
				DebtPercent:   100 - b.equityPercent,
				Summary:       b.summary,
			}, nil
		}
	}
	// Unreachable: the last bucket starts at zero.
	return views.RiskProfileResponse{}, pkg.NewAppError(pkg.ErrServerCode, "risk score out of range", nil)
}
