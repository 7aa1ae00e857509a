package views

// RiskQuestionResponse is one questionnaire entry with its scored options.
type RiskQuestionResponse struct {
	ID      string               `json:"id"`
	Text    string               `json:"text"`
	Options []RiskOptionResponse `json:"options"`
}

type RiskOptionResponse struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// RiskProfileRequest maps question id -> chosen option index.
type RiskProfileRequest struct {
	Answers map[string]int `json:"answers" binding:"required"`
}

type RiskProfileResponse struct {
	Score         int    `json:"score"`
	Profile       string `json:"profile"`
	EquityPercent int    `json:"equityPercent"`
	DebtPercent   int    `json:"debtPercent"`
	Summary       string `json:"summary"`
}
