package views

import (
	"time"

	"github.com/fundlane/fundlane/pkg/models"
)

// MandateRequest creates a new standing bank authorization.
type MandateRequest struct {
	Nickname string `json:"nickname" binding:"required"`
	Bank     string `json:"bank" binding:"required"`
	Limit    string `json:"limit" binding:"required"`
}

// MandateToggleRequest flips a mandate between active and paused.
type MandateToggleRequest struct {
	ID string `json:"id" binding:"required"`
}

type MandateResponse struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	Bank      string    `json:"bank"`
	Limit     string    `json:"limit"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func ToMandateResponse(m models.Mandate) MandateResponse {
	return MandateResponse{
		ID:        m.ID.String(),
		Nickname:  m.Nickname,
		Bank:      m.Bank,
		Limit:     m.Limit.StringFixed(2),
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

func ToMandateResponses(mandates []models.Mandate) []MandateResponse {
	out := make([]MandateResponse, 0, len(mandates))
	for _, m := range mandates {
		out = append(out, ToMandateResponse(m))
	}
	return out
}
