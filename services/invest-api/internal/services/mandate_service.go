package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/models"
	"github.com/fundlane/fundlane/pkg/repositories"
	"github.com/fundlane/fundlane/services/invest-api/internal/views"
)

type MandateService interface {
	CreateMandate(ctx context.Context, userID uuid.UUID, req views.MandateRequest) (views.MandateResponse, error)
	ListMandates(ctx context.Context, userID uuid.UUID) ([]views.MandateResponse, error)
	// ToggleMandate flips active/paused and returns the mandate's new state.
	ToggleMandate(ctx context.Context, userID uuid.UUID, id uuid.UUID) (views.MandateResponse, error)
}

type MandateServiceImpl struct {
	logger   *zap.Logger
	mandates repositories.MandateRepository
	now      func() time.Time
}

func NewMandateService(logger *zap.Logger, mandates repositories.MandateRepository) MandateService {
	return &MandateServiceImpl{
		logger:   logger,
		mandates: mandates,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *MandateServiceImpl) CreateMandate(ctx context.Context, userID uuid.UUID, req views.MandateRequest) (views.MandateResponse, error) {
	limit, err := decimal.NewFromString(req.Limit)
	if err != nil || !limit.IsPositive() {
		return views.MandateResponse{}, pkg.NewAppError(pkg.ErrInvalidInputCode, "limit must be a positive decimal", err)
	}
	mandate := models.Mandate{
		ID:        uuid.New(),
		UserID:    userID,
		Nickname:  req.Nickname,
		Bank:      req.Bank,
		Limit:     limit,
		Status:    pkg.MandateStatusActive,
		CreatedAt: s.now(),
	}
	if err := s.mandates.Create(ctx, mandate); err != nil {
		return views.MandateResponse{}, err
	}
	s.logger.Info("mandate created",
		zap.String("mandateId", mandate.ID.String()),
		zap.String("userId", userID.String()),
		zap.String("bank", mandate.Bank),
	)
	return views.ToMandateResponse(mandate), nil
}

func (s *MandateServiceImpl) ListMandates(ctx context.Context, userID uuid.UUID) ([]views.MandateResponse, error) {
	mandates, err := s.mandates.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return views.ToMandateResponses(mandates), nil
}

func (s *MandateServiceImpl) ToggleMandate(ctx context.Context, userID uuid.UUID, id uuid.UUID) (views.MandateResponse, error) {
	mandate, err := s.mandates.ToggleStatus(ctx, userID, id)
	if err != nil {
		return views.MandateResponse{}, err
	}
	s.logger.Info("mandate toggled",
		zap.String("mandateId", id.String()),
		zap.String("status", string(mandate.Status)),
	)
	return views.ToMandateResponse(mandate), nil
}
