package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/models"
	"github.com/fundlane/fundlane/pkg/repositories"
	"github.com/fundlane/fundlane/services/invest-api/internal/views"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, traceId string, userID uuid.UUID, req views.OrderRequest) (views.OrderResponse, error)
	GetOrder(ctx context.Context, userID uuid.UUID, id uuid.UUID) (views.OrderResponse, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]views.OrderResponse, error)
	UpdateStatus(ctx context.Context, traceId string, userID uuid.UUID, id uuid.UUID, status pkg.OrderStatus) (views.OrderResponse, error)
}

type OrderServiceImpl struct {
	logger    *zap.Logger
	orders    repositories.OrderRepository
	publisher ReceiptPublisher
	now       func() time.Time
}

func NewOrderService(logger *zap.Logger, orders repositories.OrderRepository, publisher ReceiptPublisher) OrderService {
	return &OrderServiceImpl{
		logger:    logger,
		orders:    orders,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *OrderServiceImpl) PlaceOrder(ctx context.Context, traceId string, userID uuid.UUID, req views.OrderRequest) (views.OrderResponse, error) {
	nav, err := decimal.NewFromString(req.Nav)
	if err != nil || nav.IsNegative() {
		return views.OrderResponse{}, pkg.NewAppError(pkg.ErrInvalidInputCode, "nav must be a non-negative decimal", err)
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return views.OrderResponse{}, pkg.NewAppError(pkg.ErrInvalidInputCode, "amount must be a positive decimal", err)
	}
	orderType := pkg.OrderType(req.OrderType)
	if orderType == pkg.OrderTypeSIP && req.Frequency == "" {
		return views.OrderResponse{}, pkg.NewAppError(pkg.ErrInvalidInputCode, "frequency is required for sip orders", nil)
	}

	now := s.now()
	order := models.Order{
		ID:                uuid.New(),
		UserID:            userID,
		SchemeCode:        req.SchemeCode,
		SchemeName:        req.SchemeName,
		FundHouse:         req.FundHouse,
		Nav:               nav,
		OrderType:         orderType,
		Amount:            amount,
		Frequency:         pkg.Frequency(req.Frequency),
		SIPStartDate:      req.SIPStartDate,
		PayoutAccount:     req.PayoutAccount,
		TargetScheme:      req.TargetScheme,
		TransferStartDate: req.TransferStartDate,
		PaymentMethod:     req.PaymentMethod,
		PaymentGateway:    req.PaymentGateway,
		PaymentReference:  req.PaymentReference,
		Status:            pkg.OrderStatusProcessing,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return views.OrderResponse{}, err
	}
	s.logger.Info("order placed",
		zap.String(pkg.TraceId, traceId),
		zap.String(pkg.OrderId, order.ID.String()),
		zap.String("userId", userID.String()),
		zap.Int("schemeCode", order.SchemeCode),
		zap.String("orderType", string(order.OrderType)),
		zap.String("amount", order.Amount.StringFixed(2)),
	)
	return views.ToOrderResponse(order), nil
}

func (s *OrderServiceImpl) GetOrder(ctx context.Context, userID uuid.UUID, id uuid.UUID) (views.OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return views.OrderResponse{}, err
	}
	// Customers may only read their own orders; sellers pass uuid.Nil.
	if userID != uuid.Nil && order.UserID != userID {
		return views.OrderResponse{}, pkg.ErrOrderNotFound
	}
	return views.ToOrderResponse(order), nil
}

func (s *OrderServiceImpl) ListOrders(ctx context.Context, filter models.OrderFilter) ([]views.OrderResponse, error) {
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return views.ToOrderResponses(orders), nil
}

// UpdateStatus moves an order out of processing. Terminal orders reject any
// further transition. A move to executed enqueues the receipt email; the
// enqueue is best-effort and never rolls the transition back.
func (s *OrderServiceImpl) UpdateStatus(ctx context.Context, traceId string, userID uuid.UUID, id uuid.UUID, status pkg.OrderStatus) (views.OrderResponse, error) {
	current, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return views.OrderResponse{}, err
	}
	if userID != uuid.Nil && current.UserID != userID {
		return views.OrderResponse{}, pkg.ErrOrderNotFound
	}
	if !pkg.CanTransition(current.Status, status) {
		return views.OrderResponse{}, pkg.NewAppError(pkg.ErrTerminalStatusCode,
			"order status "+string(current.Status)+" cannot change to "+string(status), nil)
	}

	updated, err := s.orders.UpdateStatus(ctx, id, status, s.now())
	if errors.Is(err, pkg.ErrTransitionBlocked) {
		// Lost a race with a concurrent update that settled the order
		// after our read. Same outcome as reading a terminal status.
		return views.OrderResponse{}, pkg.NewAppError(pkg.ErrTerminalStatusCode,
			"order status cannot change to "+string(status), err)
	}
	if err != nil {
		return views.OrderResponse{}, err
	}
	s.logger.Info("order status updated",
		zap.String(pkg.TraceId, traceId),
		zap.String(pkg.OrderId, id.String()),
		zap.String("from", string(current.Status)),
		zap.String("to", string(status)),
	)

	if status == pkg.OrderStatusExecuted {
		if err := s.publisher.Publish(updated.ToReceiptJob()); err != nil {
			s.logger.Error("failed to enqueue receipt",
				zap.String(pkg.TraceId, traceId),
				zap.String(pkg.OrderId, id.String()),
				zap.Error(err))
		}
	}
	return views.ToOrderResponse(updated), nil
}
