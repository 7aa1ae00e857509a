package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/models"
	"github.com/fundlane/fundlane/pkg/repositories"
	"github.com/fundlane/fundlane/pkg/views"
	apiviews "github.com/fundlane/fundlane/services/invest-api/internal/views"
)

// capturePublisher records published receipt jobs.
type capturePublisher struct {
	mu   sync.Mutex
	jobs []views.ReceiptJob
	err  error
}

func (p *capturePublisher) Publish(job views.ReceiptJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *capturePublisher) Close() {}

func (p *capturePublisher) published() []views.ReceiptJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]views.ReceiptJob(nil), p.jobs...)
}

func validOrderRequest() apiviews.OrderRequest {
	return apiviews.OrderRequest{
		SchemeCode:    120503,
		SchemeName:    "Axis Bluechip Fund Direct Plan Growth",
		FundHouse:     "Axis Mutual Fund",
		Nav:           "58.41",
		OrderType:     "lumpsum",
		Amount:        "5000",
		PaymentMethod: "upi",
	}
}

func newOrderServiceForTest() (OrderService, *repositories.MemoryOrderRepository, *capturePublisher) {
	repo := repositories.NewMemoryOrderRepository()
	publisher := &capturePublisher{}
	return NewOrderService(zap.NewNop(), repo, publisher), repo, publisher
}

func TestPlaceOrder_Defaults(t *testing.T) {
	svc, _, _ := newOrderServiceForTest()
	userID := uuid.New()

	got, err := svc.PlaceOrder(context.Background(), "trace-1", userID, validOrderRequest())
	require.NoError(t, err)

	assert.Equal(t, string(pkg.OrderStatusProcessing), got.Status)
	assert.Equal(t, userID.String(), got.UserID)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
	assert.Nil(t, got.ReceiptEmailSentAt)
	assert.NotEmpty(t, got.ID)
}

func TestPlaceOrder_UniqueIDs(t *testing.T) {
	svc, _, _ := newOrderServiceForTest()
	userID := uuid.New()

	first, err := svc.PlaceOrder(context.Background(), "trace-1", userID, validOrderRequest())
	require.NoError(t, err)
	second, err := svc.PlaceOrder(context.Background(), "trace-1", userID, validOrderRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestPlaceOrder_Validation(t *testing.T) {
	svc, _, _ := newOrderServiceForTest()
	userID := uuid.New()

	cases := []struct {
		name   string
		mutate func(*apiviews.OrderRequest)
	}{
		{"zero amount", func(r *apiviews.OrderRequest) { r.Amount = "0" }},
		{"negative amount", func(r *apiviews.OrderRequest) { r.Amount = "-100" }},
		{"malformed amount", func(r *apiviews.OrderRequest) { r.Amount = "5,000" }},
		{"malformed nav", func(r *apiviews.OrderRequest) { r.Nav = "abc" }},
		{"negative nav", func(r *apiviews.OrderRequest) { r.Nav = "-1" }},
		{"sip without frequency", func(r *apiviews.OrderRequest) { r.OrderType = "sip" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validOrderRequest()
			tc.mutate(&req)

			_, err := svc.PlaceOrder(context.Background(), "trace-1", userID, req)
			var appErr pkg.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, pkg.ErrInvalidInputCode.Code, appErr.Code.Code)
		})
	}
}

func TestPlaceOrder_SipWithFrequency(t *testing.T) {
	svc, _, _ := newOrderServiceForTest()

	req := validOrderRequest()
	req.OrderType = "sip"
	req.Frequency = "monthly"
	req.SIPStartDate = "2026-09-01"

	got, err := svc.PlaceOrder(context.Background(), "trace-1", uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, "monthly", got.Frequency)
}

func TestUpdateStatus_ExecutedPublishesReceipt(t *testing.T) {
	svc, _, publisher := newOrderServiceForTest()
	userID := uuid.New()
	placed, err := svc.PlaceOrder(context.Background(), "trace-1", userID, validOrderRequest())
	require.NoError(t, err)
	orderID := uuid.MustParse(placed.ID)

	got, err := svc.UpdateStatus(context.Background(), "trace-1", userID, orderID, pkg.OrderStatusExecuted)
	require.NoError(t, err)
	assert.Equal(t, string(pkg.OrderStatusExecuted), got.Status)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))

	jobs := publisher.published()
	require.Len(t, jobs, 1)
	assert.Equal(t, placed.ID, jobs[0].OrderID)
	assert.Equal(t, userID.String(), jobs[0].UserID)
}

func TestUpdateStatus_FailedDoesNotPublish(t *testing.T) {
	svc, _, publisher := newOrderServiceForTest()
	userID := uuid.New()
	placed, err := svc.PlaceOrder(context.Background(), "trace-1", userID, validOrderRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), "trace-1", userID, uuid.MustParse(placed.ID), pkg.OrderStatusFailed)
	require.NoError(t, err)
	assert.Empty(t, publisher.published())
}

func TestUpdateStatus_TerminalRejected(t *testing.T) {
	svc, _, _ := newOrderServiceForTest()
	userID := uuid.New()
	placed, err := svc.PlaceOrder(context.Background(), "trace-1", userID, validOrderRequest())
	require.NoError(t, err)
	orderID := uuid.MustParse(placed.ID)

	_, err = svc.UpdateStatus(context.Background(), "trace-1", userID, orderID, pkg.OrderStatusExecuted)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), "trace-1", userID, orderID, pkg.OrderStatusFailed)
	var appErr pkg.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkg.ErrTerminalStatusCode.Code, appErr.Code.Code)
}

func TestUpdateStatus_ConcurrentSettlesOnce(t *testing.T) {
	svc, repo, publisher := newOrderServiceForTest()
	userID := uuid.New()
	placed, err := svc.PlaceOrder(context.Background(), "trace-1", userID, validOrderRequest())
	require.NoError(t, err)
	orderID := uuid.MustParse(placed.ID)

	targets := []pkg.OrderStatus{pkg.OrderStatusExecuted, pkg.OrderStatusFailed}
	results := make(chan error, len(targets))
	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(to pkg.OrderStatus) {
			defer wg.Done()
			_, err := svc.UpdateStatus(context.Background(), "trace-1", userID, orderID, to)
			results <- err
		}(target)
	}
	wg.Wait()
	close(results)

	var won int
	for err := range results {
		if err == nil {
			won++
			continue
		}
		var appErr pkg.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, pkg.ErrTerminalStatusCode.Code, appErr.Code.Code)
	}
	require.Equal(t, 1, won)

	final, err := repo.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Contains(t, targets, final.Status)
	// The receipt goes out only if the executed writer won.
	if final.Status == pkg.OrderStatusExecuted {
		assert.Len(t, publisher.published(), 1)
	} else {
		assert.Empty(t, publisher.published())
	}
}

func TestUpdateStatus_UnknownOrder(t *testing.T) {
	svc, _, _ := newOrderServiceForTest()

	_, err := svc.UpdateStatus(context.Background(), "trace-1", uuid.Nil, uuid.New(), pkg.OrderStatusExecuted)
	assert.ErrorIs(t, err, pkg.ErrOrderNotFound)
}

func TestUpdateStatus_ForeignOrderReadsAsNotFound(t *testing.T) {
	svc, _, _ := newOrderServiceForTest()
	owner := uuid.New()
	placed, err := svc.PlaceOrder(context.Background(), "trace-1", owner, validOrderRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), "trace-1", uuid.New(), uuid.MustParse(placed.ID), pkg.OrderStatusExecuted)
	assert.ErrorIs(t, err, pkg.ErrOrderNotFound)
}

func TestUpdateStatus_PublishFailureDoesNotRollBack(t *testing.T) {
	repo := repositories.NewMemoryOrderRepository()
	publisher := &capturePublisher{err: errors.New("broker down")}
	svc := NewOrderService(zap.NewNop(), repo, publisher)
	userID := uuid.New()

	placed, err := svc.PlaceOrder(context.Background(), "trace-1", userID, validOrderRequest())
	require.NoError(t, err)

	got, err := svc.UpdateStatus(context.Background(), "trace-1", userID, uuid.MustParse(placed.ID), pkg.OrderStatusExecuted)
	require.NoError(t, err)
	assert.Equal(t, string(pkg.OrderStatusExecuted), got.Status)

	stored, err := repo.FindByID(context.Background(), uuid.MustParse(placed.ID))
	require.NoError(t, err)
	assert.Equal(t, pkg.OrderStatusExecuted, stored.Status)
}

func TestGetOrder_OwnershipScoping(t *testing.T) {
	svc, _, _ := newOrderServiceForTest()
	owner := uuid.New()
	placed, err := svc.PlaceOrder(context.Background(), "trace-1", owner, validOrderRequest())
	require.NoError(t, err)
	orderID := uuid.MustParse(placed.ID)

	_, err = svc.GetOrder(context.Background(), owner, orderID)
	assert.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), uuid.New(), orderID)
	assert.ErrorIs(t, err, pkg.ErrOrderNotFound)

	// uuid.Nil reads across users (seller view).
	_, err = svc.GetOrder(context.Background(), uuid.Nil, orderID)
	assert.NoError(t, err)
}

func TestListOrders_FilterByStatus(t *testing.T) {
	svc, _, _ := newOrderServiceForTest()
	userID := uuid.New()

	placed, err := svc.PlaceOrder(context.Background(), "trace-1", userID, validOrderRequest())
	require.NoError(t, err)
	_, err = svc.PlaceOrder(context.Background(), "trace-1", userID, validOrderRequest())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), "trace-1", userID, uuid.MustParse(placed.ID), pkg.OrderStatusExecuted)
	require.NoError(t, err)

	all, err := svc.ListOrders(context.Background(), models.OrderFilter{UserID: userID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	executed, err := svc.ListOrders(context.Background(), models.OrderFilter{UserID: userID, Status: pkg.OrderStatusExecuted})
	require.NoError(t, err)
	require.Len(t, executed, 1)
	assert.Equal(t, placed.ID, executed[0].ID)
}
