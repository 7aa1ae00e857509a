package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/models"
)

func newOrder(userID uuid.UUID, createdAt time.Time) models.Order {
	return models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		SchemeCode:    120503,
		SchemeName:    "Axis Bluechip Fund Direct Plan Growth",
		FundHouse:     "Axis Mutual Fund",
		Nav:           decimal.RequireFromString("58.41"),
		OrderType:     pkg.OrderTypeLumpsum,
		Amount:        decimal.RequireFromString("5000"),
		PaymentMethod: "upi",
		Status:        pkg.OrderStatusProcessing,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestMemoryOrderRepository_CreateAndFind(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	order := newOrder(uuid.New(), time.Now().UTC())

	require.NoError(t, repo.Create(ctx, order))

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, pkg.OrderStatusProcessing, got.Status)
	assert.True(t, got.Amount.Equal(order.Amount))
}

func TestMemoryOrderRepository_FindUnknown(t *testing.T) {
	repo := NewMemoryOrderRepository()

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, pkg.ErrOrderNotFound)
}

func TestMemoryOrderRepository_ListNewestFirst(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	userID := uuid.New()
	base := time.Now().UTC()

	oldest := newOrder(userID, base.Add(-2*time.Hour))
	middle := newOrder(userID, base.Add(-time.Hour))
	newest := newOrder(userID, base)
	for _, o := range []models.Order{middle, oldest, newest} {
		require.NoError(t, repo.Create(ctx, o))
	}

	got, err := repo.List(ctx, models.OrderFilter{UserID: userID})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, newest.ID, got[0].ID)
	assert.Equal(t, middle.ID, got[1].ID)
	assert.Equal(t, oldest.ID, got[2].ID)
}

func TestMemoryOrderRepository_ListFilters(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()
	now := time.Now().UTC()

	executed := newOrder(alice, now)
	executed.Status = pkg.OrderStatusExecuted
	require.NoError(t, repo.Create(ctx, executed))
	require.NoError(t, repo.Create(ctx, newOrder(alice, now)))
	require.NoError(t, repo.Create(ctx, newOrder(bob, now)))

	byUser, err := repo.List(ctx, models.OrderFilter{UserID: alice})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byStatus, err := repo.List(ctx, models.OrderFilter{UserID: alice, Status: pkg.OrderStatusExecuted})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, executed.ID, byStatus[0].ID)
}

func TestMemoryOrderRepository_UpdateStatus(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	order := newOrder(uuid.New(), time.Now().UTC().Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, order))

	now := time.Now().UTC()
	got, err := repo.UpdateStatus(ctx, order.ID, pkg.OrderStatusExecuted, now)
	require.NoError(t, err)
	assert.Equal(t, pkg.OrderStatusExecuted, got.Status)
	assert.Equal(t, now, got.UpdatedAt)
	assert.Equal(t, order.CreatedAt, got.CreatedAt)

	_, err = repo.UpdateStatus(ctx, uuid.New(), pkg.OrderStatusExecuted, now)
	assert.ErrorIs(t, err, pkg.ErrOrderNotFound)
}

func TestMemoryOrderRepository_UpdateStatusTerminalBlocked(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	order := newOrder(uuid.New(), time.Now().UTC().Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, order))

	settled := time.Now().UTC()
	_, err := repo.UpdateStatus(ctx, order.ID, pkg.OrderStatusExecuted, settled)
	require.NoError(t, err)

	_, err = repo.UpdateStatus(ctx, order.ID, pkg.OrderStatusFailed, settled.Add(time.Second))
	assert.ErrorIs(t, err, pkg.ErrTransitionBlocked)

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, pkg.OrderStatusExecuted, got.Status)
	assert.Equal(t, settled, got.UpdatedAt)
}

func TestMemoryOrderRepository_UpdateStatusConcurrent(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	order := newOrder(uuid.New(), time.Now().UTC().Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, order))

	targets := []pkg.OrderStatus{pkg.OrderStatusExecuted, pkg.OrderStatusFailed}
	results := make(chan error, len(targets))
	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(to pkg.OrderStatus) {
			defer wg.Done()
			_, err := repo.UpdateStatus(ctx, order.ID, to, time.Now().UTC())
			results <- err
		}(target)
	}
	wg.Wait()
	close(results)

	var won, blocked int
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, pkg.ErrTransitionBlocked):
			blocked++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// Exactly one writer settles the order; the other loses the race.
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, blocked)

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Contains(t, targets, got.Status)
}

func TestMemoryOrderRepository_MarkReceiptSentOnce(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	order := newOrder(uuid.New(), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, order))

	first := time.Now().UTC()
	require.NoError(t, repo.MarkReceiptSent(ctx, order.ID, first))
	// Redelivery must not move the stamp.
	require.NoError(t, repo.MarkReceiptSent(ctx, order.ID, first.Add(time.Hour)))

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReceiptEmailSentAt)
	assert.Equal(t, first, *got.ReceiptEmailSentAt)
}

func TestMemoryOrderRepository_ReturnsDetachedCopies(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	order := newOrder(uuid.New(), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, order))
	require.NoError(t, repo.MarkReceiptSent(ctx, order.ID, time.Now().UTC()))

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	stamp := *got.ReceiptEmailSentAt
	*got.ReceiptEmailSentAt = stamp.Add(24 * time.Hour)
	got.Status = pkg.OrderStatusFailed

	reread, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, pkg.OrderStatusProcessing, reread.Status)
	assert.Equal(t, stamp, *reread.ReceiptEmailSentAt)
}
