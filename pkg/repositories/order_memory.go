package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/models"
)

// MemoryOrderRepository is the in-process order store used when the service
// runs without PostgreSQL (STORE_BACKEND=memory) and by tests. All operations
// take the mutex for the full read-modify-write, so concurrent status updates
// on the same id cannot lose writes.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]models.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[uuid.UUID]models.Order)}
}

func (r *MemoryOrderRepository) Create(ctx context.Context, order models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *MemoryOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return models.Order{}, pkg.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (r *MemoryOrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []models.Order
	for _, order := range r.orders {
		if filter.UserID != uuid.Nil && order.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		orders = append(orders, cloneOrder(order))
	}
	// Newest first, ties broken on id so pagination stays stable.
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID.String() < orders[j].ID.String()
	})
	return orders, nil
}

func (r *MemoryOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status pkg.OrderStatus, now time.Time) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return models.Order{}, pkg.ErrOrderNotFound
	}
	// Checked under the lock so two racing updates cannot both observe
	// processing and both commit.
	if !pkg.CanTransition(order.Status, status) {
		return models.Order{}, pkg.ErrTransitionBlocked
	}
	order.Status = status
	order.UpdatedAt = now
	r.orders[id] = order
	return cloneOrder(order), nil
}

func (r *MemoryOrderRepository) MarkReceiptSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return pkg.ErrOrderNotFound
	}
	if order.ReceiptEmailSentAt != nil {
		return nil // stamped at most once
	}
	t := sentAt
	order.ReceiptEmailSentAt = &t
	r.orders[id] = order
	return nil
}

// cloneOrder deep-copies the one pointer field so callers cannot reach into
// stored state.
func cloneOrder(o models.Order) models.Order {
	if o.ReceiptEmailSentAt != nil {
		t := *o.ReceiptEmailSentAt
		o.ReceiptEmailSentAt = &t
	}
	return o
}
