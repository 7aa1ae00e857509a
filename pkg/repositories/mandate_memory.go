package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/models"
)

// MemoryMandateRepository mirrors PgMandateRepository for memory-backed runs
// and tests. The mutex spans the full toggle so concurrent flips on the same
// mandate cannot lose updates.
type MemoryMandateRepository struct {
	mu       sync.RWMutex
	mandates map[uuid.UUID]models.Mandate
}

func NewMemoryMandateRepository() *MemoryMandateRepository {
	return &MemoryMandateRepository{mandates: make(map[uuid.UUID]models.Mandate)}
}

func (r *MemoryMandateRepository) Create(ctx context.Context, mandate models.Mandate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mandates[mandate.ID] = mandate
	return nil
}

func (r *MemoryMandateRepository) List(ctx context.Context, userID uuid.UUID) ([]models.Mandate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var mandates []models.Mandate
	for _, m := range r.mandates {
		if m.UserID != userID {
			continue
		}
		mandates = append(mandates, m)
	}
	sort.Slice(mandates, func(i, j int) bool {
		if !mandates[i].CreatedAt.Equal(mandates[j].CreatedAt) {
			return mandates[i].CreatedAt.After(mandates[j].CreatedAt)
		}
		return mandates[i].ID.String() < mandates[j].ID.String()
	})
	return mandates, nil
}

func (r *MemoryMandateRepository) ToggleStatus(ctx context.Context, userID uuid.UUID, id uuid.UUID) (models.Mandate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mandates[id]
	if !ok || m.UserID != userID {
		return models.Mandate{}, pkg.ErrMandateNotFound
	}
	m.Status = m.Status.Toggle()
	r.mandates[id] = m
	return m, nil
}
