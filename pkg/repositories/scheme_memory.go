package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/models"
)

// MemorySchemeRepository keeps the fund catalog in process for memory-backed
// runs and tests.
type MemorySchemeRepository struct {
	mu      sync.RWMutex
	schemes map[int]models.Scheme
	navs    map[int][]models.NavPoint
}

func NewMemorySchemeRepository() *MemorySchemeRepository {
	return &MemorySchemeRepository{
		schemes: make(map[int]models.Scheme),
		navs:    make(map[int][]models.NavPoint),
	}
}

func (r *MemorySchemeRepository) Upsert(ctx context.Context, s models.Scheme) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemes[s.SchemeCode] = s
	return nil
}

func (r *MemorySchemeRepository) UpsertNavs(ctx context.Context, schemeCode int, points []models.NavPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byDate := make(map[string]models.NavPoint, len(r.navs[schemeCode])+len(points))
	for _, p := range r.navs[schemeCode] {
		byDate[p.Date.Format("2006-01-02")] = p
	}
	for _, p := range points {
		byDate[p.Date.Format("2006-01-02")] = p
	}

	merged := make([]models.NavPoint, 0, len(byDate))
	for _, p := range byDate {
		merged = append(merged, p)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.After(merged[j].Date) })
	r.navs[schemeCode] = merged
	return nil
}

func (r *MemorySchemeRepository) FindByCode(ctx context.Context, schemeCode int) (models.Scheme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemes[schemeCode]
	if !ok {
		return models.Scheme{}, pkg.ErrSchemeNotFound
	}
	return s, nil
}

func (r *MemorySchemeRepository) List(ctx context.Context, filter models.SchemeFilter) ([]models.Scheme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var schemes []models.Scheme
	for _, s := range r.schemes {
		if filter.FundHouse != "" && s.FundHouse != filter.FundHouse {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(s.SchemeName), strings.ToLower(filter.Search)) {
			continue
		}
		schemes = append(schemes, s)
	}
	sort.Slice(schemes, func(i, j int) bool {
		if schemes[i].SchemeName != schemes[j].SchemeName {
			return schemes[i].SchemeName < schemes[j].SchemeName
		}
		return schemes[i].SchemeCode < schemes[j].SchemeCode
	})
	return schemes, nil
}

func (r *MemorySchemeRepository) NavHistory(ctx context.Context, schemeCode int, limit int) ([]models.NavPoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	points := r.navs[schemeCode]
	if limit > 0 && len(points) > limit {
		points = points[:limit]
	}
	out := make([]models.NavPoint, len(points))
	copy(out, points)
	return out, nil
}
