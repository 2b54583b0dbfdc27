package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agrovision/backend/internal/models"
)

// MemoryStorage is the in-memory Storage used for development and tests.
type MemoryStorage struct {
	mu       sync.RWMutex
	messages []*models.ChatMessage
	farms    map[string]*models.Farm
	analyses map[string][]*models.SatelliteAnalysis
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		farms:    make(map[string]*models.Farm),
		analyses: make(map[string][]*models.SatelliteAnalysis),
	}
}

func (s *MemoryStorage) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *msg
	s.messages = append(s.messages, &saved)
	return nil
}

func (s *MemoryStorage) History(ctx context.Context, farmID string, limit int) ([]*models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.ChatMessage{}
	for _, msg := range s.messages {
		if msg.FarmID == farmID {
			result = append(result, msg)
		}
	}

	// Newest first
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MemoryStorage) CreateFarm(ctx context.Context, farm *models.Farm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	farm.CreatedAt = now
	farm.UpdatedAt = now
	saved := *farm
	s.farms[farm.ID] = &saved
	return nil
}

func (s *MemoryStorage) GetFarm(ctx context.Context, id string) (*models.Farm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if farm, exists := s.farms[id]; exists {
		copied := *farm
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) ListFarms(ctx context.Context, userID string, limit int) ([]*models.Farm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.Farm{}
	for _, farm := range s.farms {
		if farm.UserID == userID {
			copied := *farm
			result = append(result, &copied)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MemoryStorage) UpdateFarm(ctx context.Context, farm *models.Farm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.farms[farm.ID]; !exists {
		return ErrNotFound
	}

	farm.UpdatedAt = time.Now()
	saved := *farm
	s.farms[farm.ID] = &saved
	return nil
}

func (s *MemoryStorage) DeleteFarm(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.farms[id]; !exists {
		return ErrNotFound
	}

	delete(s.farms, id)
	delete(s.analyses, id)
	return nil
}

func (s *MemoryStorage) SaveAnalysis(ctx context.Context, analysis *models.SatelliteAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *analysis
	s.analyses[analysis.FarmID] = append(s.analyses[analysis.FarmID], &saved)
	return nil
}

func (s *MemoryStorage) LatestAnalysis(ctx context.Context, farmID string) (*models.SatelliteAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.analyses[farmID]
	if len(list) == 0 {
		return nil, ErrNotFound
	}

	latest := list[0]
	for _, a := range list[1:] {
		if a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	copied := *latest
	return &copied, nil
}

func (s *MemoryStorage) Trend(ctx context.Context, farmID string, limit int) ([]models.TrendPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.analyses[farmID]
	points := make([]models.TrendPoint, 0, len(list))
	for _, a := range list {
		points = append(points, models.TrendPoint{Date: a.CreatedAt, Value: a.NDVI})
	}

	// Oldest first
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	return points, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
