package storage

import (
	"context"
	"errors"

	"github.com/agrovision/backend/internal/models"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("not found")

// ChatStore is the append-only chat session store. Saves never overwrite
// prior turns; history reads are stateless.
type ChatStore interface {
	SaveMessage(ctx context.Context, msg *models.ChatMessage) error
	History(ctx context.Context, farmID string, limit int) ([]*models.ChatMessage, error)
}

type FarmStore interface {
	CreateFarm(ctx context.Context, farm *models.Farm) error
	GetFarm(ctx context.Context, id string) (*models.Farm, error)
	ListFarms(ctx context.Context, userID string, limit int) ([]*models.Farm, error)
	UpdateFarm(ctx context.Context, farm *models.Farm) error
	DeleteFarm(ctx context.Context, id string) error
}

type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, analysis *models.SatelliteAnalysis) error
	LatestAnalysis(ctx context.Context, farmID string) (*models.SatelliteAnalysis, error)
	Trend(ctx context.Context, farmID string, limit int) ([]models.TrendPoint, error)
}

type Storage interface {
	ChatStore
	FarmStore
	AnalysisStore
	Close() error
}
