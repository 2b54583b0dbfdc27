package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovision/backend/internal/models"
)

func TestMemoryChatHistoryNewestFirst(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 3; i++ {
		err := store.SaveMessage(ctx, &models.ChatMessage{
			ID:           fmt.Sprintf("msg-%d", i),
			UserID:       "user-1",
			FarmID:       "farm-1",
			Message:      fmt.Sprintf("question %d", i),
			ResponseText: "answer",
			Intent:       models.IntentGeneralInfo,
			Confidence:   models.ConfidenceLow,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	history, err := store.History(ctx, "farm-1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "msg-2", history[0].ID)
	assert.Equal(t, "msg-1", history[1].ID)
}

func TestMemoryChatHistoryEmptyForUnknownFarm(t *testing.T) {
	store := NewMemoryStorage()

	history, err := store.History(context.Background(), "no-such-farm", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.NotNil(t, history)
}

func TestMemoryChatHistoryFiltersByFarm(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, store.SaveMessage(ctx, &models.ChatMessage{ID: "a", FarmID: "farm-1", CreatedAt: time.Now()}))
	require.NoError(t, store.SaveMessage(ctx, &models.ChatMessage{ID: "b", FarmID: "farm-2", CreatedAt: time.Now()}))

	history, err := store.History(ctx, "farm-1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "a", history[0].ID)
}

func TestMemoryFarmCRUD(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	farm := &models.Farm{
		ID:       "farm-1",
		UserID:   "user-1",
		Name:     "Green Valley",
		CropType: "rice",
		Latitude: 17.45,
	}
	require.NoError(t, store.CreateFarm(ctx, farm))

	got, err := store.GetFarm(ctx, "farm-1")
	require.NoError(t, err)
	assert.Equal(t, "Green Valley", got.Name)
	assert.False(t, got.CreatedAt.IsZero())

	got.Name = "North Field"
	require.NoError(t, store.UpdateFarm(ctx, got))

	updated, err := store.GetFarm(ctx, "farm-1")
	require.NoError(t, err)
	assert.Equal(t, "North Field", updated.Name)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))

	farms, err := store.ListFarms(ctx, "user-1", 10)
	require.NoError(t, err)
	assert.Len(t, farms, 1)

	require.NoError(t, store.DeleteFarm(ctx, "farm-1"))
	_, err = store.GetFarm(ctx, "farm-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryFarmNotFound(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	_, err := store.GetFarm(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.UpdateFarm(ctx, &models.Farm{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.DeleteFarm(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryLatestAnalysis(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	base := time.Now()
	for i, ndvi := range []float64{0.5, 0.6, 0.7} {
		require.NoError(t, store.SaveAnalysis(ctx, &models.SatelliteAnalysis{
			ID:        fmt.Sprintf("an-%d", i),
			FarmID:    "farm-1",
			NDVI:      ndvi,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	latest, err := store.LatestAnalysis(ctx, "farm-1")
	require.NoError(t, err)
	assert.Equal(t, 0.7, latest.NDVI)

	_, err = store.LatestAnalysis(ctx, "farm-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTrendOldestFirstWithLimit(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	base := time.Now()
	for i, ndvi := range []float64{0.4, 0.5, 0.6, 0.7} {
		require.NoError(t, store.SaveAnalysis(ctx, &models.SatelliteAnalysis{
			ID:        fmt.Sprintf("an-%d", i),
			FarmID:    "farm-1",
			NDVI:      ndvi,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	trend, err := store.Trend(ctx, "farm-1", 3)
	require.NoError(t, err)
	require.Len(t, trend, 3)
	assert.Equal(t, 0.5, trend[0].Value)
	assert.Equal(t, 0.7, trend[2].Value)
	assert.True(t, trend[0].Date.Before(trend[2].Date))
}
