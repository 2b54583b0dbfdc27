package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agrovision/backend/internal/classifier"
	"github.com/agrovision/backend/internal/models"
	"github.com/agrovision/backend/internal/storage"
)

type failingChatStore struct {
	saveErr error
	saved   []*models.ChatMessage
}

func (s *failingChatStore) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, msg)
	return nil
}

func (s *failingChatStore) History(ctx context.Context, farmID string, limit int) ([]*models.ChatMessage, error) {
	return s.saved, nil
}

func newTestService(chats storage.ChatStore) *Service {
	logger := zap.NewNop()
	farms := &stubFarms{farm: testFarm()}
	analyses := &stubAnalyses{
		analysis: &models.SatelliteAnalysis{FarmID: "farm-1", NDVI: 0.72, HealthScore: 85},
	}
	ws := &stubWeather{current: &models.Weather{Temperature: 28}}

	contexts := NewContextBuilder(farms, analyses, ws, time.Second, 2*time.Second, logger)
	generator := NewGenerator(nil, "test-model", 500, 0.3, time.Second, logger)
	return NewService(classifier.NewRuleClassifier(), contexts, generator, chats, logger)
}

func TestRespondFullTurn(t *testing.T) {
	chats := &failingChatStore{}
	svc := newTestService(chats)

	msg, err := svc.Respond(context.Background(), Request{
		UserID:  "user-1",
		FarmID:  "farm-1",
		Message: "How is my crop doing?",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, models.IntentHealthCheck, msg.Intent)
	assert.NotEmpty(t, msg.Confidence)
	assert.NotEmpty(t, msg.ResponseText)
	assert.GreaterOrEqual(t, len(msg.Suggestions), 1)
	assert.LessOrEqual(t, len(msg.Suggestions), 5)

	require.Len(t, chats.saved, 1)
	assert.Equal(t, msg.ID, chats.saved[0].ID)
}

func TestRespondHealthTierFromContext(t *testing.T) {
	svc := newTestService(&failingChatStore{})

	// HealthScore is 85 in the stub analysis, so the rule-based response
	// lands in the top tier.
	msg, err := svc.Respond(context.Background(), Request{
		UserID:  "user-1",
		FarmID:  "farm-1",
		Message: "How is my crop doing?",
	})
	require.NoError(t, err)
	assert.Contains(t, msg.ResponseText, "good health")
	assert.Contains(t, msg.ResponseText, "85/100")
}

func TestRespondPersistenceFailureStillResponds(t *testing.T) {
	chats := &failingChatStore{saveErr: errors.New("db down")}
	svc := newTestService(chats)

	msg, err := svc.Respond(context.Background(), Request{
		UserID:  "user-1",
		FarmID:  "farm-1",
		Message: "How is my crop doing?",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ResponseText)
	assert.Empty(t, chats.saved)
}

func TestRespondEmptyMessage(t *testing.T) {
	svc := newTestService(&failingChatStore{})

	_, err := svc.Respond(context.Background(), Request{UserID: "user-1"})
	assert.Error(t, err)
}

func TestRespondYellowingScenario(t *testing.T) {
	svc := newTestService(&failingChatStore{})

	msg, err := svc.Respond(context.Background(), Request{
		UserID:  "user-1",
		FarmID:  "farm-1",
		Message: "My wheat crop leaves are yellowing, what should I do?",
	})
	require.NoError(t, err)

	assert.Equal(t, models.IntentProblemDiagnosis, msg.Intent)
	assert.Equal(t, "wheat", msg.Entities[classifier.EntityCropType])
	assert.Contains(t, msg.ResponseText, "nitrogen deficiency")
	assert.Equal(t, SourceRuleBased, msg.Source)
}
