package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"homepath/api/internal/db"
	"homepath/api/internal/journey"
	"homepath/api/internal/models"
	"homepath/api/internal/utils"
)

func sampleQuiz() models.QuizData {
	return models.QuizData{
		Income:       100000,
		Savings:      50000,
		HasRRSP:      false,
		PropertyType: models.PropertyCondo,
		Timeline:     models.Timeline3To6,
	}
}

func cents(v float64) int64 { return int64(math.Round(v * 100)) }

func TestQuizService_SubmitRequiresClientID(t *testing.T) {
	s := NewQuizService(nil, new(mockProgressService), zap.NewNop())
	_, _, err := s.Submit(context.Background(), QuizSubmission{QuizData: sampleQuiz()})

	var verr *journey.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "userId")
}

func TestQuizService_SubmitAndFind(t *testing.T) {
	database := utils.SetupTestDB(t, "testdb_quiz_service", db.CollectionQuizResponses, db.CollectionUserProgress)
	s := NewQuizService(database, NewProgressService(database, zap.NewNop()), zap.NewNop())
	ctx := context.Background()

	resp, milestoneUpdated, err := s.Submit(ctx, QuizSubmission{QuizData: sampleQuiz(), SessionID: "session-1"})
	require.NoError(t, err)
	assert.True(t, milestoneUpdated)

	b := resp.CalculatedBreakdown
	assert.Greater(t, b.AffordablePrice, 0.0)
	assert.Equal(t, cents(b.AffordablePrice), cents(b.Mortgage)+cents(b.DownPayment)+cents(b.ClosingCosts)+cents(b.Buffer))

	// Re-submission overwrites the same record.
	q := sampleQuiz()
	q.Savings = 80000
	again, _, err := s.Submit(ctx, QuizSubmission{QuizData: q, SessionID: "session-1"})
	require.NoError(t, err)
	assert.Equal(t, resp.ID, again.ID)
	assert.Greater(t, again.CalculatedBreakdown.AffordablePrice, b.AffordablePrice)

	for _, id := range []string{resp.ID, "session-1"} {
		found, err := s.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, resp.ID, found.ID)
	}
	_, err = s.FindByID(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	progress, err := NewProgressService(database, zap.NewNop()).Get(ctx, "session-1")
	require.NoError(t, err)
	status, ok := progress.StoredStatus(journey.StepQuiz)
	assert.True(t, ok)
	assert.Equal(t, models.MilestoneCompleted, status)
}

func TestQuizService_MilestoneFailureIsReported(t *testing.T) {
	database := utils.SetupTestDB(t, "testdb_quiz_service_partial", db.CollectionQuizResponses)
	progress := new(mockProgressService)
	progress.On("CompleteMilestone", mock.Anything, "user-1", journey.StepQuiz, mock.Anything).
		Return(nil, assert.AnError)

	s := NewQuizService(database, progress, zap.NewNop())
	resp, milestoneUpdated, err := s.Submit(context.Background(), QuizSubmission{QuizData: sampleQuiz(), UserID: "user-1"})
	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.False(t, milestoneUpdated)
	progress.AssertExpectations(t)
}
