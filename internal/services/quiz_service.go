package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"homepath/api/internal/db"
	"homepath/api/internal/journey"
	"homepath/api/internal/metrics"
	"homepath/api/internal/models"
	"homepath/api/internal/utils"
)

// QuizSubmission is the body of a quiz submit request. At least one of
// UserID and SessionID identifies the client.
type QuizSubmission struct {
	QuizData  models.QuizData `json:"quizData" binding:"required"`
	UserID    string          `json:"userId"`
	SessionID string          `json:"sessionId"`
}

// ProgressID is the id the client's journey progress is stored under.
func (q QuizSubmission) ProgressID() string {
	if q.UserID != "" {
		return q.UserID
	}
	return q.SessionID
}

// IQuizService stores quiz responses with their derived figures.
type IQuizService interface {
	Submit(ctx context.Context, sub QuizSubmission) (resp *models.QuizResponse, milestoneUpdated bool, err error)
	FindByID(ctx context.Context, id string) (*models.QuizResponse, error)
}

type quizService struct {
	db       *mongo.Database
	progress IProgressService
	logger   *zap.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(db *mongo.Database, progress IProgressService, logger *zap.Logger) IQuizService {
	return &quizService{db: db, progress: progress, logger: logger.Named("quiz")}
}

// Submit computes the affordability breakdown and incentives, upserts the
// client's quiz response and then completes the quiz milestone. The second
// write is independent: its failure is logged and reported through
// milestoneUpdated, never rolled back.
func (s *quizService) Submit(ctx context.Context, sub QuizSubmission) (*models.QuizResponse, bool, error) {
	if sub.ProgressID() == "" {
		return nil, false, &journey.ValidationError{Fields: map[string]string{"userId": "userId or sessionId is required"}}
	}

	q := sub.QuizData
	breakdown, err := journey.CalculateAffordability(q.Income, q.Savings, q.HasRRSP)
	if err != nil {
		return nil, false, err
	}
	incentives := journey.CalculateIncentives(breakdown, breakdown.AffordablePrice, q.IsNewBuild, q.HasRRSP)

	// A signed-in client may already have an anonymous response for the
	// same session; that record is adopted rather than duplicated.
	var filter bson.M
	switch {
	case sub.UserID != "" && sub.SessionID != "":
		filter = bson.M{"$or": bson.A{bson.M{"user_id": sub.UserID}, bson.M{"session_id": sub.SessionID}}}
	case sub.UserID != "":
		filter = bson.M{"user_id": sub.UserID}
	default:
		filter = bson.M{"session_id": sub.SessionID}
	}

	var stored models.QuizResponse
	op := func() error {
		now := time.Now().UTC()
		set := bson.M{
			"quiz_data":             q,
			"calculated_breakdown":  breakdown,
			"calculated_incentives": incentives,
			"updated_at":            now,
		}
		if sub.UserID != "" {
			set["user_id"] = sub.UserID
		}
		if sub.SessionID != "" {
			set["session_id"] = sub.SessionID
		}
		update := bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"_id": utils.NewID(), "created_at": now},
		}
		opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
		return s.db.Collection(db.CollectionQuizResponses).FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	}
	if err := db.Try(ctx, op); err != nil {
		return nil, false, fmt.Errorf("failed to store quiz response: %w", err)
	}
	metrics.QuizSubmissions.Inc()

	milestoneUpdated := true
	_, err = s.progress.CompleteMilestone(ctx, sub.ProgressID(), journey.StepQuiz, map[string]interface{}{
		"quizResponseId":  stored.ID,
		"affordablePrice": breakdown.AffordablePrice,
	})
	if err != nil {
		milestoneUpdated = false
		s.logger.Error("quiz stored but milestone not updated",
			zap.String("quiz_response_id", stored.ID), zap.Error(err))
	}
	return &stored, milestoneUpdated, nil
}

// FindByID looks a quiz response up by its own id, user id or session id.
func (s *quizService) FindByID(ctx context.Context, id string) (*models.QuizResponse, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"_id": id},
		bson.M{"user_id": id},
		bson.M{"session_id": id},
	}}
	return db.FindOne[models.QuizResponse](ctx, s.db, db.CollectionQuizResponses, filter)
}
