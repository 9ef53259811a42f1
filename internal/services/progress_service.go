package services

import (
	"context"
	"errors"
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
)

// IProgressService reads and writes journey progress records.
type IProgressService interface {
	Get(ctx context.Context, id string) (*models.UserProgress, error)
	UpsertMilestone(ctx context.Context, id, milestoneID string, status models.MilestoneStatus, data map[string]interface{}) (*models.UserProgress, error)
	CompleteMilestone(ctx context.Context, id, milestoneID string, data map[string]interface{}) (*models.UserProgress, error)
}

type progressService struct {
	db     *mongo.Database
	logger *zap.Logger
	now    func() time.Time
}

// NewProgressService creates a new ProgressService.
func NewProgressService(db *mongo.Database, logger *zap.Logger) IProgressService {
	return &progressService{db: db, logger: logger.Named("progress"), now: func() time.Time { return time.Now().UTC() }}
}

// Get returns the progress record for id, or ErrNotFound.
func (s *progressService) Get(ctx context.Context, id string) (*models.UserProgress, error) {
	return db.FindOne[models.UserProgress](ctx, s.db, db.CollectionUserProgress, bson.M{"_id": id})
}

// CompleteMilestone marks milestoneID completed.
func (s *progressService) CompleteMilestone(ctx context.Context, id, milestoneID string, data map[string]interface{}) (*models.UserProgress, error) {
	return s.UpsertMilestone(ctx, id, milestoneID, models.MilestoneCompleted, data)
}

// UpsertMilestone sets one milestone entry and recomputes overall progress.
// Completed is terminal: moving a completed milestone to any other status
// fails with ErrInvalidTransition. It reads the whole record and writes it back without a version check, so
// concurrent writers for the same id race and the last one wins.
func (s *progressService) UpsertMilestone(ctx context.Context, id, milestoneID string, status models.MilestoneStatus, data map[string]interface{}) (*models.UserProgress, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: progress id is required", ErrNotFound)
	}
	if !journey.IsMilestone(milestoneID) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMilestone, milestoneID)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	var progress *models.UserProgress
	op := func() error {
		current, err := s.Get(ctx, id)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return err
		}
		progress, err = s.apply(current, id, milestoneID, status, data)
		if err != nil {
			return err
		}

		_, err = s.db.Collection(db.CollectionUserProgress).ReplaceOne(ctx,
			bson.M{"_id": id}, progress, options.Replace().SetUpsert(true))
		return err
	}
	if err := db.Try(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to update milestone %s for %s: %w", milestoneID, id, err)
	}

	if status == models.MilestoneCompleted {
		metrics.MilestonesCompleted.WithLabelValues(milestoneID).Inc()
	}
	s.logger.Debug("milestone updated",
		zap.String("progress_id", id),
		zap.String("milestone", milestoneID),
		zap.String("status", string(status)),
		zap.Float64("overall", progress.OverallProgress))
	return progress, nil
}

func (s *progressService) apply(current *models.UserProgress, id, milestoneID string, status models.MilestoneStatus, data map[string]interface{}) (*models.UserProgress, error) {
	now := s.now()
	progress := current
	if progress == nil {
		progress = &models.UserProgress{ID: id, CreatedAt: now}
	}
	if progress.Milestones == nil {
		progress.Milestones = map[string]models.MilestoneEntry{}
	}

	entry := progress.Milestones[milestoneID]
	wasCompleted := entry.Status == models.MilestoneCompleted
	if wasCompleted && status != models.MilestoneCompleted {
		return nil, fmt.Errorf("%w: %s is completed", ErrInvalidTransition, milestoneID)
	}
	entry.Status = status
	entry.UpdatedAt = now
	if len(data) > 0 {
		if entry.Data == nil {
			entry.Data = map[string]interface{}{}
		}
		for k, v := range data {
			entry.Data[k] = v
		}
	}
	if status == models.MilestoneCompleted && !wasCompleted {
		entry.CompletedAt = &now
	}
	progress.Milestones[milestoneID] = entry

	progress.OverallProgress = journey.OverallProgress(progress)
	progress.UpdatedAt = now
	return progress, nil
}
