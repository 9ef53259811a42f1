package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"homepath/api/internal/db"
	"homepath/api/internal/journey"
	"homepath/api/internal/logging"
	"homepath/api/internal/metrics"
	"homepath/api/internal/models"
	"homepath/api/internal/sms"
	"homepath/api/internal/utils"
)

// LeadInput is the body of a lead capture request.
type LeadInput struct {
	Name        string                 `json:"name" binding:"required,max=120"`
	PhoneNumber string                 `json:"phoneNumber" binding:"required"`
	Email       string                 `json:"email" binding:"omitempty,email"`
	Source      models.LeadSource      `json:"source" binding:"required,oneof=landing mortgage incentives pricing blog properties calculator guide"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// ListFilter pages through admin listings, newest first.
type ListFilter struct {
	Status string     `form:"status"`
	Source string     `form:"source"`
	From   *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To     *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
	Limit  int        `form:"limit" binding:"gte=0,lte=200"`
	Offset int        `form:"offset" binding:"gte=0"`
}

const defaultListLimit = 50

func (f ListFilter) findOptions() *options.FindOptions {
	limit := f.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(f.Offset))
}

func (f ListFilter) createdRange(filter bson.M) {
	r := bson.M{}
	if f.From != nil {
		r["$gte"] = *f.From
	}
	if f.To != nil {
		r["$lt"] = f.To.Add(24 * time.Hour)
	}
	if len(r) > 0 {
		filter["created_at"] = r
	}
}

// ILeadService captures and lists leads.
type ILeadService interface {
	Create(ctx context.Context, in LeadInput) (*models.Lead, error)
	List(ctx context.Context, f ListFilter) ([]models.Lead, error)
}

type leadService struct {
	db       *mongo.Database
	notifier INotifier
	logger   *zap.Logger
}

// NewLeadService creates a new LeadService.
func NewLeadService(db *mongo.Database, notifier INotifier, logger *zap.Logger) ILeadService {
	return &leadService{db: db, notifier: notifier, logger: logger.Named("leads")}
}

// Create validates and inserts a lead, then queues the agent notification.
func (s *leadService) Create(ctx context.Context, in LeadInput) (*models.Lead, error) {
	phone, err := sms.NormalizePhone(in.PhoneNumber)
	if err != nil {
		return nil, &journey.ValidationError{Fields: map[string]string{"phoneNumber": err.Error()}}
	}

	lead := &models.Lead{
		Name:        strings.TrimSpace(in.Name),
		PhoneNumber: phone,
		Email:       strings.TrimSpace(in.Email),
		Source:      in.Source,
		Metadata:    in.Metadata,
		CreatedAt:   time.Now().UTC(),
	}
	op := func() error {
		lead.ID = utils.NewID()
		return db.InsertOne(ctx, s.db, db.CollectionLeads, lead)
	}
	if err := db.Try(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to store lead: %w", err)
	}

	metrics.LeadsCreated.WithLabelValues(string(lead.Source)).Inc()
	s.logger.Info("lead captured",
		zap.String("lead_id", lead.ID),
		zap.String("source", string(lead.Source)),
		zap.String("phone", logging.MaskPhone(phone)))

	if err := s.notifier.LeadCreated(ctx, lead); err != nil {
		s.logger.Warn("failed to queue lead notification", zap.String("lead_id", lead.ID), zap.Error(err))
	}
	return lead, nil
}

// List returns leads matching f.
func (s *leadService) List(ctx context.Context, f ListFilter) ([]models.Lead, error) {
	filter := bson.M{}
	if f.Source != "" {
		filter["source"] = f.Source
	}
	f.createdRange(filter)
	return db.FindMany[models.Lead](ctx, s.db, db.CollectionLeads, filter, f.findOptions())
}
