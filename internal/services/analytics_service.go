package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"homepath/api/internal/db"
)

// AnalyticsSummary is the admin dashboard's overview.
type AnalyticsSummary struct {
	TotalLeads             int64            `json:"totalLeads"`
	LeadsBySource          map[string]int64 `json:"leadsBySource"`
	AppointmentsByStatus   map[string]int64 `json:"appointmentsByStatus"`
	OffersByStatus         map[string]int64 `json:"offersByStatus"`
	QuizSubmissions        int64            `json:"quizSubmissions"`
	AverageAffordablePrice float64          `json:"averageAffordablePrice"`
	Since                  *time.Time       `json:"since,omitempty"`
	GeneratedAt            time.Time        `json:"generatedAt"`
}

// IAnalyticsService aggregates back-office figures.
type IAnalyticsService interface {
	Summary(ctx context.Context, since *time.Time) (*AnalyticsSummary, error)
}

type analyticsService struct {
	db *mongo.Database
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(db *mongo.Database) IAnalyticsService {
	return &analyticsService{db: db}
}

// Summary counts leads, appointments, offers and quiz responses created
// since the given time, or all of them when since is nil.
func (s *analyticsService) Summary(ctx context.Context, since *time.Time) (*AnalyticsSummary, error) {
	out := &AnalyticsSummary{Since: since, GeneratedAt: time.Now().UTC()}
	var err error

	if out.LeadsBySource, err = s.countBy(ctx, db.CollectionLeads, "source", since); err != nil {
		return nil, err
	}
	for _, n := range out.LeadsBySource {
		out.TotalLeads += n
	}
	if out.AppointmentsByStatus, err = s.countBy(ctx, db.CollectionAppointments, "status", since); err != nil {
		return nil, err
	}
	if out.OffersByStatus, err = s.countBy(ctx, db.CollectionOffers, "status", since); err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		matchSince(since),
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"count": bson.M{"$sum": 1},
			"avg":   bson.M{"$avg": "$calculated_breakdown.affordable_price"},
		}}},
	}
	var quiz []struct {
		Count int64   `bson:"count"`
		Avg   float64 `bson:"avg"`
	}
	if err := aggregate(ctx, s.db, db.CollectionQuizResponses, pipeline, &quiz); err != nil {
		return nil, err
	}
	if len(quiz) > 0 {
		out.QuizSubmissions = quiz[0].Count
		out.AverageAffordablePrice = quiz[0].Avg
	}
	return out, nil
}

func (s *analyticsService) countBy(ctx context.Context, collection, field string, since *time.Time) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		matchSince(since),
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
	}
	var rows []struct {
		Key   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := aggregate(ctx, s.db, collection, pipeline, &rows); err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Count
	}
	return out, nil
}

func matchSince(since *time.Time) bson.D {
	if since == nil {
		return bson.D{{Key: "$match", Value: bson.M{}}}
	}
	return bson.D{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": *since}}}}
}

func aggregate(ctx context.Context, database *mongo.Database, collection string, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := database.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("failed to aggregate %s: %w", collection, err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s aggregate: %w", collection, err)
	}
	return nil
}
