package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names.
const (
	CollectionQuizResponses = "quiz_responses"
	CollectionUserProgress  = "user_progress"
	CollectionLeads         = "leads"
	CollectionAppointments  = "appointments"
	CollectionOffers        = "offers"
	CollectionChatMessages  = "chat_messages"
	CollectionAdminUsers    = "admin_users"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// ConnectDB initializes and returns a MongoDB client and database instance.
func ConnectDB(uri, dbName string, logger *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("db", dbName))
	return client, client.Database(dbName), nil
}

// DisconnectDB closes the MongoDB client connection.
func DisconnectDB(client *mongo.Client, logger *zap.Logger) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	logger.Info("MongoDB connection closed")
	return nil
}

// EnsureIndexes creates the indexes the services query by. It is safe to run
// on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionQuizResponses: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "session_id", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		CollectionLeads: {
			{Keys: bson.D{{Key: "source", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollectionAppointments: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "preferred_date", Value: 1}}},
		},
		CollectionOffers: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollectionChatMessages: {
			{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "_id", Value: 1}}},
		},
		CollectionAdminUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// InsertOne inserts doc into the named collection.
func InsertOne[T any](ctx context.Context, db *mongo.Database, collection string, doc *T) error {
	if _, err := db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return nil
}

// FindOne decodes the first document matching filter. A missing document is
// reported as ErrNotFound.
func FindOne[T any](ctx context.Context, db *mongo.Database, collection string, filter interface{}) (*T, error) {
	var out T
	err := db.Collection(collection).FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	return &out, nil
}

// FindMany decodes every document matching filter.
func FindMany[T any](ctx context.Context, db *mongo.Database, collection string, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := db.Collection(collection).Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return out, nil
}
