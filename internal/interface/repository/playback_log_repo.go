package repository

import (
	"context"
	"time"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultHistoryLimit = 50

// MongoPlaybackLogRepository implements PlaybackLogRepository
type MongoPlaybackLogRepository struct {
	collection *mongo.Collection
}

// NewMongoPlaybackLogRepository creates a new playback log repository
func NewMongoPlaybackLogRepository(db *mongo.Database) repository.PlaybackLogRepository {
	collection := db.Collection("playback_logs")

	// Index for per-flight history queries
	ctx := context.Background()
	historyIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "flightId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
	}
	collection.Indexes().CreateOne(ctx, historyIndex)

	return &MongoPlaybackLogRepository{
		collection: collection,
	}
}

// Save inserts an audit entry
func (r *MongoPlaybackLogRepository) Save(ctx context.Context, entry *entity.PlaybackLog) error {
	if entry.ID == "" {
		entry.ID = primitive.NewObjectID().Hex()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// FindByFlight returns the newest entries of a flight
func (r *MongoPlaybackLogRepository) FindByFlight(ctx context.Context, flightID uint, limit int) ([]*entity.PlaybackLog, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"flightId": flightID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*entity.PlaybackLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// NopPlaybackLogRepository discards entries when no audit store is configured
type NopPlaybackLogRepository struct{}

// NewNopPlaybackLogRepository creates a playback log repository that stores nothing
func NewNopPlaybackLogRepository() repository.PlaybackLogRepository {
	return NopPlaybackLogRepository{}
}

func (NopPlaybackLogRepository) Save(context.Context, *entity.PlaybackLog) error {
	return nil
}

func (NopPlaybackLogRepository) FindByFlight(context.Context, uint, int) ([]*entity.PlaybackLog, error) {
	return []*entity.PlaybackLog{}, nil
}
