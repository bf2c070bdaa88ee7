package repository

import (
	"context"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/repository"
	"wanderlust-service/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFetchLogRepository implements FetchLogRepository
type MongoFetchLogRepository struct {
	collection *mongo.Collection
}

// NewMongoFetchLogRepository creates a new provider fetch log repository.
// Index creation failures are logged; the repository still works without them.
func NewMongoFetchLogRepository(db *mongo.Database, logger logger.Logger) repository.FetchLogRepository {
	collection := db.Collection("provider_fetches")

	// Create index on provider and time for recent-history queries
	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "provider", Value: 1}, {Key: "fetchedAt", Value: -1}},
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn("Failed to create fetch log index", "index", "provider_fetchedAt", "error", err)
	}

	// Expire entries after 30 days
	ttlIndex := mongo.IndexModel{
		Keys:    bson.M{"fetchedAt": 1},
		Options: options.Index().SetExpireAfterSeconds(int32((30 * 24 * time.Hour).Seconds())),
	}
	if _, err := collection.Indexes().CreateOne(ctx, ttlIndex); err != nil {
		logger.Warn("Failed to create fetch log index", "index", "fetchedAt_ttl", "error", err)
	}

	return &MongoFetchLogRepository{
		collection: collection,
	}
}

// Record stores one provider attempt
func (r *MongoFetchLogRepository) Record(ctx context.Context, log *entity.FetchLog) error {
	if log.FetchedAt.IsZero() {
		log.FetchedAt = time.Now().UTC()
	}
	if log.ID == "" {
		log.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.collection.InsertOne(ctx, log)
	return err
}

// Recent returns the latest attempts against a provider
func (r *MongoFetchLogRepository) Recent(ctx context.Context, provider string, limit int64) ([]entity.FetchLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fetchedAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"provider": provider}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []entity.FetchLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
