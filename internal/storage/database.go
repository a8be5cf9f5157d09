package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/flathunt/internal/listing"
	"github.com/IshaanNene/flathunt/internal/types"
)

// MongoStorage upserts listings into a MongoDB collection keyed by URL, so
// repeated crawls refresh existing documents instead of duplicating them.
type MongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	mu         sync.Mutex
	count      int
	logger     *slog.Logger
}

// NewMongoStorage creates a new MongoDB storage backend.
func NewMongoStorage(uri, database, collection string, logger *slog.Logger) (*MongoStorage, error) {
	if uri == "" {
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("mongo_uri is not set")}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("connect: %w", err)}
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("ping: %w", err)}
	}

	return &MongoStorage{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_storage"),
	}, nil
}

func (s *MongoStorage) Name() string { return "mongodb" }

func (s *MongoStorage) Store(listings []*listing.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(listings))
	for _, l := range listings {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": l.URL}).
			SetReplacement(listingDocument(l, now)).
			SetUpsert(true))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("bulk write: %w", err)}
	}

	s.count += len(listings)
	s.logger.Debug("listings stored in mongodb",
		"upserted", res.UpsertedCount,
		"modified", res.ModifiedCount,
		"total", s.count,
	)
	return nil
}

func (s *MongoStorage) Close() error {
	s.logger.Info("mongodb storage closing", "total_listings", s.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func listingDocument(l *listing.Listing, seenAt time.Time) bson.M {
	return bson.M{
		"_id":         l.URL,
		"url":         l.URL,
		"name":        l.Name,
		"district":    l.District,
		"description": l.Description,
		"rent":        l.Rent,
		"utilities":   l.Utilities,
		"total_rent":  l.TotalRent(),
		"rooms":       l.Rooms,
		"area":        l.Area,
		"last_seen":   seenAt,
	}
}
