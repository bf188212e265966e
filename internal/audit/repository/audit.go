package repository

import (
	"context"
	"fmt"
	"time"

	"roomtime/pkg/config"
	"roomtime/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Audit_logs"
)

// AuditRepository persists audit events consumed from the audit topic.
// The log is append-only.
type AuditRepository interface {
	Insert(ctx context.Context, event *model.AuditEvent) error
	FindByEntityID(ctx context.Context, entityID string, limit int) ([]*model.AuditEvent, error)
}

type mongoAuditRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAuditRepository(cfg *config.Config) AuditRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAuditRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoAuditRepository) Insert(ctx context.Context, event *model.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Redelivered message, already recorded.
			return nil
		}
		return fmt.Errorf("failed to insert audit event: %w", err)
	}

	return nil
}

func (r *mongoAuditRepository) FindByEntityID(ctx context.Context, entityID string, limit int) ([]*model.AuditEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"entity_id": entityID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*model.AuditEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode audit events: %w", err)
	}

	return events, nil
}

// EnsureIndexes creates the audit query indexes.
func EnsureIndexes(ctx context.Context, cfg *config.Config) error {
	collection := cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "entity_id", Value: 1},
				{Key: "at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "actor", Value: 1},
				{Key: "at", Value: -1},
			},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create audit indexes: %w", err)
	}

	return nil
}
