package repository

import (
	"context"
	"fmt"
	"time"

	reservationerrors "roomtime/internal/reservations/errors"
	"roomtime/pkg/config"
	"roomtime/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const lockCollectionName = "Resource_locks"

// ResourceLockRepository implements the per-resource serialization point as
// advisory lock documents. Inserting the document with the resource-derived
// _id acquires the lock; a duplicate-key error means it is held. Locks are
// scoped to resource_id only, so admissions on different resources never
// contend.
type ResourceLockRepository interface {
	// TryAcquire returns ErrLockHeld when another admission holds the lock.
	TryAcquire(ctx context.Context, resourceID string) (*model.ResourceLock, error)
	Release(ctx context.Context, lockID string) error
}

type mongoResourceLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewResourceLockRepository(cfg *config.Config) ResourceLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoResourceLockRepository{
		cfg:        cfg,
		collection: db.Collection(lockCollectionName),
	}
}

func lockID(resourceID string) string {
	return "resource_lock_" + resourceID
}

func (r *mongoResourceLockRepository) TryAcquire(ctx context.Context, resourceID string) (*model.ResourceLock, error) {
	now := time.Now().UTC()
	lock := &model.ResourceLock{
		ID:         lockID(resourceID),
		ResourceID: resourceID,
		ExpiresAt:  now.Add(r.cfg.LockTTL),
		CreatedAt:  now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, reservationerrors.ErrLockHeld
		}
		return nil, fmt.Errorf("failed to acquire resource lock: %w", err)
	}

	return lock, nil
}

func (r *mongoResourceLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	if err != nil {
		return fmt.Errorf("failed to release resource lock: %w", err)
	}
	return nil
}

// EnsureLockIndexes creates the TTL index that reaps locks abandoned by a
// crashed holder once expires_at passes.
func EnsureLockIndexes(ctx context.Context, cfg *config.Config) error {
	collection := cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(lockCollectionName)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("failed to create lock TTL index: %w", err)
	}
	return nil
}
