// internal/app/store/cleanup/cleanupstore.go
package cleanupstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/robacademy/robohub/internal/domain/models"
)

// Store wraps the identity_cleanup queue worked by operators after account
// deletion.
type Store struct {
	coll *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{coll: db.Collection("identity_cleanup")}
}

// Enqueue records that userID's external identity still needs removal.
func (s *Store) Enqueue(ctx context.Context, userID, requestedBy primitive.ObjectID, email string) (models.IdentityCleanupTask, error) {
	task := models.IdentityCleanupTask{
		ID:          primitive.NewObjectID(),
		Token:       uuid.NewString(),
		UserID:      userID,
		Email:       email,
		RequestedBy: requestedBy,
		RequestedAt: time.Now().UTC(),
	}
	if _, err := s.coll.InsertOne(ctx, task); err != nil {
		return models.IdentityCleanupTask{}, fmt.Errorf("enqueue cleanup task: %w", err)
	}
	return task, nil
}

// ListPending returns unworked tasks oldest first.
func (s *Store) ListPending(ctx context.Context) ([]models.IdentityCleanupTask, error) {
	opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{"done": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("find cleanup tasks: %w", err)
	}
	defer cur.Close(ctx)

	var tasks []models.IdentityCleanupTask
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode cleanup tasks: %w", err)
	}
	return tasks, nil
}

// MarkDone closes the task identified by its operator token.
func (s *Store) MarkDone(ctx context.Context, token string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"token": token},
		bson.M{"$set": bson.M{"done": true}},
	)
	if err != nil {
		return fmt.Errorf("mark cleanup task done: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count cleanup tasks: %w", err)
	}
	return n, nil
}
