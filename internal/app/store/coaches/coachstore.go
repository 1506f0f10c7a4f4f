// internal/app/store/coaches/coachstore.go
package coachstore

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/robacademy/robohub/internal/domain/models"
)

// Store wraps the coaches collection. A coach profile shares its _id with
// the user it belongs to, so inserts and deletes are keyed by user ID.
type Store struct {
	coll *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{coll: db.Collection("coaches")}
}

// GetByID returns the profile for the given user ID, or
// mongo.ErrNoDocuments when the user is not a coach.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.CoachProfile, error) {
	var profile models.CoachProfile
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err != nil {
		return models.CoachProfile{}, err
	}
	return profile, nil
}

// Insert writes a new profile. NameCI is derived here so callers only
// supply the display name.
func (s *Store) Insert(ctx context.Context, profile models.CoachProfile) error {
	profile.NameCI = text.Fold(profile.Name)
	if profile.AvatarURL == "" {
		profile.AvatarURL = models.DefaultAvatarURL
	}
	if _, err := s.coll.InsertOne(ctx, profile); err != nil {
		return fmt.Errorf("insert coach profile: %w", err)
	}
	return nil
}

// Upsert writes the profile, replacing any existing one with the same ID.
// Retrying a promotion overwrites the profile fields again, which is safe.
func (s *Store) Upsert(ctx context.Context, profile models.CoachProfile) error {
	profile.NameCI = text.Fold(profile.Name)
	if profile.AvatarURL == "" {
		profile.AvatarURL = models.DefaultAvatarURL
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": profile.ID},
		profile,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert coach profile: %w", err)
	}
	return nil
}

// Update replaces the mutable profile fields for an existing coach.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, expertise, about string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"expertise": expertise, "about": about}},
	)
	if err != nil {
		return fmt.Errorf("update coach profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes the profile. Deleting a profile that does not exist is
// not an error; demotion is idempotent.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete coach profile: %w", err)
	}
	return nil
}

// UpdateSchoolName rewrites the denormalized school name on every profile
// that carries the old name.
func (s *Store) UpdateSchoolName(ctx context.Context, oldName, newName string) error {
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"school": oldName},
		bson.M{"$set": bson.M{"school": newName}},
	)
	if err != nil {
		return fmt.Errorf("update coach school name: %w", err)
	}
	return nil
}

// FindBySchool lists profiles for one school ordered by folded name.
func (s *Store) FindBySchool(ctx context.Context, school string) ([]models.CoachProfile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	return s.Find(ctx, bson.M{"school": school}, opts)
}

// Find runs an arbitrary filtered query; listing features build keyset
// filters on top of it.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.CoachProfile, error) {
	cur, err := s.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find coaches: %w", err)
	}
	defer cur.Close(ctx)

	var profiles []models.CoachProfile
	if err := cur.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("decode coaches: %w", err)
	}
	return profiles, nil
}

func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count coaches: %w", err)
	}
	return n, nil
}
