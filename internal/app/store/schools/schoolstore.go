// internal/app/store/schools/schoolstore.go
package schoolstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/robacademy/robohub/internal/app/system/normalize"
	"github.com/robacademy/robohub/internal/domain/models"
)

// ErrDuplicateSchool is returned when a school with the same folded name
// already exists.
var ErrDuplicateSchool = errors.New("a school with that name already exists")

type Store struct {
	coll *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{coll: db.Collection("schools")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.School, error) {
	var school models.School
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&school)
	if err != nil {
		return models.School{}, err
	}
	return school, nil
}

// GetByName resolves a school through the legacy name join. The lookup is
// case and diacritic insensitive.
func (s *Store) GetByName(ctx context.Context, name string) (models.School, error) {
	var school models.School
	err := s.coll.FindOne(ctx, bson.M{"name_ci": text.Fold(name)}).Decode(&school)
	if err != nil {
		return models.School{}, err
	}
	return school, nil
}

// Create inserts a new school with no coach or admin bound.
func (s *Store) Create(ctx context.Context, school models.School) (models.School, error) {
	school.Name = normalize.SchoolName(school.Name)
	school.NameCI = text.Fold(school.Name)
	if school.Coach == "" {
		school.Coach = models.NoCoachAssigned
	}
	school.Teams = 0

	now := time.Now().UTC()
	school.ID = primitive.NewObjectID()
	school.CreatedAt = now
	school.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, school); err != nil {
		if wafflemongo.IsDup(err) {
			return models.School{}, ErrDuplicateSchool
		}
		return models.School{}, fmt.Errorf("insert school: %w", err)
	}
	return school, nil
}

// Update rewrites the editable fields. Renames do not cascade here; the
// caller is responsible for refreshing denormalized copies.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name, location, about string) error {
	name = normalize.SchoolName(name)
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"name":       name,
			"name_ci":    text.Fold(name),
			"location":   location,
			"about":      about,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateSchool
		}
		return fmt.Errorf("update school: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetAdmin binds userID as the school's admin, displacing any current
// binding. The displaced account is not touched here.
func (s *Store) SetAdmin(ctx context.Context, schoolID, userID primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": schoolID},
		bson.M{"$set": bson.M{"admin_id": userID, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("set school admin: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ClearAdminIf removes the admin binding only while it still points at
// userID. A binding displaced by a later promotion is left alone.
func (s *Store) ClearAdminIf(ctx context.Context, schoolID, userID primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": schoolID, "admin_id": userID},
		bson.M{"$unset": bson.M{"admin_id": ""}, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("clear school admin: %w", err)
	}
	return nil
}

// SetCoachName updates the school's display coach, matched by name since
// schools join on names. Missing school is not an error; this write is
// best effort.
func (s *Store) SetCoachName(ctx context.Context, schoolName, coachName string) error {
	if coachName == "" {
		coachName = models.NoCoachAssigned
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"name_ci": text.Fold(schoolName)},
		bson.M{"$set": bson.M{"coach": coachName, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("set school coach: %w", err)
	}
	return nil
}

// IncTeams adjusts the cached team count by delta.
func (s *Store) IncTeams(ctx context.Context, schoolID primitive.ObjectID, delta int64) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": schoolID},
		bson.M{"$inc": bson.M{"teams": delta}},
	)
	if err != nil {
		return fmt.Errorf("adjust school team count: %w", err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.School, error) {
	cur, err := s.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find schools: %w", err)
	}
	defer cur.Close(ctx)

	var schools []models.School
	if err := cur.All(ctx, &schools); err != nil {
		return nil, fmt.Errorf("decode schools: %w", err)
	}
	return schools, nil
}

func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count schools: %w", err)
	}
	return n, nil
}
