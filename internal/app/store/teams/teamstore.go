// internal/app/store/teams/teamstore.go
package teamstore

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

	"github.com/robacademy/robohub/internal/domain/models"
)

// ErrDuplicateTeam is returned when the school already has a team with
// the same folded name.
var ErrDuplicateTeam = errors.New("that school already has a team with that name")

type Store struct {
	coll *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{coll: db.Collection("teams")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Team, error) {
	var team models.Team
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&team)
	if err != nil {
		return models.Team{}, err
	}
	return team, nil
}

// Create inserts a team. Name uniqueness is scoped to the school via the
// compound unique index on school_id and name_ci.
func (s *Store) Create(ctx context.Context, team models.Team) (models.Team, error) {
	team.NameCI = text.Fold(team.Name)
	team.ID = primitive.NewObjectID()
	team.CreatedAt = time.Now().UTC()

	if _, err := s.coll.InsertOne(ctx, team); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Team{}, ErrDuplicateTeam
		}
		return models.Team{}, fmt.Errorf("insert team: %w", err)
	}
	return team, nil
}

// Delete removes the team and reports whether a document was deleted so
// the caller can decrement the school's team count.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete team: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// SetMembers replaces the member roster.
func (s *Store) SetMembers(ctx context.Context, id primitive.ObjectID, memberIDs []primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"member_ids": memberIDs}},
	)
	if err != nil {
		return fmt.Errorf("set team members: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateSchoolName rewrites the denormalized school name on every team of
// the given school.
func (s *Store) UpdateSchoolName(ctx context.Context, schoolID primitive.ObjectID, newName string) error {
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"school_id": schoolID},
		bson.M{"$set": bson.M{"school_name": newName}},
	)
	if err != nil {
		return fmt.Errorf("update team school name: %w", err)
	}
	return nil
}

// FindBySchool lists a school's teams ordered by folded name.
func (s *Store) FindBySchool(ctx context.Context, schoolID primitive.ObjectID) ([]models.Team, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	return s.Find(ctx, bson.M{"school_id": schoolID}, opts)
}

// FindByCoach lists teams coached by the given user.
func (s *Store) FindByCoach(ctx context.Context, coachID primitive.ObjectID) ([]models.Team, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	return s.Find(ctx, bson.M{"coach_id": coachID}, opts)
}

func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Team, error) {
	cur, err := s.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find teams: %w", err)
	}
	defer cur.Close(ctx)

	var teams []models.Team
	if err := cur.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("decode teams: %w", err)
	}
	return teams, nil
}

func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count teams: %w", err)
	}
	return n, nil
}
