// internal/app/store/competitions/compstore.go
package compstore

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

// ErrAlreadyRegistered is returned when a team is registered twice for the
// same competition.
var ErrAlreadyRegistered = errors.New("that team is already registered for this competition")

// Store wraps the competitions collection and the flat registrations
// collection keyed by (competition_id, team_id).
type Store struct {
	comps *mongo.Collection
	regs  *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		comps: db.Collection("competitions"),
		regs:  db.Collection("registrations"),
	}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Competition, error) {
	var comp models.Competition
	err := s.comps.FindOne(ctx, bson.M{"_id": id}).Decode(&comp)
	if err != nil {
		return models.Competition{}, err
	}
	return comp, nil
}

// Create inserts a competition; Status is derived from the event date.
func (s *Store) Create(ctx context.Context, comp models.Competition) (models.Competition, error) {
	now := time.Now().UTC()
	comp.ID = primitive.NewObjectID()
	comp.NameCI = text.Fold(comp.Name)
	comp.Status = models.CompetitionStatus(comp.Date, now)
	comp.Teams = 0
	comp.CreatedAt = now

	if _, err := s.comps.InsertOne(ctx, comp); err != nil {
		return models.Competition{}, fmt.Errorf("insert competition: %w", err)
	}
	return comp, nil
}

// Update rewrites the editable fields and re-derives Status from the new
// date.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name, description string, date time.Time) error {
	res, err := s.comps.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"name":        name,
			"name_ci":     text.Fold(name),
			"description": description,
			"date":        date,
			"status":      models.CompetitionStatus(date, time.Now().UTC()),
		}},
	)
	if err != nil {
		return fmt.Errorf("update competition: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// IncTeams adjusts the cached approved-registration count.
func (s *Store) IncTeams(ctx context.Context, id primitive.ObjectID, delta int64) error {
	_, err := s.comps.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"teams": delta}},
	)
	if err != nil {
		return fmt.Errorf("adjust competition team count: %w", err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Competition, error) {
	cur, err := s.comps.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find competitions: %w", err)
	}
	defer cur.Close(ctx)

	var comps []models.Competition
	if err := cur.All(ctx, &comps); err != nil {
		return nil, fmt.Errorf("decode competitions: %w", err)
	}
	return comps, nil
}

func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := s.comps.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count competitions: %w", err)
	}
	return n, nil
}

// Register enters a team as Pending. The unique (competition_id, team_id)
// index rejects repeats.
func (s *Store) Register(ctx context.Context, reg models.Registration) (models.Registration, error) {
	reg.ID = primitive.NewObjectID()
	reg.Status = models.RegistrationPending
	reg.RegisteredAt = time.Now().UTC()

	if _, err := s.regs.InsertOne(ctx, reg); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Registration{}, ErrAlreadyRegistered
		}
		return models.Registration{}, fmt.Errorf("insert registration: %w", err)
	}
	return reg, nil
}

func (s *Store) GetRegistration(ctx context.Context, id primitive.ObjectID) (models.Registration, error) {
	var reg models.Registration
	err := s.regs.FindOne(ctx, bson.M{"_id": id}).Decode(&reg)
	if err != nil {
		return models.Registration{}, err
	}
	return reg, nil
}

// SetRegistrationStatus flips one registration. The caller adjusts the
// competition's team count when the flip crosses Approved.
func (s *Store) SetRegistrationStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.regs.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListPending returns a competition's Pending registrations oldest first.
func (s *Store) ListPending(ctx context.Context, competitionID primitive.ObjectID) ([]models.Registration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "registered_at", Value: 1}, {Key: "_id", Value: 1}})
	return s.FindRegistrations(ctx, bson.M{
		"competition_id": competitionID,
		"status":         models.RegistrationPending,
	}, opts)
}

// ListByStatus returns a competition's registrations with the given status.
func (s *Store) ListByStatus(ctx context.Context, competitionID primitive.ObjectID, status string) ([]models.Registration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "registered_at", Value: 1}, {Key: "_id", Value: 1}})
	return s.FindRegistrations(ctx, bson.M{
		"competition_id": competitionID,
		"status":         status,
	}, opts)
}

// FindRegistrationsByTeam lists a team's registrations across competitions.
func (s *Store) FindRegistrationsByTeam(ctx context.Context, teamID primitive.ObjectID) ([]models.Registration, error) {
	return s.FindRegistrations(ctx, bson.M{"team_id": teamID})
}

func (s *Store) FindRegistrations(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Registration, error) {
	cur, err := s.regs.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find registrations: %w", err)
	}
	defer cur.Close(ctx)

	var regs []models.Registration
	if err := cur.All(ctx, &regs); err != nil {
		return nil, fmt.Errorf("decode registrations: %w", err)
	}
	return regs, nil
}

// SearchFilter builds the competition list filter for an optional folded
// name prefix.
func SearchFilter(q string) bson.M {
	filter := bson.M{}
	if q != "" {
		filter["name_ci"] = bson.M{"$regex": "^" + text.Fold(q)}
	}
	return filter
}
