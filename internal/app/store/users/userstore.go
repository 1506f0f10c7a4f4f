package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/robacademy/robohub/internal/app/system/normalize"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an
	// email that already exists.
	ErrDuplicateEmail = errors.New("an account with this email already exists")
	errBadRole        = errors.New(`role must be "student"|"coach"|"school_admin"|"admin"`)
	errBadStatus      = errors.New(`status must be "active"|"disabled"`)
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new account after normalizing and validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.School = normalize.SchoolName(u.School)
	if u.Status == "" {
		u.Status = "active"
	}
	if u.Role == "" {
		u.Role = models.RoleStudent
	}

	switch u.Role {
	case models.RoleStudent, models.RoleCoach, models.RoleSchoolAdmin, models.RoleAdmin:
	default:
		return models.User{}, errBadRole
	}
	if u.Status != "active" && u.Status != "disabled" {
		return models.User{}, errBadStatus
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ProfileUpdate holds the self-service editable fields.
type ProfileUpdate struct {
	FullName  string
	Phone     string
	School    string
	AvatarURL string
}

// UpdateProfile updates an account's own profile fields.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	name := normalize.Name(upd.FullName)
	set := bson.M{
		"full_name":    name,
		"full_name_ci": text.Fold(name),
		"phone":        upd.Phone,
		"school":       normalize.SchoolName(upd.School),
		"avatar_url":   upd.AvatarURL,
		"updated_at":   time.Now().UTC(),
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

// SetRole updates only the role field. Used by role transitions whose other
// writes land on different collections.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// BindSchoolAdmin sets the role to school_admin and records the id-keyed
// school binding alongside the display name.
func (s *Store) BindSchoolAdmin(ctx context.Context, id, schoolID primitive.ObjectID, schoolName string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"role":       models.RoleSchoolAdmin,
		"school":     schoolName,
		"school_id":  schoolID,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UnbindSchoolAdmin reverts a school admin to student and clears the
// id-keyed binding. The display-name affiliation is kept.
func (s *Store) UnbindSchoolAdmin(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{"role": models.RoleStudent, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"school_id": ""},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// IncrementContributions adds n to the contribution counter. The counter
// only ever grows; callers pass positive n.
func (s *Store) IncrementContributions(ctx context.Context, id primitive.ObjectID, n int64) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"contributions": n}})
	return err
}

// Delete removes an account by ID. Returns the number of documents deleted
// (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EmailExistsForOther checks if an email already exists for a user other
// than the given ID.
func (s *Store) EmailExistsForOther(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"email": normalize.Email(email),
		"_id":   bson.M{"$ne": excludeID},
	}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// Find returns users matching the given filter with optional find options.
// The caller builds the filter and options (pagination, sorting, projection).
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of users matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// FindBySchool returns accounts affiliated with the given school name,
// optionally restricted to one role.
func (s *Store) FindBySchool(ctx context.Context, school, role string) ([]models.User, error) {
	filter := bson.M{"school": school}
	if role != "" {
		filter["role"] = role
	}
	return s.Find(ctx, filter, options.Find().SetSort(bson.D{
		{Key: "full_name_ci", Value: 1},
		{Key: "_id", Value: 1},
	}))
}
