package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calls chain; earlier parameters on the same request are kept.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test account with the given role and school name.
// Pass school "" for unaffiliated accounts.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role, school string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		AuthMethod: "password",
		Role:       role,
		School:     school,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateStudent creates a test student affiliated with the given school.
func (f *Fixtures) CreateStudent(ctx context.Context, fullName, email, school string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleStudent, school)
}

// CreateAdmin creates a test platform admin.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleAdmin, "")
}

// CreateCoach creates a coach account together with its coach profile,
// the same pair a promotion produces.
func (f *Fixtures) CreateCoach(ctx context.Context, fullName, email, school string) (models.User, models.CoachProfile) {
	f.t.Helper()

	user := f.CreateUser(ctx, fullName, email, models.RoleCoach, school)
	profile := models.CoachProfile{
		ID:        user.ID,
		Name:      user.FullName,
		NameCI:    user.FullNameCI,
		School:    school,
		AvatarURL: models.DefaultAvatarURL,
		Expertise: models.DefaultExpertise,
		About:     "An experienced coach from " + school,
	}
	if _, err := f.db.Collection("coaches").InsertOne(ctx, profile); err != nil {
		f.t.Fatalf("failed to create test coach profile: %v", err)
	}

	return user, profile
}

// CreateSchoolAdmin creates a school admin bound to the given school and
// sets the school's admin_id back-reference.
func (f *Fixtures) CreateSchoolAdmin(ctx context.Context, fullName, email string, school models.School) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		AuthMethod: "password",
		Role:       models.RoleSchoolAdmin,
		School:     school.Name,
		SchoolID:   &school.ID,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test school admin: %v", err)
	}

	_, err := f.db.Collection("schools").UpdateByID(ctx, school.ID,
		map[string]any{"$set": map[string]any{"admin_id": user.ID}})
	if err != nil {
		f.t.Fatalf("failed to bind test school admin: %v", err)
	}

	return user
}

// CreateSchool creates a test school with the given name.
func (f *Fixtures) CreateSchool(ctx context.Context, name string) models.School {
	f.t.Helper()

	now := time.Now().UTC()
	school := models.School{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Location:  "Test City, TS",
		Coach:     models.NoCoachAssigned,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("schools").InsertOne(ctx, school); err != nil {
		f.t.Fatalf("failed to create test school: %v", err)
	}

	return school
}

// CreateTeam creates a test team for the given school and coach.
func (f *Fixtures) CreateTeam(ctx context.Context, name string, school models.School, coach models.User) models.Team {
	f.t.Helper()

	team := models.Team{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		SchoolID:   school.ID,
		SchoolName: school.Name,
		CoachID:    coach.ID,
		CoachName:  coach.FullName,
		CreatedBy:  coach.ID,
		CreatedAt:  time.Now().UTC(),
	}

	if _, err := f.db.Collection("teams").InsertOne(ctx, team); err != nil {
		f.t.Fatalf("failed to create test team: %v", err)
	}

	return team
}

// CreateCompetition creates a test competition on the given date.
func (f *Fixtures) CreateCompetition(ctx context.Context, name string, date time.Time) models.Competition {
	f.t.Helper()

	comp := models.Competition{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Date:      date,
		Status:    models.CompetitionStatus(date, time.Now()),
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("competitions").InsertOne(ctx, comp); err != nil {
		f.t.Fatalf("failed to create test competition: %v", err)
	}

	return comp
}

// CreateRegistration registers a team for a competition with the given
// status.
func (f *Fixtures) CreateRegistration(ctx context.Context, comp models.Competition, team models.Team, status string) models.Registration {
	f.t.Helper()

	reg := models.Registration{
		ID:            primitive.NewObjectID(),
		CompetitionID: comp.ID,
		TeamID:        team.ID,
		TeamName:      team.Name,
		CoachName:     team.CoachName,
		Status:        status,
		RegisteredBy:  team.CoachID,
		RegisteredAt:  time.Now().UTC(),
	}

	if _, err := f.db.Collection("registrations").InsertOne(ctx, reg); err != nil {
		f.t.Fatalf("failed to create test registration: %v", err)
	}

	return reg
}

// CreatePost creates a community post by the given author with the given
// moderation status.
func (f *Fixtures) CreatePost(ctx context.Context, author models.User, content, status string) models.Post {
	f.t.Helper()

	post := models.Post{
		ID:           primitive.NewObjectID(),
		AuthorID:     author.ID,
		AuthorName:   author.FullName,
		AuthorHandle: author.Handle(),
		AuthorAvatar: author.AvatarURL,
		Content:      content,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := f.db.Collection("posts").InsertOne(ctx, post); err != nil {
		f.t.Fatalf("failed to create test post: %v", err)
	}

	return post
}
