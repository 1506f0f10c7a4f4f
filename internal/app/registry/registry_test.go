package registry_test

import (
	"errors"
	"testing"

	"github.com/robacademy/robohub/internal/app/registry"
	coachstore "github.com/robacademy/robohub/internal/app/store/coaches"
	schoolstore "github.com/robacademy/robohub/internal/app/store/schools"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/domain/models"
	"github.com/robacademy/robohub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func adminActor(u models.User) authz.Actor {
	return authz.Actor{ID: u.ID, Role: models.RoleAdmin}
}

func TestWarningCarriesOpAndErr(t *testing.T) {
	w := registry.Warning{Op: "update school coach display name", Err: errors.New("boom")}
	if got, want := w.String(), "update school coach display name: boom"; got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}
	// Handlers log the structured fields, not the formatted string.
	if w.Op == "" || w.Err == nil {
		t.Error("expected Op and Err to be populated")
	}
}

func TestPromoteToCoach(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := registry.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	users := userstore.New(db)
	coaches := coachstore.New(db)
	schools := schoolstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "Admin", "admin@example.com")
	school := fixtures.CreateSchool(ctx, "Lincoln High")
	student := fixtures.CreateStudent(ctx, "Ada Lovelace", "ada@example.com", school.Name)

	res, err := reg.PromoteToCoach(ctx, adminActor(admin), student.ID)
	if err != nil {
		t.Fatalf("PromoteToCoach failed: %v", err)
	}
	if !res.Applied() {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}

	// Role and profile move together
	got, err := users.GetByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Role != models.RoleCoach {
		t.Errorf("Role: got %q, want %q", got.Role, models.RoleCoach)
	}

	profile, err := coaches.GetByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("expected coach profile: %v", err)
	}
	if profile.Name != "Ada Lovelace" || profile.School != school.Name {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if profile.Expertise != models.DefaultExpertise {
		t.Errorf("Expertise: got %q, want default", profile.Expertise)
	}
	if profile.About != "An experienced coach from Lincoln High" {
		t.Errorf("About: got %q", profile.About)
	}

	// The school's display coach follows the promotion
	gotSchool, err := schools.GetByID(ctx, school.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if gotSchool.Coach != "Ada Lovelace" {
		t.Errorf("school coach: got %q", gotSchool.Coach)
	}
}

func TestPromoteToCoach_NoSchool(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := registry.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	coaches := coachstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "Admin", "admin@example.com")
	student := fixtures.CreateStudent(ctx, "Free Agent", "fa@example.com", "")

	if _, err := reg.PromoteToCoach(ctx, adminActor(admin), student.ID); err != nil {
		t.Fatalf("PromoteToCoach failed: %v", err)
	}

	profile, err := coaches.GetByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("expected coach profile: %v", err)
	}
	if profile.School != "" {
		t.Errorf("expected no school on profile, got %q", profile.School)
	}
}

func TestPromoteToCoach_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := registry.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "Admin", "admin@example.com")
	student := fixtures.CreateStudent(ctx, "Ada", "ada@example.com", "")

	_, err := reg.PromoteToCoach(ctx, authz.Actor{ID: student.ID, Role: models.RoleStudent}, student.ID)
	if !errors.Is(err, registry.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for non-admin, got %v", err)
	}

	_, err = reg.PromoteToCoach(ctx, adminActor(admin), primitive.NewObjectID())
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown account, got %v", err)
	}
}

func TestPromoteThenDemoteCoach(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := registry.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	users := userstore.New(db)
	coaches := coachstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "Admin", "admin@example.com")
	student := fixtures.CreateStudent(ctx, "Ada", "ada@example.com", "Lincoln High")

	if _, err := reg.PromoteToCoach(ctx, adminActor(admin), student.ID); err != nil {
		t.Fatalf("PromoteToCoach failed: %v", err)
	}
	if _, err := reg.DemoteCoach(ctx, adminActor(admin), student.ID); err != nil {
		t.Fatalf("DemoteCoach failed: %v", err)
	}

	got, err := users.GetByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Role != models.RoleStudent {
		t.Errorf("Role: got %q, want %q", got.Role, models.RoleStudent)
	}
	if _, err := coaches.GetByID(ctx, student.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected profile removed, got %v", err)
	}
}

func TestDemoteCoach_AlreadyStudent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := registry.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	coaches := coachstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "Admin", "admin@example.com")
	student := fixtures.CreateStudent(ctx, "Plain Student", "ps@example.com", "")

	// Demoting a student is a no-op, not an error
	if _, err := reg.DemoteCoach(ctx, adminActor(admin), student.ID); err != nil {
		t.Fatalf("DemoteCoach failed: %v", err)
	}
	if _, err := coaches.GetByID(ctx, student.ID); err != mongo.ErrNoDocuments {
		t.Errorf("no profile should exist, got %v", err)
	}
}

func TestSchoolAdminBindingSymmetry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := registry.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	users := userstore.New(db)
	schools := schoolstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "Admin", "admin@example.com")
	school := fixtures.CreateSchool(ctx, "Lincoln High")
	user := fixtures.CreateStudent(ctx, "Future Admin", "fa@example.com", "")

	if _, err := reg.PromoteToSchoolAdmin(ctx, adminActor(admin), user.ID, school.ID); err != nil {
		t.Fatalf("PromoteToSchoolAdmin failed: %v", err)
	}

	gotUser, _ := users.GetByID(ctx, user.ID)
	if gotUser.Role != models.RoleSchoolAdmin {
		t.Errorf("Role: got %q, want %q", gotUser.Role, models.RoleSchoolAdmin)
	}
	if gotUser.SchoolID == nil || *gotUser.SchoolID != school.ID {
		t.Error("expected account to point at school")
	}
	gotSchool, _ := schools.GetByID(ctx, school.ID)
	if gotSchool.AdminID == nil || *gotSchool.AdminID != user.ID {
		t.Error("expected school to point back at account")
	}

	if _, err := reg.DemoteSchoolAdmin(ctx, adminActor(admin), user.ID); err != nil {
		t.Fatalf("DemoteSchoolAdmin failed: %v", err)
	}

	gotUser, _ = users.GetByID(ctx, user.ID)
	if gotUser.Role != models.RoleStudent || gotUser.SchoolID != nil {
		t.Errorf("expected binding removed: role=%q schoolID=%v", gotUser.Role, gotUser.SchoolID)
	}
	gotSchool, _ = schools.GetByID(ctx, school.ID)
	if gotSchool.AdminID != nil {
		t.Error("expected school admin binding cleared")
	}
}

func TestDoubleSchoolAdminPromotion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := registry.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	users := userstore.New(db)
	schools := schoolstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "Admin", "admin@example.com")
	school := fixtures.CreateSchool(ctx, "Lincoln High")
	u1 := fixtures.CreateStudent(ctx, "First Admin", "u1@example.com", "")
	u2 := fixtures.CreateStudent(ctx, "Second Admin", "u2@example.com", "")

	if _, err := reg.PromoteToSchoolAdmin(ctx, adminActor(admin), u1.ID, school.ID); err != nil {
		t.Fatalf("first promotion failed: %v", err)
	}
	if _, err := reg.PromoteToSchoolAdmin(ctx, adminActor(admin), u2.ID, school.ID); err != nil {
		t.Fatalf("second promotion failed: %v", err)
	}

	// The second promotion displaces the first; the displaced account keeps
	// its stale school pointer
	gotSchool, _ := schools.GetByID(ctx, school.ID)
	if gotSchool.AdminID == nil || *gotSchool.AdminID != u2.ID {
		t.Fatal("expected second account bound")
	}
	gotU1, _ := users.GetByID(ctx, u1.ID)
	if gotU1.SchoolID == nil || *gotU1.SchoolID != school.ID {
		t.Error("displaced account should keep its stale school pointer")
	}

	// Demoting the displaced admin must not clobber the current binding
	if _, err := reg.DemoteSchoolAdmin(ctx, adminActor(admin), u1.ID); err != nil {
		t.Fatalf("DemoteSchoolAdmin failed: %v", err)
	}
	gotSchool, _ = schools.GetByID(ctx, school.ID)
	if gotSchool.AdminID == nil || *gotSchool.AdminID != u2.ID {
		t.Error("current admin binding should survive stale demotion")
	}
}

func TestPromoteToSchoolAdmin_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := registry.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "Admin", "admin@example.com")
	school := fixtures.CreateSchool(ctx, "Lincoln High")
	user := fixtures.CreateStudent(ctx, "User", "u@example.com", "")

	_, err := reg.PromoteToSchoolAdmin(ctx, adminActor(admin), user.ID, primitive.NilObjectID)
	if !errors.Is(err, registry.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for missing school, got %v", err)
	}

	_, err = reg.PromoteToSchoolAdmin(ctx, adminActor(admin), user.ID, primitive.NewObjectID())
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown school, got %v", err)
	}

	_, err = reg.PromoteToSchoolAdmin(ctx, authz.Actor{ID: user.ID, Role: models.RoleCoach}, user.ID, school.ID)
	if !errors.Is(err, registry.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestDemoteSchoolAdmin_LeavesCoachAlone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := registry.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	users := userstore.New(db)
	coaches := coachstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "Admin", "admin@example.com")
	school := fixtures.CreateSchool(ctx, "Lincoln High")
	coach, _ := fixtures.CreateCoach(ctx, "Grace Hopper", "grace@example.com", school.Name)

	res, err := reg.DemoteSchoolAdmin(ctx, adminActor(admin), coach.ID)
	if err != nil {
		t.Fatalf("DemoteSchoolAdmin failed: %v", err)
	}
	if !res.Applied() {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}

	// Not a school admin: role and profile survive untouched.
	got, err := users.GetByID(ctx, coach.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Role != models.RoleCoach {
		t.Errorf("Role: got %q, want %q", got.Role, models.RoleCoach)
	}
	if _, err := coaches.GetByID(ctx, coach.ID); err != nil {
		t.Errorf("expected coach profile to survive: %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := registry.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	users := userstore.New(db)
	coaches := coachstore.New(db)
	schools := schoolstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "Admin", "admin@example.com")
	school := fixtures.CreateSchool(ctx, "Lincoln High")
	victim := fixtures.CreateStudent(ctx, "Leaving", "leave@example.com", school.Name)

	// Make the account a school admin and a coach-profiled author to
	// exercise the full cascade
	if _, err := reg.PromoteToSchoolAdmin(ctx, adminActor(admin), victim.ID, school.ID); err != nil {
		t.Fatalf("PromoteToSchoolAdmin failed: %v", err)
	}
	post := fixtures.CreatePost(ctx, victim, "farewell", models.PostApproved)

	if _, err := reg.DeleteAccount(ctx, adminActor(admin), victim.ID); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	if _, err := users.GetByID(ctx, victim.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected account removed, got %v", err)
	}
	if _, err := coaches.GetByID(ctx, victim.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected no coach profile, got %v", err)
	}
	if err := db.Collection("posts").FindOne(ctx, map[string]any{"_id": post.ID}).Err(); err != mongo.ErrNoDocuments {
		t.Errorf("expected posts removed, got %v", err)
	}

	// The school's admin binding is left pointing at the deleted account
	gotSchool, _ := schools.GetByID(ctx, school.ID)
	if gotSchool.AdminID == nil || *gotSchool.AdminID != victim.ID {
		t.Error("school admin binding should be left in place on deletion")
	}

	// A cleanup task was queued for the identity provider
	n, err := db.Collection("identity_cleanup").CountDocuments(ctx, map[string]any{"user_id": victim.ID, "done": false})
	if err != nil {
		t.Fatalf("count cleanup tasks: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 queued cleanup task, got %d", n)
	}
}

func TestDeleteAccount_SelfAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := registry.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	self := fixtures.CreateStudent(ctx, "Self", "self@example.com", "")
	other := fixtures.CreateStudent(ctx, "Other", "other@example.com", "")

	_, err := reg.DeleteAccount(ctx, authz.Actor{ID: self.ID, Role: models.RoleStudent}, other.ID)
	if !errors.Is(err, registry.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized deleting another account, got %v", err)
	}

	if _, err := reg.DeleteAccount(ctx, authz.Actor{ID: self.ID, Role: models.RoleStudent}, self.ID); err != nil {
		t.Fatalf("self deletion failed: %v", err)
	}
}

func TestContributions_Monotonic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := registry.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	users := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "Admin", "admin@example.com")
	author := fixtures.CreateStudent(ctx, "Author", "author@example.com", "")
	commenter := fixtures.CreateStudent(ctx, "Commenter", "c@example.com", "")
	post := fixtures.CreatePost(ctx, author, "pending", models.PostPending)

	if _, err := reg.ApprovePost(ctx, adminActor(admin), post.ID); err != nil {
		t.Fatalf("ApprovePost failed: %v", err)
	}
	got, _ := users.GetByID(ctx, author.ID)
	if got.Contributions != 1 {
		t.Fatalf("Contributions after approval: got %d, want 1", got.Contributions)
	}

	// Approving an already approved post credits nothing
	if _, err := reg.ApprovePost(ctx, adminActor(admin), post.ID); err != nil {
		t.Fatalf("repeat ApprovePost failed: %v", err)
	}
	got, _ = users.GetByID(ctx, author.ID)
	if got.Contributions != 1 {
		t.Errorf("Contributions after repeat approval: got %d, want 1", got.Contributions)
	}

	if _, err := reg.AddComment(ctx, authz.Actor{ID: commenter.ID, Role: models.RoleStudent}, post.ID, "Well played"); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	got, _ = users.GetByID(ctx, commenter.ID)
	if got.Contributions != 1 {
		t.Errorf("Contributions after comment: got %d, want 1", got.Contributions)
	}

	// Post deletion does not claw the counter back
	if err := db.Collection("posts").FindOne(ctx, map[string]any{"_id": post.ID}).Err(); err != nil {
		t.Fatalf("post lookup failed: %v", err)
	}
	if _, err := reg.DeleteAccount(ctx, adminActor(admin), author.ID); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	got, _ = users.GetByID(ctx, commenter.ID)
	if got.Contributions != 1 {
		t.Errorf("Contributions after unrelated deletion: got %d, want 1", got.Contributions)
	}
}

func TestAddComment_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	reg := registry.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateStudent(ctx, "Author", "author@example.com", "")
	post := fixtures.CreatePost(ctx, author, "approved", models.PostApproved)

	_, err := reg.AddComment(ctx, authz.Actor{}, post.ID, "hi")
	if !errors.Is(err, registry.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for anonymous comment, got %v", err)
	}

	_, err = reg.AddComment(ctx, authz.Actor{ID: author.ID, Role: models.RoleStudent}, post.ID, "")
	if !errors.Is(err, registry.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for empty comment, got %v", err)
	}

	_, err = reg.AddComment(ctx, authz.Actor{ID: author.ID, Role: models.RoleStudent}, primitive.NewObjectID(), "hi")
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown post, got %v", err)
	}
}
