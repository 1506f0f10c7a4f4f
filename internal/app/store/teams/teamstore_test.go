package teamstore_test

import (
	"testing"

	teamstore "github.com/robacademy/robohub/internal/app/store/teams"
	"github.com/robacademy/robohub/internal/app/system/indexes"
	"github.com/robacademy/robohub/internal/domain/models"
	"github.com/robacademy/robohub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	school := fixtures.CreateSchool(ctx, "Lincoln High")
	coach, _ := fixtures.CreateCoach(ctx, "Marie Curie", "mc@example.com", school.Name)

	created, err := store.Create(ctx, models.Team{
		Name:       "Robo Raptors",
		SchoolID:   school.ID,
		SchoolName: school.Name,
		CoachID:    coach.ID,
		CoachName:  coach.FullName,
		CreatedBy:  coach.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI == "" {
		t.Error("expected NameCI to be derived")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Create_DuplicatePerSchool(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	schoolA := fixtures.CreateSchool(ctx, "Lincoln High")
	schoolB := fixtures.CreateSchool(ctx, "Roosevelt Middle")
	coach, _ := fixtures.CreateCoach(ctx, "Marie Curie", "mc@example.com", schoolA.Name)

	team := models.Team{
		Name:      "Robo Raptors",
		SchoolID:  schoolA.ID,
		CoachID:   coach.ID,
		CreatedBy: coach.ID,
	}
	if _, err := store.Create(ctx, team); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	team.Name = "robo raptors"
	if _, err := store.Create(ctx, team); err != teamstore.ErrDuplicateTeam {
		t.Fatalf("expected ErrDuplicateTeam, got %v", err)
	}

	// The same name is fine at a different school
	team.SchoolID = schoolB.ID
	if _, err := store.Create(ctx, team); err != nil {
		t.Fatalf("Create at second school failed: %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	school := fixtures.CreateSchool(ctx, "Lincoln High")
	coach, _ := fixtures.CreateCoach(ctx, "Marie Curie", "mc@example.com", school.Name)
	team := fixtures.CreateTeam(ctx, "Robo Raptors", school, coach)

	deleted, err := store.Delete(ctx, team.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleted {
		t.Error("expected deletion to be reported")
	}

	deleted, err = store.Delete(ctx, team.ID)
	if err != nil {
		t.Fatalf("repeat Delete failed: %v", err)
	}
	if deleted {
		t.Error("second delete should report nothing removed")
	}
}

func TestStore_SetMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	school := fixtures.CreateSchool(ctx, "Lincoln High")
	coach, _ := fixtures.CreateCoach(ctx, "Marie Curie", "mc@example.com", school.Name)
	team := fixtures.CreateTeam(ctx, "Robo Raptors", school, coach)
	student := fixtures.CreateStudent(ctx, "Member One", "m1@example.com", school.Name)

	if err := store.SetMembers(ctx, team.ID, []primitive.ObjectID{student.ID}); err != nil {
		t.Fatalf("SetMembers failed: %v", err)
	}

	got, err := store.GetByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.MemberIDs) != 1 || got.MemberIDs[0] != student.ID {
		t.Errorf("unexpected roster: %v", got.MemberIDs)
	}

	if err := store.SetMembers(ctx, primitive.NewObjectID(), nil); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_FindBySchool(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	school := fixtures.CreateSchool(ctx, "Lincoln High")
	other := fixtures.CreateSchool(ctx, "Roosevelt Middle")
	coach, _ := fixtures.CreateCoach(ctx, "Marie Curie", "mc@example.com", school.Name)

	fixtures.CreateTeam(ctx, "Zeta Bots", school, coach)
	fixtures.CreateTeam(ctx, "Alpha Gears", school, coach)
	fixtures.CreateTeam(ctx, "Elsewhere", other, coach)

	got, err := store.FindBySchool(ctx, school.ID)
	if err != nil {
		t.Fatalf("FindBySchool failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(got))
	}
	if got[0].Name != "Alpha Gears" || got[1].Name != "Zeta Bots" {
		t.Errorf("expected name order, got %q, %q", got[0].Name, got[1].Name)
	}
}
