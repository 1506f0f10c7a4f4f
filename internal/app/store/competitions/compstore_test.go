package compstore_test

import (
	"testing"
	"time"

	compstore "github.com/robacademy/robohub/internal/app/store/competitions"
	"github.com/robacademy/robohub/internal/app/system/indexes"
	"github.com/robacademy/robohub/internal/domain/models"
	"github.com/robacademy/robohub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create_DerivesStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := compstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	upcoming, err := store.Create(ctx, models.Competition{
		Name: "Spring Scrimmage",
		Date: time.Now().AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if upcoming.Status != models.CompetitionUpcoming {
		t.Errorf("Status: got %q, want %q", upcoming.Status, models.CompetitionUpcoming)
	}
	if upcoming.NameCI == "" {
		t.Error("expected NameCI to be derived")
	}
	if upcoming.Teams != 0 {
		t.Errorf("expected zero team count, got %d", upcoming.Teams)
	}

	past, err := store.Create(ctx, models.Competition{
		Name: "Last Year's Final",
		Date: time.Now().AddDate(-1, 0, 0),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if past.Status != models.CompetitionCompleted {
		t.Errorf("Status: got %q, want %q", past.Status, models.CompetitionCompleted)
	}
}

func TestStore_Update_RederivesStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := compstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	comp := fixtures.CreateCompetition(ctx, "Movable Feast", time.Now().AddDate(0, 1, 0))

	err := store.Update(ctx, comp.ID, "Movable Feast", "rescheduled", time.Now().AddDate(0, -1, 0))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, comp.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.CompetitionCompleted {
		t.Errorf("Status: got %q, want %q", got.Status, models.CompetitionCompleted)
	}

	if err := store.Update(ctx, primitive.NewObjectID(), "x", "", time.Now()); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Register(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := compstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	school := fixtures.CreateSchool(ctx, "Lincoln High")
	coach, _ := fixtures.CreateCoach(ctx, "Marie Curie", "mc@example.com", school.Name)
	team := fixtures.CreateTeam(ctx, "Robo Raptors", school, coach)
	comp := fixtures.CreateCompetition(ctx, "Spring Scrimmage", time.Now().AddDate(0, 1, 0))

	reg, err := store.Register(ctx, models.Registration{
		CompetitionID: comp.ID,
		TeamID:        team.ID,
		TeamName:      team.Name,
		CoachName:     coach.FullName,
		RegisteredBy:  coach.ID,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Status != models.RegistrationPending {
		t.Errorf("Status: got %q, want %q", reg.Status, models.RegistrationPending)
	}
	if reg.RegisteredAt.IsZero() {
		t.Error("expected RegisteredAt to be set")
	}

	_, err = store.Register(ctx, models.Registration{
		CompetitionID: comp.ID,
		TeamID:        team.ID,
		RegisteredBy:  coach.ID,
	})
	if err != compstore.ErrAlreadyRegistered {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestStore_ListPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := compstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	school := fixtures.CreateSchool(ctx, "Lincoln High")
	coach, _ := fixtures.CreateCoach(ctx, "Marie Curie", "mc@example.com", school.Name)
	teamA := fixtures.CreateTeam(ctx, "Alpha Gears", school, coach)
	teamB := fixtures.CreateTeam(ctx, "Beta Bots", school, coach)
	teamC := fixtures.CreateTeam(ctx, "Gamma Rays", school, coach)
	comp := fixtures.CreateCompetition(ctx, "Spring Scrimmage", time.Now().AddDate(0, 1, 0))

	fixtures.CreateRegistration(ctx, comp, teamA, models.RegistrationPending)
	fixtures.CreateRegistration(ctx, comp, teamB, models.RegistrationApproved)
	fixtures.CreateRegistration(ctx, comp, teamC, models.RegistrationPending)

	pending, err := store.ListPending(ctx, comp.ID)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending registrations, got %d", len(pending))
	}
	for _, reg := range pending {
		if reg.Status != models.RegistrationPending {
			t.Errorf("unexpected status %q in pending list", reg.Status)
		}
	}
}

func TestStore_ApproveFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := compstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	school := fixtures.CreateSchool(ctx, "Lincoln High")
	coach, _ := fixtures.CreateCoach(ctx, "Marie Curie", "mc@example.com", school.Name)
	team := fixtures.CreateTeam(ctx, "Robo Raptors", school, coach)
	comp := fixtures.CreateCompetition(ctx, "Spring Scrimmage", time.Now().AddDate(0, 1, 0))
	reg := fixtures.CreateRegistration(ctx, comp, team, models.RegistrationPending)

	if err := store.SetRegistrationStatus(ctx, reg.ID, models.RegistrationApproved); err != nil {
		t.Fatalf("SetRegistrationStatus failed: %v", err)
	}
	if err := store.IncTeams(ctx, comp.ID, 1); err != nil {
		t.Fatalf("IncTeams failed: %v", err)
	}

	gotReg, err := store.GetRegistration(ctx, reg.ID)
	if err != nil {
		t.Fatalf("GetRegistration failed: %v", err)
	}
	if gotReg.Status != models.RegistrationApproved {
		t.Errorf("Status: got %q, want %q", gotReg.Status, models.RegistrationApproved)
	}

	gotComp, err := store.GetByID(ctx, comp.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if gotComp.Teams != 1 {
		t.Errorf("Teams: got %d, want 1", gotComp.Teams)
	}
}
