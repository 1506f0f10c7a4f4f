package schoolstore_test

import (
	"testing"

	schoolstore "github.com/robacademy/robohub/internal/app/store/schools"
	"github.com/robacademy/robohub/internal/app/system/indexes"
	"github.com/robacademy/robohub/internal/domain/models"
	"github.com/robacademy/robohub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := schoolstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.School{
		Name:     "  Lincoln   High ",
		Location: "Springfield, MO",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Name != "Lincoln High" {
		t.Errorf("expected whitespace-collapsed name, got %q", created.Name)
	}
	if created.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if created.Coach != models.NoCoachAssigned {
		t.Errorf("expected coach %q, got %q", models.NoCoachAssigned, created.Coach)
	}
	if created.AdminID != nil {
		t.Error("new school should have no admin bound")
	}
	if created.Teams != 0 {
		t.Errorf("expected zero team count, got %d", created.Teams)
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := schoolstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, models.School{Name: "Lincoln High"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.School{Name: "LINCOLN HIGH"})
	if err != schoolstore.ErrDuplicateSchool {
		t.Fatalf("expected ErrDuplicateSchool, got %v", err)
	}
}

func TestStore_GetByName_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := schoolstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateSchool(ctx, "Académie Robotique")

	got, err := store.GetByName(ctx, "academie robotique")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if got.Name != "Académie Robotique" {
		t.Errorf("Name: got %q", got.Name)
	}

	if _, err := store.GetByName(ctx, "No Such School"); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_AdminBinding(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := schoolstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	school := fixtures.CreateSchool(ctx, "Lincoln High")
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	if err := store.SetAdmin(ctx, school.ID, first); err != nil {
		t.Fatalf("SetAdmin failed: %v", err)
	}
	got, _ := store.GetByID(ctx, school.ID)
	if got.AdminID == nil || *got.AdminID != first {
		t.Fatal("expected first admin bound")
	}

	// A later promotion displaces the binding
	if err := store.SetAdmin(ctx, school.ID, second); err != nil {
		t.Fatalf("SetAdmin (displace) failed: %v", err)
	}

	// Demoting the displaced admin must not clobber the current binding
	if err := store.ClearAdminIf(ctx, school.ID, first); err != nil {
		t.Fatalf("ClearAdminIf failed: %v", err)
	}
	got, _ = store.GetByID(ctx, school.ID)
	if got.AdminID == nil || *got.AdminID != second {
		t.Fatal("stale ClearAdminIf should leave current admin bound")
	}

	// Demoting the current admin clears it
	if err := store.ClearAdminIf(ctx, school.ID, second); err != nil {
		t.Fatalf("ClearAdminIf failed: %v", err)
	}
	got, _ = store.GetByID(ctx, school.ID)
	if got.AdminID != nil {
		t.Fatal("expected admin binding cleared")
	}
}

func TestStore_SetAdmin_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := schoolstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.SetAdmin(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_SetCoachName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := schoolstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	school := fixtures.CreateSchool(ctx, "Lincoln High")

	if err := store.SetCoachName(ctx, "lincoln high", "Marie Curie"); err != nil {
		t.Fatalf("SetCoachName failed: %v", err)
	}
	got, _ := store.GetByID(ctx, school.ID)
	if got.Coach != "Marie Curie" {
		t.Errorf("Coach: got %q", got.Coach)
	}

	// Empty name resets to the unassigned display value
	if err := store.SetCoachName(ctx, "Lincoln High", ""); err != nil {
		t.Fatalf("SetCoachName failed: %v", err)
	}
	got, _ = store.GetByID(ctx, school.ID)
	if got.Coach != models.NoCoachAssigned {
		t.Errorf("Coach: got %q, want %q", got.Coach, models.NoCoachAssigned)
	}

	// Unknown school is best effort, not an error
	if err := store.SetCoachName(ctx, "No Such School", "Anyone"); err != nil {
		t.Errorf("SetCoachName for unknown school: %v", err)
	}
}

func TestStore_IncTeams(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := schoolstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	school := fixtures.CreateSchool(ctx, "Lincoln High")

	if err := store.IncTeams(ctx, school.ID, 2); err != nil {
		t.Fatalf("IncTeams failed: %v", err)
	}
	if err := store.IncTeams(ctx, school.ID, -1); err != nil {
		t.Fatalf("IncTeams failed: %v", err)
	}

	got, _ := store.GetByID(ctx, school.ID)
	if got.Teams != 1 {
		t.Errorf("Teams: got %d, want 1", got.Teams)
	}
}
