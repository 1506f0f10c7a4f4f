package cleanupstore_test

import (
	"testing"

	cleanupstore "github.com/robacademy/robohub/internal/app/store/cleanup"
	"github.com/robacademy/robohub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_EnqueueAndListPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := cleanupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	adminID := primitive.NewObjectID()

	task, err := store.Enqueue(ctx, userID, adminID, "gone@example.com")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if task.Token == "" {
		t.Error("expected operator token to be assigned")
	}
	if task.Done {
		t.Error("new task must start pending")
	}
	if task.RequestedAt.IsZero() {
		t.Error("expected RequestedAt to be set")
	}

	pending, err := store.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(pending))
	}
	if pending[0].UserID != userID || pending[0].Email != "gone@example.com" {
		t.Errorf("unexpected task: %+v", pending[0])
	}
}

func TestStore_MarkDone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := cleanupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task, err := store.Enqueue(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "a@example.com")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := store.Enqueue(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "b@example.com"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if err := store.MarkDone(ctx, task.Token); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	pending, err := store.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending task after MarkDone, got %d", len(pending))
	}
	if pending[0].Email != "b@example.com" {
		t.Errorf("wrong task closed: %+v", pending[0])
	}

	if err := store.MarkDone(ctx, "no-such-token"); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments for unknown token, got %v", err)
	}
}
