package bootstrap

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/robacademy/robohub/internal/testutil"
)

func TestEnsureSchema_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	if err := EnsureSchema(ctx, nil, AppConfig{}, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	// The schools unique folded-name index backs duplicate detection.
	cur, err := db.Collection("schools").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("listing school indexes: %v", err)
	}
	var specs []struct {
		Key bson.M `bson:"key"`
	}
	if err := cur.All(ctx, &specs); err != nil {
		t.Fatalf("decoding index specs: %v", err)
	}
	found := false
	for _, spec := range specs {
		if _, ok := spec.Key["name_ci"]; ok {
			found = true
		}
	}
	if !found {
		t.Error("expected a name_ci index on schools")
	}

	// Running twice must be a no-op, not an error.
	if err := EnsureSchema(ctx, nil, AppConfig{}, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema second run failed: %v", err)
	}
}
