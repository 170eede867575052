package indexes_test

import (
	"testing"

	"github.com/dalemusser/gatherhub/internal/app/system/indexes"
	"github.com/dalemusser/gatherhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes on %s failed: %v", coll, err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"groups":       {"idx_groups_members_created", "idx_groups_pending_members", "uniq_groups_event_id"},
		"meetings":     {"idx_meetings_participants_created", "idx_meetings_admin"},
		"users":        {"idx_users_display_name__id"},
		"audit_events": {"idx_audit_target_ts", "idx_audit_actor_ts"},
	}
	for coll, want := range expected {
		got := indexNames(t, db, coll)
		for _, name := range want {
			if !got[name] {
				t.Errorf("%s: missing index %q (have %v)", coll, name, got)
			}
		}
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_RenamesMisnamedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("meetings").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "admin_id", Value: 1}},
		Options: options.Index().SetName("legacy_admin"),
	})
	if err != nil {
		t.Fatalf("seed index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	got := indexNames(t, db, "meetings")
	if got["legacy_admin"] {
		t.Error("legacy_admin should have been replaced")
	}
	if !got["idx_meetings_admin"] {
		t.Error("idx_meetings_admin missing")
	}
}
