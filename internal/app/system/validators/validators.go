// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("groups", groupsSchema())
	ensure("meetings", meetingsSchema())
	ensure("users", usersSchema())

	// Append-only; no validator.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank   = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	idArray    = bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string", "minLength": 1}}
	version    = bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1}
	clock      = bson.M{"bsonType": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"}
	rsvpStatus = bson.M{"enum": bson.A{"pending", "accepted", "declined"}}
)

// statusMap validates a participant_status map: any key, enum values.
func statusMap() bson.M {
	return bson.M{"bsonType": "object", "additionalProperties": rsvpStatus}
}

func groupsSchema() bson.M {
	event := bson.M{
		"bsonType": "object",
		"required": bson.A{"id", "title", "time", "created_by", "participants", "participant_status"},
		"properties": bson.M{
			"id":                 nonBlank,
			"title":              nonBlank,
			"time":               clock,
			"created_by":         nonBlank,
			"participants":       idArray,
			"participant_status": statusMap(),
		},
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "created_by", "admin_id", "members", "pending_members", "events", "version"},
			"properties": bson.M{
				"name":            nonBlank,
				"created_by":      nonBlank,
				"admin_id":        nonBlank,
				"members":         idArray,
				"pending_members": idArray,
				"events":          bson.M{"bsonType": "array", "items": event},
				"version":         version,
				"created_at":      bson.M{"bsonType": "date"},
			},
		},
	}
}

func meetingsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "location", "time", "status", "created_by", "admin_id", "participants", "participant_status", "version"},
			"properties": bson.M{
				"title":              nonBlank,
				"location":           nonBlank,
				"time":               clock,
				"status":             bson.M{"enum": bson.A{"scheduled", "cancelled"}},
				"created_by":         nonBlank,
				"admin_id":           nonBlank,
				"participants":       idArray,
				"participant_status": statusMap(),
				"version":            version,
				"created_at":         bson.M{"bsonType": "date"},
			},
		},
	}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"display_name"},
			"properties": bson.M{
				"display_name": nonBlank,
				"avatar_url":   bson.M{"bsonType": "string"},
			},
		},
	}
}
