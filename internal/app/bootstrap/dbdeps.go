// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis backs the profile cache; nil when redis_addr is blank.
	Redis *redis.Client
}
