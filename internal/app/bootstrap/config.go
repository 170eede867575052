// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/gatherhub/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for GatherHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: GATHERHUB_MONGO_URI, GATHERHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "gatherhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "gatherhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	// Profile cache
	{Name: "redis_addr", Default: "", Desc: "Redis address for the profile cache (blank disables it)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "profile_cache_ttl", Default: "10m", Desc: "How long resolved display profiles are cached"},

	// Concurrency and timeouts
	{Name: "conflict_retries", Default: txn.DefaultAttempts, Desc: "Attempts per mutation before reporting a conflict (>= 1)"},
	{Name: "timeout_short", Default: "5s", Desc: "Bound for single-document store calls"},
	{Name: "timeout_medium", Default: "10s", Desc: "Bound for multi-document reads"},
	{Name: "timeout_long", Default: "30s", Desc: "Bound for enriched list reads"},

	// Audit logging settings
	{Name: "audit_log_groups", Default: "all", Desc: "Group event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_meetings", Default: "all", Desc: "Meeting event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config.yaml/json/toml
// files, environment variables (WAFFLE_* for core, GATHERHUB_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "GATHERHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 720*time.Hour),

		RedisAddr:       appValues.String("redis_addr"),
		RedisPassword:   appValues.String("redis_password"),
		RedisDB:         appValues.Int("redis_db"),
		ProfileCacheTTL: appValues.Duration("profile_cache_ttl", 10*time.Minute),

		ConflictRetries: appValues.Int("conflict_retries"),
		TimeoutShort:    appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium:   appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:     appValues.Duration("timeout_long", 30*time.Second),

		AuditLogGroups:   appValues.String("audit_log_groups"),
		AuditLogMeetings: appValues.String("audit_log_meetings"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation. Returning an error
// aborts startup before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := validateAppConfig(appCfg); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	return nil
}

func validateAppConfig(appCfg AppConfig) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.SessionKey == "" {
		return errors.New("session_key must be set")
	}
	if appCfg.ConflictRetries < 1 {
		return fmt.Errorf("conflict_retries must be at least 1, got %d", appCfg.ConflictRetries)
	}
	for key, v := range map[string]string{
		"audit_log_groups":   appCfg.AuditLogGroups,
		"audit_log_meetings": appCfg.AuditLogMeetings,
	} {
		switch v {
		case "", "all", "db", "log", "off":
		default:
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, v)
		}
	}
	return nil
}
