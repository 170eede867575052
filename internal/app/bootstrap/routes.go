// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	eventsfeature "github.com/dalemusser/gatherhub/internal/app/features/events"
	groupsfeature "github.com/dalemusser/gatherhub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/gatherhub/internal/app/features/health"
	invitationsfeature "github.com/dalemusser/gatherhub/internal/app/features/invitations"
	meetingsfeature "github.com/dalemusser/gatherhub/internal/app/features/meetings"
	"github.com/dalemusser/gatherhub/internal/app/store/audit"
	"github.com/dalemusser/gatherhub/internal/app/store/docstore"
	groupstore "github.com/dalemusser/gatherhub/internal/app/store/groups"
	meetingstore "github.com/dalemusser/gatherhub/internal/app/store/meetings"
	userstore "github.com/dalemusser/gatherhub/internal/app/store/users"
	"github.com/dalemusser/gatherhub/internal/app/system/auditlog"
	"github.com/dalemusser/gatherhub/internal/app/system/auth"
	"github.com/dalemusser/gatherhub/internal/app/system/profilecache"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. GatherHub applies session middleware,
// wires the repositories onto the Mongo document store and mounts the JSON
// feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	svc := newServices(appCfg, docstore.NewMongo(deps.MongoDatabase), deps.Redis, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	mountAPI(r, svc, logger)
	return r, nil
}

// services are the repositories every feature handler shares.
type services struct {
	groups   *groupstore.Store
	meetings *meetingstore.Store
}

func newServices(appCfg AppConfig, ds docstore.Store, rdb *redis.Client, logger *zap.Logger) services {
	auditLog := auditlog.New(audit.New(ds), logger, auditlog.Config{
		Groups:   appCfg.AuditLogGroups,
		Meetings: appCfg.AuditLogMeetings,
	})
	// A nil rdb makes the cache a passthrough to the users collection.
	profiles := profilecache.New(rdb, userstore.New(ds), appCfg.ProfileCacheTTL, logger)

	return services{
		groups: groupstore.New(ds, groupstore.Options{
			Profiles:        profiles,
			Audit:           auditLog,
			Logger:          logger,
			ConflictRetries: appCfg.ConflictRetries,
		}),
		meetings: meetingstore.New(ds, meetingstore.Options{
			Profiles:        profiles,
			Audit:           auditLog,
			Logger:          logger,
			ConflictRetries: appCfg.ConflictRetries,
		}),
	}
}

// mountAPI mounts the JSON feature routers. Every route below requires a
// signed-in user.
func mountAPI(r chi.Router, svc services, logger *zap.Logger) {
	groupsRouter := groupsfeature.Routes(groupsfeature.NewHandler(svc.groups, logger))
	groupsRouter.Mount("/{id}/events", eventsfeature.Routes(eventsfeature.NewHandler(svc.groups, logger)))
	r.Mount("/groups", groupsRouter)

	r.Mount("/invitations", invitationsfeature.Routes(invitationsfeature.NewHandler(svc.groups, logger)))
	r.Mount("/meetings", meetingsfeature.Routes(meetingsfeature.NewHandler(svc.meetings, logger)))
}
