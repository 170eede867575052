// internal/app/features/groups/handler.go
package groups

import (
	groupstore "github.com/dalemusser/gatherhub/internal/app/store/groups"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature:
// group CRUD plus the membership endpoints (invite, accept, reject, leave,
// remove).
type Handler struct {
	Groups *groupstore.Store
	Log    *zap.Logger
}

// NewHandler constructs a new groups Handler. It is typically called from
// the bootstrap BuildHandler function.
func NewHandler(groups *groupstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Groups: groups,
		Log:    logger,
	}
}

// ok is the body of mutations that return nothing else.
type ok struct {
	OK bool `json:"ok"`
}
