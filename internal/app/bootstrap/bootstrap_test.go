package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/gatherhub/internal/domain/models"
	"github.com/dalemusser/gatherhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "gatherhub",
		SessionKey:       "test-session-key-0123456789abcdef",
		ConflictRetries:  3,
		ProfileCacheTTL:  time.Minute,
		AuditLogGroups:   "all",
		AuditLogMeetings: "off",
	}
}

func TestValidateAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(*AppConfig) {}, false},
		{"blank audit settings mean all", func(c *AppConfig) { c.AuditLogGroups, c.AuditLogMeetings = "", "" }, false},
		{"missing mongo uri", func(c *AppConfig) { c.MongoURI = "" }, true},
		{"no session key", func(c *AppConfig) { c.SessionKey = "" }, true},
		{"zero retries", func(c *AppConfig) { c.ConflictRetries = 0 }, true},
		{"unknown audit mode", func(c *AppConfig) { c.AuditLogMeetings = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := validateAppConfig(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestMountAPI walks the happy path across the mounted routers, including
// events nested under /groups/{id}/events.
func TestMountAPI(t *testing.T) {
	ds := testutil.NewMemoryStore()
	svc := newServices(validConfig(), ds, nil, zap.NewNop())
	r := chi.NewRouter()
	mountAPI(r, svc, zap.NewNop())

	call := func(method, path, user string, body any) testutil.Envelope {
		t.Helper()
		req := testutil.WithUser(testutil.NewJSONRequest(t, method, path, body), user, user)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code >= 300 {
			t.Fatalf("%s %s: status %d (body %s)", method, path, rec.Code, rec.Body.String())
		}
		return testutil.DecodeEnvelope(t, rec)
	}

	var g models.Group
	if err := json.Unmarshal(call(http.MethodPost, "/groups/", "A", map[string]string{"name": "G"}).Data, &g); err != nil {
		t.Fatalf("decode group: %v", err)
	}
	call(http.MethodPost, "/groups/"+g.ID+"/invitations", "A", map[string]string{"user_id": "B"})

	var invs []models.Invitation
	if err := json.Unmarshal(call(http.MethodGet, "/invitations/", "B", nil).Data, &invs); err != nil {
		t.Fatalf("decode invitations: %v", err)
	}
	if len(invs) != 1 || invs[0].GroupID != g.ID {
		t.Fatalf("invitations: got %+v", invs)
	}

	call(http.MethodPost, "/groups/"+g.ID+"/invitations/accept", "B", nil)
	call(http.MethodPost, "/groups/"+g.ID+"/events/", "B", map[string]string{
		"title": "Coffee", "location": "X", "time": "14:30",
	})

	var events []models.EventView
	if err := json.Unmarshal(call(http.MethodGet, "/groups/"+g.ID+"/events/", "A", nil).Data, &events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 1 || events[0].Counts.Accepted != 1 || events[0].Counts.Pending != 1 {
		t.Errorf("events: got %+v", events)
	}

	call(http.MethodPost, "/meetings/", "A", map[string]any{
		"title": "Standup", "location": "Room 4", "time": "09:00", "invited": []string{"B"},
	})
	var meetings []models.MeetingView
	if err := json.Unmarshal(call(http.MethodGet, "/meetings/", "B", nil).Data, &meetings); err != nil {
		t.Fatalf("decode meetings: %v", err)
	}
	if len(meetings) != 1 {
		t.Errorf("meetings: got %d, want 1", len(meetings))
	}
}
