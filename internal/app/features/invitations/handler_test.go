package invitations_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/gatherhub/internal/app/features/invitations"
	groupstore "github.com/dalemusser/gatherhub/internal/app/store/groups"
	"github.com/dalemusser/gatherhub/internal/domain/models"
	"github.com/dalemusser/gatherhub/internal/testutil"
	"go.uber.org/zap"
)

func TestServeInvitations(t *testing.T) {
	ds := testutil.NewMemoryStore()
	fx := testutil.NewFixtures(t, ds)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fx.CreateUser(ctx, "Alice")
	g := fx.CreateGroup(ctx, "Readers", alice.ID, nil, []string{"bob"})
	fx.CreateGroup(ctx, "Others", alice.ID, nil, []string{"carol"})

	router := invitations.Routes(invitations.NewHandler(groupstore.New(ds, groupstore.Options{}), zap.NewNop()))

	req := testutil.WithUser(httptest.NewRequest(http.MethodGet, "/", nil), "bob", "Bob")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	var invs []models.Invitation
	if err := json.Unmarshal(testutil.DecodeEnvelope(t, rec).Data, &invs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(invs) != 1 {
		t.Fatalf("invitations: got %d, want 1", len(invs))
	}
	if invs[0].GroupID != g.ID || invs[0].CreatorName != "Alice" || invs[0].MemberCount != 1 {
		t.Errorf("unexpected invitation: %+v", invs[0])
	}
}

func TestServeInvitations_SignedOut(t *testing.T) {
	ds := testutil.NewMemoryStore()
	router := invitations.Routes(invitations.NewHandler(groupstore.New(ds, groupstore.Options{}), zap.NewNop()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
