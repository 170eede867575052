package grouppolicy

import (
	"testing"

	"github.com/dalemusser/gatherhub/internal/domain/models"
)

func testGroup() models.Group {
	return models.Group{
		CreatedBy:      "creator",
		AdminID:        "admin",
		Members:        []string{"creator", "admin", "member"},
		PendingMembers: []string{"invitee"},
	}
}

func TestRoleChecks(t *testing.T) {
	g := testGroup()

	tests := []struct {
		user      string
		member    bool
		pending   bool
		admin     bool
		creator   bool
		canManage bool
	}{
		{"creator", true, false, false, true, true},
		{"admin", true, false, true, false, true},
		{"member", true, false, false, false, false},
		{"invitee", false, true, false, false, false},
		{"stranger", false, false, false, false, false},
		{"", false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			if got := IsMember(g, tt.user); got != tt.member {
				t.Errorf("IsMember = %v, want %v", got, tt.member)
			}
			if got := IsPending(g, tt.user); got != tt.pending {
				t.Errorf("IsPending = %v, want %v", got, tt.pending)
			}
			if got := IsAdmin(g, tt.user); got != tt.admin {
				t.Errorf("IsAdmin = %v, want %v", got, tt.admin)
			}
			if got := IsCreator(g, tt.user); got != tt.creator {
				t.Errorf("IsCreator = %v, want %v", got, tt.creator)
			}
			if got := CanManageGroup(g, tt.user); got != tt.canManage {
				t.Errorf("CanManageGroup = %v, want %v", got, tt.canManage)
			}
			if got := CanInvite(g, tt.user); got != tt.member {
				t.Errorf("CanInvite = %v, want %v", got, tt.member)
			}
		})
	}
}

func TestCanManageEvent(t *testing.T) {
	g := testGroup()
	e := models.Event{CreatedBy: "member"}

	tests := []struct {
		user string
		want bool
	}{
		{"member", true},  // event creator
		{"admin", true},   // group admin
		{"creator", true}, // group creator
		{"other", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := CanManageEvent(g, e, tt.user); got != tt.want {
			t.Errorf("CanManageEvent(%q) = %v, want %v", tt.user, got, tt.want)
		}
	}
}
