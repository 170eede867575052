// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"

	"github.com/dalemusser/gatherhub/internal/app/store/audit"
	"github.com/dalemusser/gatherhub/internal/domain/models"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Groups controls logging for group, membership and event changes.
	// Values: "all" (store + zap), "db" (store only), "log" (zap only), "off" (disabled)
	Groups string
	// Meetings controls logging for meeting changes. Same values as Groups.
	Meetings string
}

// Logger records successful mutations to the audit store and/or zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.String("actor_id", event.ActorID),
		zap.String("target_id", event.TargetID),
	}
	if event.SubjectID != "" {
		fields = append(fields, zap.String("subject_id", event.SubjectID))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}
	l.zapLog.Info("audit event", fields...)
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// A failed store write is logged and otherwise ignored: the mutation being
// audited has already committed.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryGroup:
		setting = l.config.Groups
	case audit.CategoryMeeting:
		setting = l.config.Meetings
	}
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) group(ctx context.Context, eventType, actorID, groupID, subjectID string, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryGroup,
		EventType: eventType,
		ActorID:   actorID,
		TargetID:  groupID,
		SubjectID: subjectID,
		Details:   details,
	})
}

func (l *Logger) meeting(ctx context.Context, eventType, actorID, meetingID string, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMeeting,
		EventType: eventType,
		ActorID:   actorID,
		TargetID:  meetingID,
		Details:   details,
	})
}

// --- Group Events ---

func (l *Logger) GroupCreated(ctx context.Context, actorID, groupID, name string) {
	l.group(ctx, audit.EventGroupCreated, actorID, groupID, "", map[string]string{"name": name})
}

func (l *Logger) GroupUpdated(ctx context.Context, actorID, groupID string) {
	l.group(ctx, audit.EventGroupUpdated, actorID, groupID, "", nil)
}

func (l *Logger) GroupDeleted(ctx context.Context, actorID, groupID, name string) {
	l.group(ctx, audit.EventGroupDeleted, actorID, groupID, "", map[string]string{"name": name})
}

func (l *Logger) MemberInvited(ctx context.Context, inviterID, groupID, invitedID string) {
	l.group(ctx, audit.EventMemberInvited, inviterID, groupID, invitedID, nil)
}

func (l *Logger) InvitationAccepted(ctx context.Context, userID, groupID string) {
	l.group(ctx, audit.EventInvitationAccepted, userID, groupID, "", nil)
}

func (l *Logger) InvitationRejected(ctx context.Context, userID, groupID string) {
	l.group(ctx, audit.EventInvitationRejected, userID, groupID, "", nil)
}

// MemberLeft records a voluntary departure. adminReassigned is true when the
// leaver was the admin and the role went back to the creator.
func (l *Logger) MemberLeft(ctx context.Context, userID, groupID string, adminReassigned bool) {
	var details map[string]string
	if adminReassigned {
		details = map[string]string{"admin_reassigned": "true"}
	}
	l.group(ctx, audit.EventMemberLeft, userID, groupID, "", details)
}

func (l *Logger) MemberRemoved(ctx context.Context, actorID, groupID, targetID string) {
	l.group(ctx, audit.EventMemberRemoved, actorID, groupID, targetID, nil)
}

func (l *Logger) EventCreated(ctx context.Context, actorID, groupID string, e models.Event) {
	l.group(ctx, audit.EventEventCreated, actorID, groupID, "", map[string]string{"event_id": e.ID, "title": e.Title})
}

func (l *Logger) EventUpdated(ctx context.Context, actorID, groupID, eventID string) {
	l.group(ctx, audit.EventEventUpdated, actorID, groupID, "", map[string]string{"event_id": eventID})
}

func (l *Logger) EventDeleted(ctx context.Context, actorID, groupID, eventID string) {
	l.group(ctx, audit.EventEventDeleted, actorID, groupID, "", map[string]string{"event_id": eventID})
}

func (l *Logger) EventRSVP(ctx context.Context, userID, groupID, eventID string, status models.ParticipationStatus) {
	l.group(ctx, audit.EventEventRSVP, userID, groupID, "", map[string]string{"event_id": eventID, "status": string(status)})
}

// --- Meeting Events ---

func (l *Logger) MeetingCreated(ctx context.Context, actorID string, m models.Meeting) {
	l.meeting(ctx, audit.EventMeetingCreated, actorID, m.ID, map[string]string{"title": m.Title})
}

func (l *Logger) MeetingUpdated(ctx context.Context, actorID, meetingID string) {
	l.meeting(ctx, audit.EventMeetingUpdated, actorID, meetingID, nil)
}

func (l *Logger) MeetingDeleted(ctx context.Context, actorID, meetingID string) {
	l.meeting(ctx, audit.EventMeetingDeleted, actorID, meetingID, nil)
}

func (l *Logger) MeetingJoined(ctx context.Context, userID, meetingID string) {
	l.meeting(ctx, audit.EventMeetingJoined, userID, meetingID, nil)
}

func (l *Logger) MeetingRSVP(ctx context.Context, userID, meetingID string, status models.ParticipationStatus) {
	l.meeting(ctx, audit.EventMeetingRSVP, userID, meetingID, map[string]string{"status": string(status)})
}
