package shared

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the console.
const (
	ActionUserLogin      = "USER_LOGIN"
	ActionUserCreate     = "USER_CREATE"
	ActionUserUpdate     = "USER_UPDATE"
	ActionUserDelete     = "USER_DELETE"
	ActionProfileUpdate  = "PROFILE_UPDATE"
	ActionRoleUpdate     = "ROLE_UPDATE"
	ActionFileDelete     = "FILE_DELETE"
	ActionSettingsUpdate = "SETTINGS_UPDATE"
	ActionSettingsReset  = "SETTINGS_RESET"
)

// AuditLog is an immutable audit trail record. UserName is denormalised at write time.
type AuditLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditSink appends records to the tenant's audit trail.
type AuditSink interface {
	AppendAuditLog(ctx context.Context, tenantID string, entry AuditLog) error
}

// AuditLogger stamps and writes audit records.
type AuditLogger struct {
	sink  AuditSink
	clock func() time.Time
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(sink AuditSink) *AuditLogger {
	return &AuditLogger{sink: sink, clock: func() time.Time { return time.Now().UTC() }}
}

// Record persists the log entry, assigning an id and timestamp when missing.
func (l *AuditLogger) Record(ctx context.Context, tenantID string, log AuditLog) error {
	if l == nil || l.sink == nil {
		return errors.New("audit logger not initialised")
	}
	if strings.TrimSpace(tenantID) == "" {
		return errors.New("audit log requires tenant")
	}
	if log.Action == "" || log.UserID == "" {
		return errors.New("audit log requires action/user_id")
	}
	if log.ID == "" {
		log.ID = "log-" + uuid.NewString()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = l.clock()
	}
	return l.sink.AppendAuditLog(ctx, tenantID, log)
}
