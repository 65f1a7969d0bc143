package shared

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memorySink struct {
	tenant  string
	entries []AuditLog
}

func (s *memorySink) AppendAuditLog(ctx context.Context, tenantID string, entry AuditLog) error {
	s.tenant = tenantID
	s.entries = append(s.entries, entry)
	return nil
}

func TestAuditLoggerStampsEntry(t *testing.T) {
	sink := &memorySink{}
	logger := NewAuditLogger(sink)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	logger.clock = func() time.Time { return fixed }

	err := logger.Record(context.Background(), "tenant-123", AuditLog{UserID: "user-1", UserName: "Admin User", Action: ActionUserCreate})
	require.NoError(t, err)
	require.Equal(t, "tenant-123", sink.tenant)
	require.Len(t, sink.entries, 1)
	require.NotEmpty(t, sink.entries[0].ID)
	require.Equal(t, fixed, sink.entries[0].Timestamp)
}

func TestAuditLoggerRejectsIncompleteEntry(t *testing.T) {
	logger := NewAuditLogger(&memorySink{})
	require.Error(t, logger.Record(context.Background(), "tenant-123", AuditLog{UserID: "user-1"}))
	require.Error(t, logger.Record(context.Background(), "", AuditLog{UserID: "user-1", Action: ActionUserLogin}))

	var nilLogger *AuditLogger
	require.Error(t, nilLogger.Record(context.Background(), "tenant-123", AuditLog{UserID: "u", Action: ActionUserLogin}))
}
