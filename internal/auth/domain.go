package auth

import (
	"encoding/json"
	"fmt"

	"github.com/colloki/console/internal/shared"
	"github.com/colloki/console/internal/users"
)

const (
	// recordKey is the session value holding the authentication record.
	recordKey     = "auth"
	recordVersion = 1
)

// Record is the authentication state kept in the session.
type Record struct {
	IsAuthenticated bool        `json:"isAuthenticated"`
	User            *users.User `json:"user"`
	TenantID        string      `json:"tenantId"`
	SecondFactor    bool        `json:"secondFactor"`
}

type recordEnvelope struct {
	Version int    `json:"version"`
	State   Record `json:"state"`
}

// LoginInput selects the account to sign in as. TenantID falls back to the default tenant.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	TenantID string `json:"tenantId" validate:"omitempty,max=64"`
}

// VerifyInput carries a one-time passcode.
type VerifyInput struct {
	Code string `json:"code" validate:"required,numeric,len=6"`
}

// Enrollment is returned when a user starts second-factor setup.
type Enrollment struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// ReadRecord decodes the authentication record stored in sess.
// ok is false for anonymous sessions or records that cannot be decoded.
func ReadRecord(sess *shared.Session) (Record, bool) {
	if sess == nil {
		return Record{}, false
	}
	raw := sess.Get(recordKey)
	if raw == "" {
		return Record{}, false
	}
	var env recordEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil || env.Version != recordVersion {
		return Record{}, false
	}
	rec := env.State
	if !rec.IsAuthenticated || rec.User == nil || rec.User.TenantID != rec.TenantID {
		return Record{}, false
	}
	return rec, true
}

func writeRecord(sess *shared.Session, rec Record) error {
	raw, err := json.Marshal(recordEnvelope{Version: recordVersion, State: rec})
	if err != nil {
		return fmt.Errorf("auth: encode record: %w", err)
	}
	sess.Set(recordKey, string(raw))
	return nil
}
