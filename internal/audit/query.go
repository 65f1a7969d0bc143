package audit

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/colloki/console/internal/shared"
)

// Criteria menampung filter audit log. Nilai kosong berarti tanpa batasan.
type Criteria struct {
	UserID string
	Action string
	From   time.Time
	To     time.Time
}

// Filter mengembalikan entri yang memenuhi semua kriteria, urutan input dipertahankan.
// UserID dicocokkan persis, Action sebagai substring tanpa membedakan huruf besar,
// dan From/To inklusif.
func Filter(entries []shared.AuditLog, c Criteria) []shared.AuditLog {
	fold := cases.Fold()
	action := fold.String(strings.TrimSpace(c.Action))
	out := make([]shared.AuditLog, 0, len(entries))
	for _, e := range entries {
		if c.UserID != "" && e.UserID != c.UserID {
			continue
		}
		if action != "" && !strings.Contains(fold.String(e.Action), action) {
			continue
		}
		if !c.From.IsZero() && e.Timestamp.Before(c.From) {
			continue
		}
		if !c.To.IsZero() && e.Timestamp.After(c.To) {
			continue
		}
		out = append(out, e)
	}
	return out
}
