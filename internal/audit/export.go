package audit

import (
	"bufio"
	"io"
	"strings"

	"github.com/colloki/console/internal/shared"
)

// TimestampLayout is the ISO form audit timestamps are exported in.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var csvHeader = []string{"Timestamp", "User", "Action", "Details"}

// WriteCSV menulis entri sebagai CSV. Kolom Details selalu dikutip; kolom lain hanya
// bila berisi koma, kutip atau baris baru. Baris dipisah "\n".
func WriteCSV(w io.Writer, entries []shared.AuditLog) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(csvHeader, ",")); err != nil {
		return err
	}
	for _, e := range entries {
		fields := []string{
			quoteIfNeeded(e.Timestamp.Format(TimestampLayout)),
			quoteIfNeeded(e.UserName),
			quoteIfNeeded(e.Action),
			quote(e.Details),
		}
		if _, err := bw.WriteString("\n" + strings.Join(fields, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ExportCSV mengembalikan CSV sebagai string.
func ExportCSV(entries []shared.AuditLog) string {
	var sb strings.Builder
	_ = WriteCSV(&sb, entries)
	return sb.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIfNeeded(s string) string {
	if s == "" || !strings.ContainsAny(s, ",\"\r\n") && s[0] != ' ' && s[len(s)-1] != ' ' {
		return s
	}
	return quote(s)
}
