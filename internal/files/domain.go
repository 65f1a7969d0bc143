package files

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/colloki/console/internal/shared"
)

// TenantFile is a stored upload. The console only lists and deletes them.
type TenantFile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	URL        string    `json:"url"`
}

// Validate enforces the record invariants.
func (f TenantFile) Validate() error {
	if f.ID == "" {
		return shared.ErrValidation("files: id required")
	}
	if f.Size < 0 {
		return &shared.ValidationError{
			Message: "files: size must not be negative",
			Fields:  map[string]string{"size": "min"},
		}
	}
	return nil
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatSize renders bytes with 1024 steps and two decimals, trailing zeros trimmed.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	value := float64(bytes) / math.Pow(1024, float64(i))
	rounded, _ := strconv.ParseFloat(fmt.Sprintf("%.2f", value), 64)
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[i]
}
