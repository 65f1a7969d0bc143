package roles

import (
	"github.com/colloki/console/internal/shared"
)

// PermissionsInput replaces the permission set of one role.
type PermissionsInput struct {
	Permissions []shared.Permission `json:"permissions" validate:"dive,required"`
}

// normalise drops duplicates and reports the first unknown permission.
func (in PermissionsInput) normalise() ([]shared.Permission, *shared.ValidationError) {
	seen := make(map[shared.Permission]struct{}, len(in.Permissions))
	out := make([]shared.Permission, 0, len(in.Permissions))
	for _, p := range in.Permissions {
		if !p.Valid() {
			return nil, &shared.ValidationError{
				Message: "unknown permission",
				Fields:  map[string]string{"permissions": string(p)},
			}
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}
