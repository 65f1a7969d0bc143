package auth

import (
	"context"

	"github.com/colloki/console/internal/users"
)

// Directory resolves the account a login refers to.
type Directory interface {
	FindUserByEmail(ctx context.Context, tenantID, email string) (users.User, error)
}
