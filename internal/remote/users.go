package remote

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/colloki/console/internal/shared"
	"github.com/colloki/console/internal/users"
)

func cloneUsers(in []users.User) []users.User {
	return append([]users.User(nil), in...)
}

// FetchUsers returns the tenant's users in insertion order.
func (g *Gateway) FetchUsers(ctx context.Context, tenantID string) ([]users.User, error) {
	return coalesce(ctx, g, "users/"+tenantID, func(ctx context.Context) ([]users.User, error) {
		var out []users.User
		err := g.call(ctx, "fetch_users", tenantID, false, func(t *tenantData) error {
			out = cloneUsers(t.users)
			return nil
		})
		return out, err
	}, cloneUsers)
}

// FindUserByEmail looks a user up by case-insensitive email.
func (g *Gateway) FindUserByEmail(ctx context.Context, tenantID, email string) (users.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var found users.User
	err := g.call(ctx, "find_user", tenantID, false, func(t *tenantData) error {
		for _, u := range t.users {
			if strings.EqualFold(u.Email, email) {
				found = u
				return nil
			}
		}
		return shared.ErrNotFound("remote: no user with email %s", email)
	})
	return found, err
}

// CreateUser adds a user. Emails are unique per tenant.
func (g *Gateway) CreateUser(ctx context.Context, tenantID string, input users.CreateInput) (users.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	release, err := g.guard(tenantID, "users", email)
	if err != nil {
		return users.User{}, err
	}
	defer release()

	var created users.User
	err = g.call(ctx, "create_user", tenantID, true, func(t *tenantData) error {
		for _, u := range t.users {
			if strings.EqualFold(u.Email, email) {
				return shared.ErrConflict("remote: email %s already in use", email)
			}
		}
		id := "user-" + uuid.NewString()
		created = users.User{
			ID:        id,
			Name:      input.Name,
			Email:     email,
			Role:      input.Role,
			TenantID:  tenantID,
			CreatedAt: g.clock(),
			AvatarURL: "https://i.pravatar.cc/150?u=" + id,
		}
		t.users = append(t.users, created)
		return nil
	})
	return created, err
}

// UpdateUser replaces a user's editable fields. Id, tenant and creation time are kept.
func (g *Gateway) UpdateUser(ctx context.Context, tenantID string, user users.User) (users.User, error) {
	release, err := g.guard(tenantID, "users", user.ID)
	if err != nil {
		return users.User{}, err
	}
	defer release()

	var updated users.User
	err = g.call(ctx, "update_user", tenantID, true, func(t *tenantData) error {
		idx := -1
		for i, u := range t.users {
			if u.ID == user.ID {
				idx = i
			} else if strings.EqualFold(u.Email, user.Email) {
				return shared.ErrConflict("remote: email %s already in use", user.Email)
			}
		}
		if idx < 0 {
			return shared.ErrNotFound("remote: user %s not found", user.ID)
		}
		cur := t.users[idx]
		cur.Name = user.Name
		cur.Email = user.Email
		cur.Role = user.Role
		if user.AvatarURL != "" {
			cur.AvatarURL = user.AvatarURL
		}
		t.users[idx] = cur
		updated = cur
		return nil
	})
	return updated, err
}

// DeleteUser removes a user. A missing id is OutcomeNotFound and leaves the collection alone.
func (g *Gateway) DeleteUser(ctx context.Context, tenantID, userID string) (shared.Outcome, error) {
	release, err := g.guard(tenantID, "users", userID)
	if err != nil {
		return "", err
	}
	defer release()

	outcome := shared.OutcomeNotFound
	err = g.call(ctx, "delete_user", tenantID, true, func(t *tenantData) error {
		for i, u := range t.users {
			if u.ID == userID {
				t.users = append(t.users[:i:i], t.users[i+1:]...)
				outcome = shared.OutcomeDeleted
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}
