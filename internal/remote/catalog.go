package remote

import (
	"context"

	"github.com/colloki/console/internal/files"
	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/shared"
)

func cloneRoles(in []rbac.Role) []rbac.Role {
	out := make([]rbac.Role, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// FetchRoles returns the tenant's role catalog.
func (g *Gateway) FetchRoles(ctx context.Context, tenantID string) ([]rbac.Role, error) {
	return coalesce(ctx, g, "roles/"+tenantID, func(ctx context.Context) ([]rbac.Role, error) {
		var out []rbac.Role
		err := g.call(ctx, "fetch_roles", tenantID, false, func(t *tenantData) error {
			out = cloneRoles(t.roles)
			return nil
		})
		return out, err
	}, cloneRoles)
}

// UpdateRole replaces a role's description and permissions. Id and name are fixed.
func (g *Gateway) UpdateRole(ctx context.Context, tenantID string, role rbac.Role) (rbac.Role, error) {
	release, err := g.guard(tenantID, "roles", role.ID)
	if err != nil {
		return rbac.Role{}, err
	}
	defer release()

	var updated rbac.Role
	err = g.call(ctx, "update_role", tenantID, true, func(t *tenantData) error {
		for i := range t.roles {
			if t.roles[i].ID != role.ID {
				continue
			}
			cur := t.roles[i].Clone()
			if role.Description != "" {
				cur.Description = role.Description
			}
			cur.Permissions = append([]shared.Permission(nil), role.Permissions...)
			t.roles[i] = cur
			updated = cur.Clone()
			return nil
		}
		return shared.ErrNotFound("remote: role %s not found", role.ID)
	})
	return updated, err
}

func cloneLogs(in []shared.AuditLog) []shared.AuditLog {
	return append([]shared.AuditLog(nil), in...)
}

// FetchAuditLogs returns the tenant's audit trail in append order.
func (g *Gateway) FetchAuditLogs(ctx context.Context, tenantID string) ([]shared.AuditLog, error) {
	return coalesce(ctx, g, "audit/"+tenantID, func(ctx context.Context) ([]shared.AuditLog, error) {
		var out []shared.AuditLog
		err := g.call(ctx, "fetch_audit_logs", tenantID, false, func(t *tenantData) error {
			out = cloneLogs(t.logs)
			return nil
		})
		return out, err
	}, cloneLogs)
}

// AppendAuditLog implements shared.AuditSink.
func (g *Gateway) AppendAuditLog(ctx context.Context, tenantID string, entry shared.AuditLog) error {
	return g.call(ctx, "append_audit_log", tenantID, true, func(t *tenantData) error {
		t.logs = append(t.logs, entry)
		return nil
	})
}

func cloneFiles(in []files.TenantFile) []files.TenantFile {
	return append([]files.TenantFile(nil), in...)
}

// FetchFiles returns the tenant's files.
func (g *Gateway) FetchFiles(ctx context.Context, tenantID string) ([]files.TenantFile, error) {
	return coalesce(ctx, g, "files/"+tenantID, func(ctx context.Context) ([]files.TenantFile, error) {
		var out []files.TenantFile
		err := g.call(ctx, "fetch_files", tenantID, false, func(t *tenantData) error {
			out = cloneFiles(t.files)
			return nil
		})
		return out, err
	}, cloneFiles)
}

// DeleteFile removes a file. A missing id is OutcomeNotFound.
func (g *Gateway) DeleteFile(ctx context.Context, tenantID, fileID string) (shared.Outcome, error) {
	release, err := g.guard(tenantID, "files", fileID)
	if err != nil {
		return "", err
	}
	defer release()

	outcome := shared.OutcomeNotFound
	err = g.call(ctx, "delete_file", tenantID, true, func(t *tenantData) error {
		for i, f := range t.files {
			if f.ID == fileID {
				t.files = append(t.files[:i:i], t.files[i+1:]...)
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
