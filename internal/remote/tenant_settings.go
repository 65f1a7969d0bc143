package remote

import (
	"context"

	"github.com/colloki/console/internal/settings"
)

// FetchTenantSettings returns the tenant's authoritative settings record.
func (g *Gateway) FetchTenantSettings(ctx context.Context, tenantID string) (settings.TenantSettings, error) {
	var out settings.TenantSettings
	err := g.call(ctx, "fetch_tenant_settings", tenantID, false, func(t *tenantData) error {
		out = t.settings
		return nil
	})
	return out, err
}

// UpdateTenantSettings merges patch into the tenant's record and returns the result.
func (g *Gateway) UpdateTenantSettings(ctx context.Context, tenantID string, patch settings.Patch) (settings.TenantSettings, error) {
	release, err := g.guard(tenantID, "settings", tenantID)
	if err != nil {
		return settings.TenantSettings{}, err
	}
	defer release()

	var out settings.TenantSettings
	err = g.call(ctx, "update_tenant_settings", tenantID, true, func(t *tenantData) error {
		t.settings = patch.Apply(t.settings)
		t.settings.TenantID = tenantID
		out = t.settings
		return nil
	})
	return out, err
}
