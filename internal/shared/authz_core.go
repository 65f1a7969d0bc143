package shared

// Permission is an atomic capability tag gating one console feature.
type Permission string

// Console permissions.
const (
	PermUsersView   Permission = "view:users"
	PermUsersManage Permission = "manage:users"

	PermRolesView   Permission = "view:roles"
	PermRolesManage Permission = "manage:roles"

	PermAuditLogsView   Permission = "view:audit-logs"
	PermAuditLogsExport Permission = "export:audit-logs"

	PermSettingsView   Permission = "view:settings"
	PermSettingsManage Permission = "manage:settings"

	PermFilesView   Permission = "view:files"
	PermFilesManage Permission = "manage:files"

	PermDashboardView Permission = "view:dashboard"

	PermOwnProfileManage Permission = "manage:own-profile"
)

// AllPermissions lists every permission known to the console in catalog order.
func AllPermissions() []Permission {
	return []Permission{
		PermUsersView,
		PermUsersManage,
		PermRolesView,
		PermRolesManage,
		PermAuditLogsView,
		PermAuditLogsExport,
		PermSettingsView,
		PermSettingsManage,
		PermFilesView,
		PermFilesManage,
		PermDashboardView,
		PermOwnProfileManage,
	}
}

// Valid reports whether p belongs to the catalog.
func (p Permission) Valid() bool {
	for _, known := range AllPermissions() {
		if p == known {
			return true
		}
	}
	return false
}

func (p Permission) String() string {
	return string(p)
}
